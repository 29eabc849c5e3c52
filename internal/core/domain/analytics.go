package domain

import "time"

// AnalyticsEvent is a storefront interaction recorded for the admin dashboards.
type AnalyticsEvent struct {
	Name       string         `json:"name" bson:"name"`
	Path       string         `json:"path" bson:"path"`
	SessionID  string         `json:"session_id,omitempty" bson:"session_id,omitempty"`
	UserID     string         `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Referrer   string         `json:"referrer,omitempty" bson:"referrer,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Properties map[string]any `json:"properties,omitempty" bson:"properties,omitempty"`
	OccurredAt time.Time      `json:"occurred_at" bson:"occurred_at"`
}

type Count struct {
	Key   string `json:"key" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// AnalyticsSummary aggregates events over [From, To).
type AnalyticsSummary struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Total    int64     `json:"total"`
	ByEvent  []Count   `json:"by_event"`
	TopPaths []Count   `json:"top_paths"`
}

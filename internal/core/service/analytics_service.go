package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const (
	maxEventProperties   = 32
	maxPathLength        = 2048
	defaultSummaryWindow = 7 * 24 * time.Hour
	maxSummaryWindow     = 366 * 24 * time.Hour
	summaryTopPaths      = 10
)

var eventNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

type AnalyticsService struct {
	repo ports.AnalyticsRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewAnalyticsService(repo ports.AnalyticsRepository, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now, log: log}
}

// Track records an event. Anonymous visitors may track; the user id is only
// attached when the viewer is authenticated.
func (s *AnalyticsService) Track(ctx context.Context, viewer domain.Viewer, in ports.TrackInput) error {
	name := strings.TrimSpace(in.Event)
	if !eventNamePattern.MatchString(name) {
		return domain.InvalidInput("event must match %s", eventNamePattern.String())
	}
	path := strings.TrimSpace(in.Path)
	if !strings.HasPrefix(path, "/") || len(path) > maxPathLength {
		return domain.InvalidInput("path must be an absolute path")
	}
	if len(in.Properties) > maxEventProperties {
		return domain.InvalidInput("at most %d properties are allowed", maxEventProperties)
	}

	event := &domain.AnalyticsEvent{
		Name:       name,
		Path:       path,
		SessionID:  in.SessionID,
		Referrer:   in.Referrer,
		UserAgent:  in.UserAgent,
		Properties: in.Properties,
		OccurredAt: s.now().UTC(),
	}
	if viewer.IsAuthenticated() {
		event.UserID = viewer.UserID
	}
	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("track event: %w", err)
	}
	return nil
}

// Summary aggregates [from, to). Zero bounds default to the last seven days.
func (s *AnalyticsService) Summary(ctx context.Context, viewer domain.Viewer, from, to time.Time) (*domain.AnalyticsSummary, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultSummaryWindow)
	}
	if !from.Before(to) {
		return nil, domain.InvalidInput("from must be before to")
	}
	if to.Sub(from) > maxSummaryWindow {
		return nil, domain.InvalidInput("range cannot exceed 366 days")
	}

	summary, err := s.repo.Summarize(ctx, from, to, summaryTopPaths)
	if err != nil {
		return nil, fmt.Errorf("analytics summary: %w", err)
	}
	return summary, nil
}

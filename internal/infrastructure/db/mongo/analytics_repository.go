package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const analyticsCollection = "analytics_events"

// AnalyticsRepository implements ports.AnalyticsRepository using MongoDB.
type AnalyticsRepository struct {
	col *mongo.Collection
}

var _ ports.AnalyticsRepository = (*AnalyticsRepository)(nil)

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{col: db.Collection(analyticsCollection)}
}

// EnsureIndexes creates the indexes the summary aggregation relies on.
func (r *AnalyticsRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AnalyticsRepository) Insert(ctx context.Context, event *domain.AnalyticsEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// Summarize runs a single $facet aggregation over [from, to).
func (r *AnalyticsRepository) Summarize(ctx context.Context, from, to time.Time, topN int) (*domain.AnalyticsSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, summaryPipeline(from, to, topN))
	if err != nil {
		return nil, fmt.Errorf("aggregate analytics: %w", err)
	}
	defer cur.Close(ctx)

	var facets []summaryFacets
	if err := cur.All(ctx, &facets); err != nil {
		return nil, fmt.Errorf("decode analytics summary: %w", err)
	}

	out := &domain.AnalyticsSummary{From: from, To: to, ByEvent: []domain.Count{}, TopPaths: []domain.Count{}}
	if len(facets) == 0 {
		return out, nil
	}
	facets[0].apply(out)
	return out, nil
}

type summaryFacets struct {
	Total []struct {
		N int64 `bson:"n"`
	} `bson:"total"`
	ByEvent  []domain.Count `bson:"by_event"`
	TopPaths []domain.Count `bson:"top_paths"`
}

func (f summaryFacets) apply(out *domain.AnalyticsSummary) {
	if len(f.Total) > 0 {
		out.Total = f.Total[0].N
	}
	if f.ByEvent != nil {
		out.ByEvent = f.ByEvent
	}
	if f.TopPaths != nil {
		out.TopPaths = f.TopPaths
	}
}

func countBy(field string) bson.A {
	return bson.A{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// summaryPipeline skips the top_paths facet when topN is not positive.
func summaryPipeline(from, to time.Time, topN int) mongo.Pipeline {
	facets := bson.D{
		{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
		{Key: "by_event", Value: countBy("name")},
	}
	if topN > 0 {
		paths := append(countBy("path"), bson.D{{Key: "$limit", Value: topN}})
		facets = append(facets, bson.E{Key: "top_paths", Value: paths})
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "occurred_at", Value: bson.D{
			{Key: "$gte", Value: from.UTC()},
			{Key: "$lt", Value: to.UTC()},
		}}}}},
		{{Key: "$facet", Value: facets}},
	}
}

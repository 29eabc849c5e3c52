package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

func TestSummaryPipeline_Stages(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	p := summaryPipeline(from, to, 5)
	if len(p) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(p))
	}
	if p[0][0].Key != "$match" || p[1][0].Key != "$facet" {
		t.Fatalf("unexpected stage order: %s, %s", p[0][0].Key, p[1][0].Key)
	}

	facets := p[1][0].Value.(bson.D)
	keys := map[string]bool{}
	for _, e := range facets {
		keys[e.Key] = true
	}
	for _, want := range []string{"total", "by_event", "top_paths"} {
		if !keys[want] {
			t.Errorf("facet %q missing", want)
		}
	}
}

func TestSummaryPipeline_NoTopPathsWhenZero(t *testing.T) {
	p := summaryPipeline(time.Now().Add(-time.Hour), time.Now(), 0)
	for _, e := range p[1][0].Value.(bson.D) {
		if e.Key == "top_paths" {
			t.Fatalf("top_paths facet should be skipped")
		}
	}
}

func TestSummaryFacets_DecodeAndApply(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "total", Value: bson.A{bson.D{{Key: "n", Value: int64(7)}}}},
		{Key: "by_event", Value: bson.A{
			bson.D{{Key: "_id", Value: "page_view"}, {Key: "count", Value: int64(5)}},
			bson.D{{Key: "_id", Value: "add_to_cart"}, {Key: "count", Value: int64(2)}},
		}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var f summaryFacets
	if err := bson.Unmarshal(raw, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out := &domain.AnalyticsSummary{TopPaths: []domain.Count{}}
	f.apply(out)

	if out.Total != 7 || len(out.ByEvent) != 2 || out.ByEvent[0].Key != "page_view" {
		t.Fatalf("unexpected summary %+v", out)
	}
	if out.TopPaths == nil {
		t.Fatalf("missing facet must keep an empty slice")
	}
}

package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tanuja-67/vle-management/internal/app"
	"github.com/tanuja-67/vle-management/internal/domain"
	"github.com/tanuja-67/vle-management/internal/infra/memory"
)

type fakeAnalyzer struct {
	analysis domain.Analysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _, _ string) (domain.Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

func newRecommendationFixture(t *testing.T, analyzer app.Analyzer) (*app.RecommendationService, *memory.SelectionStore, *memory.RecommendationStore) {
	t.Helper()
	selections := memory.NewSelectionStore()
	recs := memory.NewRecommendationStore()
	err := selections.Merge(context.Background(), []domain.VLESelection{{
		Villager: domain.Villager{ID: "vle-1", Name: "Asha"},
		Score:    80,
		Status:   domain.StatusPendingApproval,
	}})
	if err != nil {
		t.Fatalf("seed selection: %v", err)
	}
	return app.NewRecommendationService(selections, recs, analyzer, app.NopNotifier{}), selections, recs
}

func TestRecommendUsesAnalyzer(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: domain.Analysis{Machine: "Seed Drill Machine", Reason: "uniform seed placement"}}
	service, _, recs := newRecommendationFixture(t, analyzer)

	rec, err := service.Recommend(context.Background(), app.AnalysisRequest{
		VLEID: "vle-1", FileName: "field-photo.jpg", FileType: "image/jpeg", FileSize: 1024,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Machine != "Seed Drill Machine" || rec.Provider != "gemini" {
		t.Fatalf("expected analyzer result, got %+v", rec)
	}
	if analyzer.calls != 1 {
		t.Fatalf("expected analyzer called once, got %d", analyzer.calls)
	}

	stored, _ := recs.List(context.Background())
	if len(stored) != 1 || stored[0].VLEName != "Asha" {
		t.Fatalf("expected appended recommendation, got %+v", stored)
	}
}

func TestRecommendFallsBackOnAnalyzerError(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("model unavailable")}
	service, _, _ := newRecommendationFixture(t, analyzer)

	rec, err := service.Recommend(context.Background(), app.AnalysisRequest{
		VLEID: "vle-1", FileName: "soil-report.pdf", FileType: "application/pdf", FileSize: 2048,
	})
	if err != nil {
		t.Fatalf("analyzer failure must not fail the workflow: %v", err)
	}
	if rec.Provider != "rule-based" || rec.Machine != "Soil Testing Kit & Rotary Tiller" {
		t.Fatalf("expected rule-based soil fallback, got %+v", rec)
	}
}

func TestRecommendWithoutAnalyzer(t *testing.T) {
	service, _, _ := newRecommendationFixture(t, nil)

	rec, err := service.Recommend(context.Background(), app.AnalysisRequest{
		VLEID: "vle-1", FileName: "notes.txt", FileType: "text/plain", FileSize: 10,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Provider != "rule-based" || rec.Machine != "Multi-Purpose Cultivator" {
		t.Fatalf("expected default fallback, got %+v", rec)
	}
}

func TestRecommendValidation(t *testing.T) {
	service, _, _ := newRecommendationFixture(t, nil)
	ctx := context.Background()

	cases := []app.AnalysisRequest{
		{VLEID: "vle-1", FileType: "text/plain", FileSize: 10},                                       // no file name
		{VLEID: "vle-1", FileName: "a.exe", FileType: "application/octet-stream", FileSize: 10},      // bad type
		{VLEID: "vle-1", FileName: "a.txt", FileType: "text/plain", FileSize: 6 * 1024 * 1024},       // too large
	}
	for _, req := range cases {
		if _, err := service.Recommend(ctx, req); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}

	_, err := service.Recommend(ctx, app.AnalysisRequest{VLEID: "ghost", FileName: "a.txt", FileType: "text/plain", FileSize: 10})
	if !errors.Is(err, domain.ErrSelectionNotFound) {
		t.Fatalf("expected unknown VLE error, got %v", err)
	}
}

func TestRuleBasedAnalysisKeywords(t *testing.T) {
	cases := map[string]string{
		"crop-survey.jpg":      "Multi-crop Harvester",
		"harvest2025.png":      "Multi-crop Harvester",
		"soil_sample.pdf":      "Soil Testing Kit & Rotary Tiller",
		"pest-damage.jpg":      "Battery-Powered Sprayer",
		"leaf-disease.png":     "Battery-Powered Sprayer",
		"irrigation-plan.txt":  "Drip Irrigation System",
		"water-usage.pdf":      "Drip Irrigation System",
		"seed-order.doc":       "Seed Drill Machine",
		"planting-notes.txt":   "Seed Drill Machine",
		"miscellaneous.pdf":    "Multi-Purpose Cultivator",
	}
	for fileName, want := range cases {
		if got := app.RuleBasedAnalysis(fileName).Machine; got != want {
			t.Fatalf("%s: expected %q, got %q", fileName, want, got)
		}
	}
}

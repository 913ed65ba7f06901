package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// RecommendationRepository stores the append-only recommendation log.
type RecommendationRepository interface {
	List(ctx context.Context) ([]domain.Recommendation, error)
	Append(ctx context.Context, r domain.Recommendation) error
}

// Analyzer produces a machine recommendation from file metadata, typically by
// calling a generative model.
type Analyzer interface {
	Analyze(ctx context.Context, fileName, fileType string) (domain.Analysis, error)
}

const maxUploadSize = 5 * 1024 * 1024

var allowedFileTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/jpg":          {},
	"application/pdf":    {},
	"text/plain":         {},
	"application/msword": {},
}

// RecommendationService generates agricultural machine recommendations for
// selected VLEs. An analyzer failure never fails the workflow: the service
// falls back to the deterministic rule table.
type RecommendationService struct {
	selections SelectionRepository
	recs       RecommendationRepository
	analyzer   Analyzer
	notifier   Notifier
	clock      func() time.Time
}

// NewRecommendationService wires the service. analyzer may be nil, in which
// case every request uses the rule-based fallback.
func NewRecommendationService(selections SelectionRepository, recs RecommendationRepository, analyzer Analyzer, notifier Notifier) *RecommendationService {
	return &RecommendationService{
		selections: selections,
		recs:       recs,
		analyzer:   analyzer,
		notifier:   notifier,
		clock:      time.Now,
	}
}

// AnalysisRequest carries one uploaded file's metadata for a VLE.
type AnalysisRequest struct {
	VLEID    string `json:"vleId"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// Recommend validates the request, runs the analysis, and appends the outcome
// to the recommendation log.
func (s *RecommendationService) Recommend(ctx context.Context, req AnalysisRequest) (domain.Recommendation, error) {
	if req.FileName == "" {
		s.notifier.Error("Please upload a file first")
		return domain.Recommendation{}, fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}
	if _, ok := allowedFileTypes[req.FileType]; !ok {
		s.notifier.Error("Please upload a valid image, PDF, or document file")
		return domain.Recommendation{}, fmt.Errorf("%w: unsupported file type %q", domain.ErrValidation, req.FileType)
	}
	if req.FileSize > maxUploadSize {
		s.notifier.Error("File size should be less than 5MB")
		return domain.Recommendation{}, fmt.Errorf("%w: file exceeds 5MB", domain.ErrValidation)
	}

	vle, err := s.lookupVLE(ctx, req.VLEID)
	if err != nil {
		s.notifier.Error("Please select a VLE first")
		return domain.Recommendation{}, err
	}

	provider := "gemini"
	var analysis domain.Analysis
	if s.analyzer != nil {
		analysis, err = s.analyzer.Analyze(ctx, req.FileName, req.FileType)
	}
	if s.analyzer == nil || err != nil {
		analysis = RuleBasedAnalysis(req.FileName)
		provider = "rule-based"
	}

	rec := domain.Recommendation{
		VLEID:      vle.ID(),
		VLEName:    vle.Villager.Name,
		FileName:   req.FileName,
		FileType:   req.FileType,
		FileSize:   req.FileSize,
		Machine:    analysis.Machine,
		Reason:     analysis.Reason,
		Provider:   provider,
		AnalyzedAt: s.clock(),
	}
	if err := s.recs.Append(ctx, rec); err != nil {
		return domain.Recommendation{}, fmt.Errorf("append recommendation: %w", err)
	}
	s.notifier.Success("AI analysis completed successfully!")
	return rec, nil
}

// Recommendations lists the recommendation log.
func (s *RecommendationService) Recommendations(ctx context.Context) ([]domain.Recommendation, error) {
	return s.recs.List(ctx)
}

func (s *RecommendationService) lookupVLE(ctx context.Context, id string) (domain.VLESelection, error) {
	selected, err := s.selections.List(ctx)
	if err != nil {
		return domain.VLESelection{}, err
	}
	for _, entry := range selected {
		if entry.ID() == id {
			return entry, nil
		}
	}
	return domain.VLESelection{}, domain.ErrSelectionNotFound
}

// RuleBasedAnalysis is the deterministic substitute used when the generative
// model is unavailable. Keyed on filename keywords.
func RuleBasedAnalysis(fileName string) domain.Analysis {
	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, "crop") || strings.Contains(name, "harvest"):
		return domain.Analysis{
			Machine: "Multi-crop Harvester",
			Reason:  "Based on crop-related content, a multi-crop harvester will significantly improve efficiency during harvest season, reduce labor costs, and ensure timely harvesting for optimal yield quality.",
		}
	case strings.Contains(name, "soil"):
		return domain.Analysis{
			Machine: "Soil Testing Kit & Rotary Tiller",
			Reason:  "Soil analysis indicates need for proper soil preparation equipment. A rotary tiller will improve soil structure, and the testing kit will help optimize fertilizer application for better crop yields.",
		}
	case strings.Contains(name, "pest") || strings.Contains(name, "disease"):
		return domain.Analysis{
			Machine: "Battery-Powered Sprayer",
			Reason:  "Pest management requires efficient spraying equipment. A battery-powered sprayer provides consistent coverage, reduces manual labor, and ensures effective pest control for healthier crops.",
		}
	case strings.Contains(name, "irrigation") || strings.Contains(name, "water"):
		return domain.Analysis{
			Machine: "Drip Irrigation System",
			Reason:  "Water management is crucial for sustainable farming. A drip irrigation system conserves water, ensures consistent moisture delivery, and can significantly improve crop yields while reducing water costs.",
		}
	case strings.Contains(name, "seed") || strings.Contains(name, "plant"):
		return domain.Analysis{
			Machine: "Seed Drill Machine",
			Reason:  "Proper seed placement is essential for optimal germination. A seed drill ensures uniform seed spacing, proper depth, and reduces seed wastage while improving crop establishment.",
		}
	default:
		return domain.Analysis{
			Machine: "Multi-Purpose Cultivator",
			Reason:  "A versatile cultivator is essential for general farming operations including land preparation, weeding, and inter-cultivation. It provides excellent value for money and suits various farming needs.",
		}
	}
}

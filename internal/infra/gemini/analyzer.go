package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/tanuja-67/vle-management/internal/domain"
)

const defaultModel = "gemini-1.5-flash"

// Analyzer calls the Gemini API to turn uploaded file metadata into an
// agricultural machine recommendation. Implements app.Analyzer.
type Analyzer struct {
	client *genai.Client
	model  string
}

func NewAnalyzer(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Analyzer{client: client, model: model}, nil
}

// Analyze asks the model for a single machine recommendation and extracts it
// from the response text. The call has no retry policy; callers fall back to
// the rule table on error.
func (a *Analyzer) Analyze(ctx context.Context, fileName, fileType string) (domain.Analysis, error) {
	prompt := buildPrompt(fileName, fileType)
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("generate content: %w", err)
	}
	return parseAnalysis(resp.Text()), nil
}

func buildPrompt(fileName, fileType string) string {
	var b strings.Builder
	b.WriteString(`You are an agricultural expert AI assistant. Analyze the following file and provide agricultural machine recommendations.

File Details:
- File Name: ` + fileName + `
- File Type: ` + fileType + `

Based on the file name and type, please provide:
1. One specific agricultural machine recommendation
2. A detailed reason explaining why this machine is suitable for the agricultural context

Please respond in this exact JSON format:
{
  "machine": "Specific machine name",
  "reason": "Detailed explanation of why this machine is suitable for the agricultural context and how it will benefit the VLE"
}

Consider factors like:
- Crop type (if identifiable from filename)
- Soil conditions (if mentioned)
- Pest/disease issues (if indicated)
- Farming scale and methods
- Regional agricultural practices
- Cost-effectiveness for small-scale farmers
- Sustainability and environmental impact
- Ease of operation and maintenance

Focus on practical, affordable machines suitable for village-level entrepreneurs (VLEs) in rural areas.
`)
	if strings.HasPrefix(fileType, "image/") {
		b.WriteString("\nThis is an image file. Based on the filename, provide recommendations for agricultural machinery that would be most beneficial.")
	} else {
		b.WriteString("\nThis is a document file. Based on the filename, provide recommendations for agricultural machinery.")
	}
	return b.String()
}

var (
	jsonObjectRe    = regexp.MustCompile(`(?s)\{.*\}`)
	machinePrefixRe = regexp.MustCompile(`(?i).*machine[:\-\s]*`)
	reasonPrefixRe  = regexp.MustCompile(`(?i).*reason[:\-\s]*`)
)

const (
	defaultMachine = "General Agricultural Equipment"
	defaultReason  = "AI analysis suggests this machine based on agricultural best practices and suitability for village-level entrepreneurs."
)

// parseAnalysis extracts the recommendation from model output: first the
// best-effort JSON object substring, then line-based scanning, then defaults.
func parseAnalysis(text string) domain.Analysis {
	if match := jsonObjectRe.FindString(text); match != "" {
		var parsed struct {
			Machine string `json:"machine"`
			Reason  string `json:"reason"`
		}
		if err := json.Unmarshal([]byte(match), &parsed); err == nil {
			analysis := domain.Analysis{Machine: parsed.Machine, Reason: parsed.Reason}
			if analysis.Machine == "" {
				analysis.Machine = defaultMachine
			}
			if analysis.Reason == "" {
				analysis.Reason = defaultReason
			}
			return analysis
		}
	}

	var machine, reason string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if machine == "" && strings.Contains(lower, "machine") {
			machine = strings.TrimSpace(machinePrefixRe.ReplaceAllString(line, ""))
		}
		if reason == "" && strings.Contains(lower, "reason") {
			reason = strings.TrimSpace(reasonPrefixRe.ReplaceAllString(line, ""))
		}
	}
	if machine == "" {
		machine = defaultMachine
	}
	if reason == "" {
		reason = truncate(text, 200) + "..."
	}
	return domain.Analysis{Machine: machine, Reason: reason}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Package gemini implements domain.Narrator using the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/greenfund/climate-assessment-service/internal/domain"
)

var errEmptyResponse = errors.New("model returned no candidates")

const systemPrompt = `You are an agronomist advising a smallholder farmer.
Below is a JSON payload of assessment evidence for the farmer's fields over the next 7 days.
Write short, actionable, prioritized recommendations, one per evidence fact, most urgent first.
Return ONLY a valid JSON object (no extra text or markdown) with a single key "recommendations"
holding a list of at most %d strings. Each string must be one or two plain sentences a farmer
can act on this week.`

// Narrator converts assessment evidence into recommendation text via the
// Gemini API, requesting a strict JSON response shape. Every failure mode is
// reported as a *domain.NarrativeError so the engine can fall back to the
// rule-only path.
type Narrator struct {
	model    string
	timeout  time.Duration
	logger   *slog.Logger
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewNarrator creates a Gemini-backed narrator.
func NewNarrator(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*Narrator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	n := &Narrator{model: model, timeout: timeout, logger: logger}
	n.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := cli.Models.GenerateContent(ctx, model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", errEmptyResponse
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}
	return n, nil
}

// Narrate sends the evidence payload and parses the JSON recommendation list.
func (n *Narrator) Narrate(ctx context.Context, req domain.NarrativeRequest) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, &domain.NarrativeError{Reason: "encode request", Err: err}
	}

	raw, err := n.generate(ctx, prompt)
	if err != nil {
		return nil, &domain.NarrativeError{Reason: "generate", Err: err}
	}

	return parseRecommendations(raw, req.MaxItems)
}

func buildPrompt(req domain.NarrativeRequest) (string, error) {
	payload, err := json.MarshalIndent(struct {
		Context string        `json:"context,omitempty"`
		Facts   []domain.Fact `json:"facts"`
	}{Context: req.Context, Facts: req.Facts}, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, systemPrompt, req.MaxItems)
	b.WriteString("\n\n[EVIDENCE JSON]\n")
	b.Write(payload)
	return b.String(), nil
}

// parseRecommendations validates the model output against the expected shape.
// Wrong keys, an empty list, or blank entries are collaborator failures,
// not something to repair locally.
func parseRecommendations(raw string, maxItems int) ([]string, error) {
	var body struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, &domain.NarrativeError{Reason: "malformed response", Err: err}
	}
	if len(body.Recommendations) == 0 {
		return nil, &domain.NarrativeError{Reason: "empty recommendation list"}
	}

	recs := make([]string, 0, len(body.Recommendations))
	for _, r := range body.Recommendations {
		r = strings.TrimSpace(r)
		if r == "" {
			return nil, &domain.NarrativeError{Reason: "blank recommendation entry"}
		}
		recs = append(recs, r)
	}
	if maxItems > 0 && len(recs) > maxItems {
		recs = recs[:maxItems]
	}
	return recs, nil
}

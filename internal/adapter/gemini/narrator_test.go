package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfund/climate-assessment-service/internal/domain"
)

func testNarrator(generate func(ctx context.Context, prompt string) (string, error)) *Narrator {
	return &Narrator{
		model:    "gemini-test",
		timeout:  time.Second,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		generate: generate,
	}
}

func testRequest() domain.NarrativeRequest {
	return domain.NarrativeRequest{
		Facts: []domain.Fact{
			{Category: domain.FactWater, Key: "dry-week", Priority: 85, Summary: "dry", Detail: "water stress is High"},
			{Category: domain.FactActivity, Key: "high-carbon-fertilizer", Priority: 45, Summary: "compost", Detail: "fertilized recently"},
		},
		Context:  "Crop: Maize. Recent activities: Fertilizing, Planting.",
		MaxItems: 2,
	}
}

func TestNarrate_Success(t *testing.T) {
	var gotPrompt string
	n := testNarrator(func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return `{"recommendations": ["Irrigate new plots early in the morning.", "Switch one fertilizer round to compost."]}`, nil
	})

	recs, err := n.Narrate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "Irrigate new plots early in the morning.", recs[0])

	// The prompt must carry the evidence payload and the item cap.
	assert.Contains(t, gotPrompt, "dry-week")
	assert.Contains(t, gotPrompt, "Crop: Maize")
	assert.Contains(t, gotPrompt, "at most 2 strings")
}

func TestNarrate_CapsAtMaxItems(t *testing.T) {
	n := testNarrator(func(_ context.Context, _ string) (string, error) {
		return `{"recommendations": ["a", "b", "c", "d"]}`, nil
	})

	recs, err := n.Narrate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestNarrate_GenerateFailure(t *testing.T) {
	n := testNarrator(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("quota exceeded")
	})

	_, err := n.Narrate(context.Background(), testRequest())
	var narrative *domain.NarrativeError
	require.ErrorAs(t, err, &narrative)
	assert.Equal(t, "generate", narrative.Reason)
}

func TestNarrate_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Sure! Here are your recommendations:"},
		{"wrong shape", `{"advice": ["water the crops"]}`},
		{"empty list", `{"recommendations": []}`},
		{"blank entry", `{"recommendations": ["ok", "  "]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := testNarrator(func(_ context.Context, _ string) (string, error) {
				return tt.raw, nil
			})
			_, err := n.Narrate(context.Background(), testRequest())
			var narrative *domain.NarrativeError
			require.ErrorAs(t, err, &narrative)
		})
	}
}

func TestNarrate_HonorsTimeout(t *testing.T) {
	n := testNarrator(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	n.timeout = 10 * time.Millisecond

	start := time.Now()
	_, err := n.Narrate(context.Background(), testRequest())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var narrative *domain.NarrativeError
	require.ErrorAs(t, err, &narrative)
	assert.True(t, strings.Contains(narrative.Error(), "generate"))
}

package aiscore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/constants"
)

func scorerTestConfig(baseURL string) config.ScorerConfig {
	return config.ScorerConfig{
		Enabled:   true,
		BaseURL:   baseURL,
		APIKey:    "test-key",
		Model:     "gpt-4o",
		TimeoutMS: 2000,
	}
}

func completionBody(t *testing.T, result map[string]interface{}) []byte {
	t.Helper()
	content, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal score result failed: %v", err)
	}
	body, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": string(content)}},
		},
	})
	if err != nil {
		t.Fatalf("marshal completion failed: %v", err)
	}
	return body
}

func TestOpenAIScorerRemoteVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatalf("missing bearer token")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, map[string]interface{}{
			"isValid":        true,
			"score":          8.7,
			"category":       "Home",
			"dealType":       "top",
			"reasons":        []string{"large discount", "trusted store"},
			"suggestedTitle": "Robot Vacuum 60% Off",
		}))
	}))
	defer server.Close()

	scorer := NewOpenAIScorer(scorerTestConfig(server.URL))
	verdict := scorer.Score(context.Background(), Candidate{Title: "Robot Vacuum", DiscountPercentage: 60})

	if verdict.Fallback {
		t.Fatalf("expected remote verdict, got fallback: %+v", verdict)
	}
	if !verdict.IsValid || verdict.Score != 8.7 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
	if verdict.Category != "Home" || verdict.DealType != constants.DealTypeTop {
		t.Fatalf("unexpected category/deal type: %+v", verdict)
	}
	if verdict.SuggestedTitle != "Robot Vacuum 60% Off" {
		t.Fatalf("unexpected suggested title: %q", verdict.SuggestedTitle)
	}
}

func TestOpenAIScorerEmptyReasonsNotNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionBody(t, map[string]interface{}{
			"isValid":  true,
			"score":    7.5,
			"dealType": "hot",
		}))
	}))
	defer server.Close()

	scorer := NewOpenAIScorer(scorerTestConfig(server.URL))
	verdict := scorer.Score(context.Background(), Candidate{DiscountPercentage: 40})
	if verdict.Fallback {
		t.Fatalf("expected remote verdict, got fallback: %+v", verdict)
	}
	if verdict.Reasons == nil {
		t.Fatalf("reasons must never be nil")
	}
	if len(verdict.Reasons) != 0 {
		t.Fatalf("reasons want empty got %v", verdict.Reasons)
	}
}

func TestOpenAIScorerClampsRemoteScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionBody(t, map[string]interface{}{
			"isValid":  true,
			"score":    14.2,
			"dealType": "hot",
		}))
	}))
	defer server.Close()

	scorer := NewOpenAIScorer(scorerTestConfig(server.URL))
	verdict := scorer.Score(context.Background(), Candidate{DiscountPercentage: 40})
	if verdict.Score != 10 {
		t.Fatalf("score = %v, want clamped to 10", verdict.Score)
	}
}

func TestOpenAIScorerFallbackOnBadTier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionBody(t, map[string]interface{}{
			"isValid":  true,
			"score":    9.5,
			"dealType": "premium",
		}))
	}))
	defer server.Close()

	scorer := NewOpenAIScorer(scorerTestConfig(server.URL))
	verdict := scorer.Score(context.Background(), Candidate{DiscountPercentage: 80})
	if !verdict.Fallback {
		t.Fatalf("expected fallback for out-of-contract tier, got %+v", verdict)
	}
	if verdict.Score != 9 || verdict.DealType != constants.DealTypeTop {
		t.Fatalf("fallback mismatch: %+v", verdict)
	}
}

func TestOpenAIScorerFallbackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	scorer := NewOpenAIScorer(scorerTestConfig(server.URL))
	verdict := scorer.Score(context.Background(), Candidate{DiscountPercentage: 55})
	if !verdict.Fallback {
		t.Fatalf("expected fallback on 5xx")
	}
	if verdict.Score != 7 || verdict.DealType != constants.DealTypeHot {
		t.Fatalf("fallback mismatch: %+v", verdict)
	}
}

func TestOpenAIScorerFallbackOnMalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": "not json at all"}},
			},
		})
		_, _ = w.Write(body)
	}))
	defer server.Close()

	scorer := NewOpenAIScorer(scorerTestConfig(server.URL))
	verdict := scorer.Score(context.Background(), Candidate{DiscountPercentage: 20})
	if !verdict.Fallback {
		t.Fatalf("expected fallback on malformed content")
	}
	if verdict.Score != 5 || verdict.DealType != constants.DealTypeLatest {
		t.Fatalf("fallback mismatch: %+v", verdict)
	}
}

func TestOpenAIScorerDisabledUsesFallback(t *testing.T) {
	scorer := NewOpenAIScorer(config.ScorerConfig{Enabled: false})
	verdict := scorer.Score(context.Background(), Candidate{DiscountPercentage: 75})
	if !verdict.Fallback || verdict.Score != 9 {
		t.Fatalf("expected fallback verdict for disabled scorer, got %+v", verdict)
	}
}

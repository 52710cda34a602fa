package aiscore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/logger"
)

const defaultScorerTimeout = 8 * time.Second

// OpenAIScorer 调用 OpenAI 兼容接口的评分实现
// 任何远端失败都会落到 FallbackVerdict，调用方无需处理错误。
type OpenAIScorer struct {
	cfg        config.ScorerConfig
	httpClient *http.Client
}

// NewOpenAIScorer 创建远端评分客户端
func NewOpenAIScorer(cfg config.ScorerConfig) *OpenAIScorer {
	timeout := defaultScorerTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &OpenAIScorer{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Score 评估单个候选；远端失败时返回降级结论
func (s *OpenAIScorer) Score(ctx context.Context, candidate Candidate) Verdict {
	if s == nil || !s.cfg.Enabled || strings.TrimSpace(s.cfg.APIKey) == "" {
		return FallbackVerdict(candidate.DiscountPercentage, "scorer disabled")
	}

	verdict, err := s.remoteScore(ctx, candidate)
	if err != nil {
		logger.Warnw("ai_score_fallback",
			"title", candidate.Title,
			"discount", candidate.DiscountPercentage,
			"error", err,
		)
		return FallbackVerdict(candidate.DiscountPercentage, "ai scoring unavailable")
	}
	return verdict
}

// chatRequest OpenAI chat completions 请求体
type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// scoreResult 模型输出的约定结构
type scoreResult struct {
	IsValid        bool     `json:"isValid"`
	Score          float64  `json:"score"`
	Category       string   `json:"category"`
	DealType       string   `json:"dealType"`
	Reasons        []string `json:"reasons"`
	SuggestedTitle string   `json:"suggestedTitle"`
}

func (s *OpenAIScorer) remoteScore(ctx context.Context, candidate Candidate) (Verdict, error) {
	payload := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: scorerSystemPrompt},
			{Role: "user", Content: buildScorerPrompt(candidate)},
		},
		Temperature:    0.2,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Verdict{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return Verdict{}, fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Verdict{}, fmt.Errorf("empty choices")
	}

	var result scoreResult
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Verdict{}, fmt.Errorf("decode score result: %w", err)
	}

	if !validDealType(result.DealType) {
		return Verdict{}, fmt.Errorf("deal type out of contract: %q", result.DealType)
	}

	reasons := result.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	return Verdict{
		IsValid:        result.IsValid,
		Score:          clampScore(result.Score),
		Category:       strings.TrimSpace(result.Category),
		DealType:       result.DealType,
		Reasons:        reasons,
		SuggestedTitle: strings.TrimSpace(result.SuggestedTitle),
	}, nil
}

const scorerSystemPrompt = `You are a deal quality analyst for an affiliate deals marketplace. ` +
	`Evaluate the submitted deal and respond with a single JSON object: ` +
	`{"isValid": bool, "score": number 0-10, "category": string, "dealType": "top"|"hot"|"latest", ` +
	`"reasons": [string], "suggestedTitle": string}. ` +
	`Reject spam, unrealistic pricing and misleading titles.`

func buildScorerPrompt(candidate Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", candidate.Title)
	fmt.Fprintf(&b, "Description: %s\n", candidate.Description)
	fmt.Fprintf(&b, "Original price: %s\n", candidate.OriginalPrice.String())
	fmt.Fprintf(&b, "Sale price: %s\n", candidate.SalePrice.String())
	fmt.Fprintf(&b, "Discount: %d%%\n", candidate.DiscountPercentage)
	fmt.Fprintf(&b, "Store: %s\n", candidate.Store)
	fmt.Fprintf(&b, "Category: %s\n", candidate.Category)
	return b.String()
}

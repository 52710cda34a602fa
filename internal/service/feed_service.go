package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/logger"
)

const (
	defaultFeedTimeout = 15 * time.Second
	feedMaxBodySize    = 8 << 20
)

// FeedService 联盟 Feed 抓取服务
// 说明：拉取各联盟数据源的 JSON Feed，交给批量导入流水线逐条评估。
type FeedService struct {
	cfg        *config.Config
	importer   *BulkImportService
	httpClient *http.Client
}

// NewFeedService 创建 Feed 抓取服务
func NewFeedService(cfg *config.Config, importer *BulkImportService) *FeedService {
	return &FeedService{
		cfg:      cfg,
		importer: importer,
		httpClient: &http.Client{
			Timeout: defaultFeedTimeout,
		},
	}
}

// FeedFetchOutcome 单个数据源抓取结果
type FeedFetchOutcome struct {
	Source   string `json:"source"`
	Total    int    `json:"total"`
	Created  int    `json:"created"`
	Rejected int    `json:"rejected"`
	Error    string `json:"error,omitempty"`
}

// FetchSource 抓取指定名称的数据源；名称为空时抓取全部
func (s *FeedService) FetchSource(ctx context.Context, name string) ([]FeedFetchOutcome, error) {
	name = strings.TrimSpace(name)

	sources := make([]config.FeedSource, 0, len(s.cfg.Feeds.Sources))
	for _, source := range s.cfg.Feeds.Sources {
		if name != "" && !strings.EqualFold(source.Name, name) {
			continue
		}
		sources = append(sources, source)
	}
	if name != "" && len(sources) == 0 {
		return nil, ErrFeedSourceUnknown
	}

	outcomes := make([]FeedFetchOutcome, 0, len(sources))
	for _, source := range sources {
		outcomes = append(outcomes, s.fetchOne(ctx, source))
	}
	return outcomes, nil
}

func (s *FeedService) fetchOne(ctx context.Context, source config.FeedSource) FeedFetchOutcome {
	outcome := FeedFetchOutcome{Source: source.Name}

	candidates, err := s.downloadCandidates(ctx, source)
	if err != nil {
		logger.Warnw("feed_fetch_failed",
			"source", source.Name,
			"url", source.URL,
			"error", err,
		)
		outcome.Error = err.Error()
		return outcome
	}

	result := s.importer.ImportCandidates(ctx, candidates, normalizeFeedSource(source.Name))
	outcome.Total = result.Total
	outcome.Created = result.Created
	outcome.Rejected = result.Rejected

	logger.Infow("feed_fetch_completed",
		"source", source.Name,
		"total", result.Total,
		"created", result.Created,
		"rejected", result.Rejected,
	)
	return outcome
}

func (s *FeedService) downloadCandidates(ctx context.Context, source config.FeedSource) ([]DealCandidateInput, error) {
	url := strings.TrimSpace(source.URL)
	if url == "" {
		return nil, fmt.Errorf("feed source %q has no url", source.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if key := strings.TrimSpace(source.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var candidates []DealCandidateInput
	if err := json.NewDecoder(io.LimitReader(resp.Body, feedMaxBodySize)).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return candidates, nil
}

// normalizeFeedSource 将数据源名称映射到已知来源标记
func normalizeFeedSource(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case constants.DealSourceAmazon:
		return constants.DealSourceAmazon
	case constants.DealSourceCJ:
		return constants.DealSourceCJ
	case constants.DealSourceShareASale:
		return constants.DealSourceShareASale
	default:
		return constants.DealSourceBulkImport
	}
}

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/constants"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/repository"
)

// BulkImportService 批量接入服务
// 每条候选独立走接入流水线，单条失败不影响其余条目。
type BulkImportService struct {
	cfg           *config.Config
	ingest        *IngestService
	uploadLogRepo repository.UploadLogRepository
}

// NewBulkImportService 创建批量接入服务
func NewBulkImportService(cfg *config.Config, ingest *IngestService, uploadLogRepo repository.UploadLogRepository) *BulkImportService {
	return &BulkImportService{
		cfg:           cfg,
		ingest:        ingest,
		uploadLogRepo: uploadLogRepo,
	}
}

// BulkItemOutcome 批量接入的单条结果，顺序与输入一致
type BulkItemOutcome struct {
	Index   int           `json:"index"`
	Outcome SubmitOutcome `json:"outcome"`
	Error   string        `json:"error,omitempty"`
}

// BulkImportResult 批量接入汇总
type BulkImportResult struct {
	Total    int               `json:"total"`
	Created  int               `json:"created"`
	Rejected int               `json:"rejected"`
	Items    []BulkItemOutcome `json:"items"`
}

// ImportCandidates 批量接入候选列表
// 空列表返回空汇总；存储失败按单条记录隔离，不中断批次。
func (s *BulkImportService) ImportCandidates(ctx context.Context, inputs []DealCandidateInput, source string) *BulkImportResult {
	result := &BulkImportResult{
		Total: len(inputs),
		Items: make([]BulkItemOutcome, 0, len(inputs)),
	}

	for i, input := range inputs {
		if input.SourceAPI == "" {
			input.SourceAPI = source
		}

		item := BulkItemOutcome{Index: i}
		outcome, err := s.ingest.Submit(ctx, input)
		if err != nil {
			item.Error = err.Error()
			item.Outcome = SubmitOutcome{Reasons: []string{"storage failure"}}
			result.Rejected++
			logger.Errorw("bulk_import_item_failed", "index", i, "error", err)
		} else {
			item.Outcome = *outcome
			if outcome.Created {
				result.Created++
			} else {
				result.Rejected++
			}
		}
		result.Items = append(result.Items, item)
	}

	return result
}

// ProcessFileInput 文件导入参数
type ProcessFileInput struct {
	Filename  string
	Data      []byte
	SourceAPI string
	AdminID   uint
}

// ProcessFile 解析上传文件并批量接入，同时写入导入记录
func (s *BulkImportService) ProcessFile(ctx context.Context, input ProcessFileInput) (*BulkImportResult, *models.UploadLog, error) {
	if len(input.Data) == 0 {
		return nil, nil, ErrEmptyFile
	}
	if s.cfg != nil && s.cfg.Upload.MaxSize > 0 && int64(len(input.Data)) > s.cfg.Upload.MaxSize {
		return nil, nil, ErrFileTooLarge
	}

	source := strings.TrimSpace(input.SourceAPI)
	if source == "" {
		source = constants.DealSourceBulkImport
	}

	format, err := importFormatByExtension(input.Filename)
	if err != nil {
		return nil, nil, err
	}

	var candidates []DealCandidateInput
	switch format {
	case constants.ImportFormatCSV:
		candidates, err = ParseCandidatesCSV(input.Data, source)
	case constants.ImportFormatJSON:
		candidates, err = ParseCandidatesJSON(input.Data, source)
	}
	if err != nil {
		s.recordUploadLog(input, format, source, 0, nil)
		return nil, nil, err
	}

	if s.cfg != nil && s.cfg.Upload.MaxRows > 0 && len(candidates) > s.cfg.Upload.MaxRows {
		return nil, nil, ErrTooManyRows
	}

	result := s.ImportCandidates(ctx, candidates, source)
	uploadLog := s.recordUploadLog(input, format, source, len(candidates), result)
	return result, uploadLog, nil
}

func importFormatByExtension(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return constants.ImportFormatCSV, nil
	case ".json":
		return constants.ImportFormatJSON, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// recordUploadLog 写入导入记录，失败仅记日志不阻断导入结果
func (s *BulkImportService) recordUploadLog(input ProcessFileInput, format, source string, total int, result *BulkImportResult) *models.UploadLog {
	if s.uploadLogRepo == nil {
		return nil
	}

	uploadLog := &models.UploadLog{
		Filename:  input.Filename,
		Format:    format,
		SourceAPI: source,
		TotalRows: total,
		Status:    constants.UploadStatusFailed,
		AdminID:   input.AdminID,
	}

	if result != nil {
		uploadLog.CreatedCount = result.Created
		uploadLog.RejectedCount = result.Rejected
		switch {
		case result.Rejected == 0:
			uploadLog.Status = constants.UploadStatusCompleted
		case result.Created > 0:
			uploadLog.Status = constants.UploadStatusPartial
		}
		uploadLog.ErrorSamples = collectErrorSamples(result, 20)
	}

	if err := s.uploadLogRepo.Create(uploadLog); err != nil {
		logger.Errorw("upload_log_create_failed", "filename", input.Filename, "error", err)
		return nil
	}
	return uploadLog
}

// collectErrorSamples 抽取前若干条驳回原因作为记录样本
func collectErrorSamples(result *BulkImportResult, limit int) models.JSON {
	samples := make(models.JSON)
	for _, item := range result.Items {
		if len(samples) >= limit {
			break
		}
		if item.Outcome.Created {
			continue
		}
		reasons := item.Outcome.Reasons
		if item.Error != "" {
			reasons = append(reasons, item.Error)
		}
		samples[fmt.Sprintf("row_%d", item.Index)] = reasons
	}
	if len(samples) == 0 {
		return nil
	}
	return samples
}

package admin

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dealsphere/dealsphere/internal/http/response"
	"github.com/dealsphere/dealsphere/internal/queue"
	"github.com/dealsphere/dealsphere/internal/repository"
	"github.com/dealsphere/dealsphere/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportDealsRequest JSON 批量导入请求
type ImportDealsRequest struct {
	SourceAPI  string              `json:"source_api"`
	Candidates []SubmitDealRequest `json:"candidates" binding:"required"`
}

// ImportDeals JSON 批量导入
func (h *Handler) ImportDeals(c *gin.Context) {
	var req ImportDealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request", err)
		return
	}

	inputs := make([]service.DealCandidateInput, 0, len(req.Candidates))
	for _, candidate := range req.Candidates {
		inputs = append(inputs, candidate.toCandidateInput())
	}

	result := h.BulkImportService.ImportCandidates(c.Request.Context(), inputs, req.SourceAPI)
	response.Success(c, result)
}

// ImportDealsFile 文件批量导入 (JSON/CSV)
func (h *Handler) ImportDealsFile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "file is required", err)
		return
	}
	if !h.importExtensionAllowed(fileHeader.Filename) {
		respondError(c, response.CodeBadRequest, "unsupported file extension", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, response.CodeBadRequest, "failed to read file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, response.CodeBadRequest, "failed to read file", err)
		return
	}

	result, uploadLog, err := h.BulkImportService.ProcessFile(c.Request.Context(), service.ProcessFileInput{
		Filename:  fileHeader.Filename,
		Data:      data,
		SourceAPI: strings.TrimSpace(c.PostForm("source_api")),
		AdminID:   adminID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFile):
			respondError(c, response.CodeBadRequest, "empty file", nil)
		case errors.Is(err, service.ErrFileTooLarge):
			respondError(c, response.CodeBadRequest, "file too large", nil)
		case errors.Is(err, service.ErrUnsupportedFormat):
			respondError(c, response.CodeBadRequest, "unsupported file format", nil)
		case errors.Is(err, service.ErrTooManyRows):
			respondError(c, response.CodeBadRequest, "too many rows", nil)
		default:
			respondError(c, response.CodeInternal, "import failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"result":     result,
		"upload_log": uploadLog,
	})
}

func (h *Handler) importExtensionAllowed(filename string) bool {
	if h.Config == nil || len(h.Config.Upload.AllowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range h.Config.Upload.AllowedExtensions {
		if strings.EqualFold(strings.TrimSpace(allowed), ext) {
			return true
		}
	}
	return false
}

// GetUploadLogs 导入记录列表
func (h *Handler) GetUploadLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	logs, total, err := h.UploadLogRepo.List(repository.UploadLogListFilter{
		Page:      page,
		PageSize:  pageSize,
		SourceAPI: strings.TrimSpace(c.Query("source_api")),
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load upload logs", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, logs, pagination)
}

// TriggerFeedFetchRequest 手动触发拉取请求
type TriggerFeedFetchRequest struct {
	Source string `json:"source"`
}

// TriggerFeedFetch 手动触发 Feed 拉取
// 队列可用时异步执行，否则同步拉取并返回结果。
func (h *Handler) TriggerFeedFetch(c *gin.Context) {
	var req TriggerFeedFetchRequest
	_ = c.ShouldBindJSON(&req)
	source := strings.TrimSpace(req.Source)

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueFeedFetch(queue.FeedFetchPayload{SourceName: source}); err != nil {
			respondError(c, response.CodeInternal, "failed to enqueue fetch", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}

	outcomes, err := h.FeedService.FetchSource(c.Request.Context(), source)
	if err != nil {
		if errors.Is(err, service.ErrFeedSourceUnknown) {
			respondError(c, response.CodeNotFound, "unknown feed source", nil)
			return
		}
		respondError(c, response.CodeInternal, "feed fetch failed", err)
		return
	}

	response.Success(c, gin.H{
		"queued":   false,
		"outcomes": outcomes,
	})
}

package dto

import (
	"time"

	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/utils"
)

// APIResponse 通用 API 响应结构
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO 错误信息 DTO
type ErrorDTO struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// PaginationResponse 分页响应元数据
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// SuccessResponse 创建成功响应
func SuccessResponse(data interface{}, traceID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse 创建错误响应
// Client errors keep their code, message and metadata. Server errors report only
// their description; the wrapped cause stays in the logs. Storage failures and
// unstructured errors are reported as internal_error.
func ErrorResponse(err error, traceID string) *APIResponse {
	errorDTO := &ErrorDTO{
		Code:        string(constants.ErrCodeInternal),
		Message:     "Internal server error",
		Description: "The server encountered an unexpected condition",
	}

	if e, ok := errors.AsESGError(err); ok {
		switch {
		case e.Code() == constants.ErrCodeDatabase || e.Code() == constants.ErrCodeCache:
		case e.HTTPStatus() >= 500:
			errorDTO.Code = string(e.Code())
			errorDTO.Message = e.Description()
		default:
			errorDTO.Code = string(e.Code())
			errorDTO.Message = e.Error()
			errorDTO.Description = e.Description()
			if md := e.Metadata(); len(md) > 0 {
				errorDTO.Details = md
			}
		}
	}

	return &APIResponse{
		Success:   false,
		Error:     errorDTO,
		TraceID:   traceID,
		Timestamp: time.Now().Unix(),
	}
}

// StatusCode returns the HTTP status that err maps to.
func StatusCode(err error) int {
	if e, ok := errors.AsESGError(err); ok {
		return e.HTTPStatus()
	}
	return 500
}

// NewPagination builds pagination metadata.
func NewPagination(page, pageSize int, total int64) PaginationResponse {
	return PaginationResponse{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: utils.TotalPages(total, pageSize),
	}
}

//Personal.AI order the ending

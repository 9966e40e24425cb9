package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/infrastructure/logger"
	"github.com/duka/backend/internal/interfaces/http/dto"
	"github.com/duka/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// shopID returns the acting shop resolved by the shop middleware. It writes
// the error response itself and reports false when none was resolved.
func (h *BaseHandler) shopID(c *gin.Context) (uuid.UUID, bool) {
	id, err := middleware.GetShopID(c)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidShop, "Shop identification required")
		return uuid.Nil, false
	}
	return id, true
}

// uuidParam parses a UUID path parameter
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}})
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body and answers 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters and answers 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	resp := middleware.FormatValidationErrors(err, middleware.GetRequestID(c))
	if len(resp.Error.Details) == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed request body")
		return
	}
	c.JSON(http.StatusBadRequest, resp)
}

// page returns the effective page and page size of a list request
func page(p, size int) (int, int) {
	if p < 1 {
		p = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	return p, size
}

const defaultPageSize = 20

// Attachment sends a downloadable file
func (h *BaseHandler) Attachment(c *gin.Context, name, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, body)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// HandleDomainError converts domain errors to HTTP responses. Errors that
// name an input field keep their own message and report the field.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.FromContext(c.Request.Context()).Error("Unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID)

	var fieldErr shared.FieldError
	if errors.As(err, &fieldErr) {
		resp.Error.Message = fieldErr.Error()
		resp.Error.Details = []dto.ValidationDetail{{Field: fieldErr.Field(), Message: fieldErr.Error()}}
	}
	c.JSON(dto.GetHTTPStatus(code), resp)
}

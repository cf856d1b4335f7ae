package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lectorium/lectorium/internal/middleware"
	"github.com/lectorium/lectorium/internal/services"
	"github.com/lectorium/lectorium/pkg/errors"
	"github.com/lectorium/lectorium/pkg/response"
	"github.com/lectorium/lectorium/pkg/validator"
)

// SubmissionHandler exposes identity-scoped submission endpoints.
type SubmissionHandler struct {
	service *services.SubmissionService
}

// NewSubmissionHandler constructs a submission handler.
func NewSubmissionHandler(db *gorm.DB, notifications *services.NotificationService) (*SubmissionHandler, error) {
	service, err := services.NewSubmissionService(db, notifications)
	if err != nil {
		return nil, err
	}
	return &SubmissionHandler{service: service}, nil
}

// Service exposes the underlying workflow service for wiring.
func (h *SubmissionHandler) Service() *services.SubmissionService {
	return h.service
}

// ListUploaded returns submissions the caller created.
func (h *SubmissionHandler) ListUploaded(c *gin.Context) {
	h.list(c, h.service.ListForUploader)
}

// ListAssigned returns submissions assigned to the caller for review.
func (h *SubmissionHandler) ListAssigned(c *gin.Context) {
	h.list(c, h.service.ListForReviewer)
}

func (h *SubmissionHandler) list(c *gin.Context, query func(ctx context.Context, identity string) ([]services.SubmissionDTO, error)) {
	callerID := c.GetString(middleware.CtxUserIDKey)
	if callerID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	items, err := query(requestContext(c), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

type reviewRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

// Review applies a reviewer's status mutation to a submission.
func (h *SubmissionHandler) Review(c *gin.Context) {
	callerID := c.GetString(middleware.CtxUserIDKey)
	if callerID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("invalid request body"))
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	_, err := h.service.Update(requestContext(c), services.UpdateReviewInput{
		CallerID:     callerID,
		SubmissionID: strings.TrimSpace(c.Param("id")),
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"success": true})
}

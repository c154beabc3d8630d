// internal/handlers/approval.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/i18n"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/services"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/utils"
)

type ApprovalHandler struct {
	approvalService *services.ApprovalService
}

func NewApprovalHandler(approvalService *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
	}
}

type approveRequest struct {
	// ApproverID defaults to the authenticated person; a delegated
	// submission may name another approver, which the engine re-checks
	// against the directory regardless.
	ApproverID *uuid.UUID `json:"approver_id,omitempty"`
	Comment    string     `json:"comment,omitempty"`
}

// POST /forms/:form/documents/:id/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	formName := c.Param("form")

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	actingUserID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req approveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	approverID := actingUserID
	if req.ApproverID != nil {
		approverID = *req.ApproverID
	}

	result, err := h.approvalService.Approve(c.Request.Context(), formName, documentID, approverID, actingUserID, req.Comment)
	if err != nil {
		h.respondApprovalError(c, lang, err)
		return
	}

	if result.FullyApproved {
		utils.SuccessResponse(c, result)
		return
	}
	utils.AcceptedResponse(c, result)
}

// GET /forms/:form/documents/:id/approval-status
func (h *ApprovalHandler) GetApprovalStatus(c *gin.Context) {
	formName := c.Param("form")

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	status, err := h.approvalService.GetApprovalStatus(c.Request.Context(), formName, documentID)
	if err != nil {
		h.respondApprovalError(c, utils.GetLangFromContext(c), err)
		return
	}

	utils.SuccessResponse(c, status)
}

func (h *ApprovalHandler) respondApprovalError(c *gin.Context, lang string, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownForm):
		utils.ErrorResponse(c, 400, "UNKNOWN_FORM", i18n.T(lang, i18n.KeyFormNotFound), nil)
	case errors.Is(err, services.ErrNotAuthorized):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyApprovalNotAuthorized))
	case errors.Is(err, services.ErrDocumentNotFound):
		utils.NotFoundResponse(c, "document")
	case errors.Is(err, services.ErrDuplicateVote):
		utils.ErrorResponse(c, 400, "DUPLICATE_VOTE", i18n.T(lang, i18n.KeyApprovalDuplicate), nil)
	case errors.Is(err, services.ErrTransactionConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyApprovalConflict))
	default:
		if stateErr, ok := services.IsInvalidState(err); ok {
			utils.ErrorResponse(c, 400, "INVALID_STATE", i18n.T(lang, i18n.KeyApprovalInvalidState), gin.H{
				"current_status": stateErr.CurrentStatus,
			})
			return
		}
		// Unexpected storage failure: opaque to the client
		utils.InternalErrorResponse(c, "")
	}
}

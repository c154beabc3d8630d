// internal/handlers/form.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/i18n"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/services"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/utils"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(formService *services.FormService) *FormHandler {
	return &FormHandler{
		formService: formService,
	}
}

// GET /forms
func (h *FormHandler) GetForms(c *gin.Context) {
	forms, err := h.formService.ListForms()
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"forms": forms,
	})
}

// GET /forms/:form/approvers
func (h *FormHandler) GetFormApprovers(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	formName := c.Param("form")

	approvers, err := h.formService.GetFormApprovers(formName)
	if err != nil {
		if errors.Is(err, services.ErrUnknownForm) {
			utils.ErrorResponse(c, 400, "UNKNOWN_FORM", i18n.T(lang, i18n.KeyFormNotFound), nil)
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"approvers": approvers,
	})
}

// POST /admin/forms/:form/approvers
func (h *FormHandler) AssignApprover(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	formName := c.Param("form")

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assignedByID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.AssignApproverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	assignment, err := h.formService.AssignApprover(formName, &req, assignedByID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownForm):
			utils.ErrorResponse(c, 400, "UNKNOWN_FORM", i18n.T(lang, i18n.KeyFormNotFound), nil)
		case errors.Is(err, services.ErrPersonNotFound):
			utils.NotFoundResponse(c, "person")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyFormApproverAdded),
		"assignment": assignment,
	})
}

// DELETE /admin/forms/:form/approvers/:personID
func (h *FormHandler) RemoveApprover(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	formName := c.Param("form")

	personID, err := uuid.Parse(c.Param("personID"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid person ID", nil)
		return
	}

	if err := h.formService.RemoveApprover(formName, personID); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownForm):
			utils.ErrorResponse(c, 400, "UNKNOWN_FORM", i18n.T(lang, i18n.KeyFormNotFound), nil)
		case errors.Is(err, services.ErrPersonNotFound):
			utils.NotFoundResponse(c, "person")
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFormApproverRemoved),
	})
}

// internal/handlers/document.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/i18n"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/services"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// POST /forms/:form/documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	formName := c.Param("form")

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	createdByID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	doc, err := h.documentService.CreateDocument(formName, &req, createdByID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownForm) {
			utils.ErrorResponse(c, 400, "UNKNOWN_FORM", i18n.T(lang, i18n.KeyFormNotFound), nil)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyDocumentCreated),
		"document": doc,
	})
}

// GET /forms/:form/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	formName := c.Param("form")

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	doc, err := h.documentService.GetDocument(formName, documentID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownForm):
			utils.ErrorResponse(c, 400, "UNKNOWN_FORM", i18n.T(lang, i18n.KeyFormNotFound), nil)
		case errors.Is(err, services.ErrDocumentNotFound):
			utils.NotFoundResponse(c, "document")
		default:
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"document": doc,
	})
}

// GET /forms/:form/documents
func (h *DocumentHandler) GetDocuments(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	formName := c.Param("form")
	params := utils.GetPaginationParams(c)

	documents, total, err := h.documentService.ListDocuments(formName, params)
	if err != nil {
		if errors.Is(err, services.ErrUnknownForm) {
			utils.ErrorResponse(c, 400, "UNKNOWN_FORM", i18n.T(lang, i18n.KeyFormNotFound), nil)
			return
		}
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(documents, total, params)
	utils.PaginatedResponse(c, result)
}

// internal/services/document_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/utils"
)

// DocumentService is the minimal owning-subsystem surface: create a
// document (always pending), read it, list it. Richer concerns such as
// line items, pricing and generation live outside this backend.
type DocumentService struct {
	db       *gorm.DB
	registry *DocumentRegistry
}

type CreateDocumentRequest struct {
	Number       string     `json:"number" validate:"required,document_number"`
	Counterparty string     `json:"counterparty" validate:"omitempty,max=255"`
	TotalAmount  float64    `json:"total_amount" validate:"omitempty,gte=0"`
	Currency     string     `json:"currency" validate:"omitempty,currency"`
	Date         *time.Time `json:"date,omitempty"`
}

func NewDocumentService(db *gorm.DB, registry *DocumentRegistry) *DocumentService {
	return &DocumentService{
		db:       db,
		registry: registry,
	}
}

// CreateDocument inserts a new document of the given form. Documents always
// start pending; the approval engine owns the transition out of it.
func (s *DocumentService) CreateDocument(formName string, req *CreateDocumentRequest, createdByID uuid.UUID) (interface{}, error) {
	if _, ok := s.registry.Adapter(formName); !ok {
		return nil, ErrUnknownForm
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	approval := models.ApprovalFields{
		Status:      models.DocumentStatusPending,
		CreatedByID: createdByID,
	}

	var doc interface{}
	switch formName {
	case models.FormSalesRFQ:
		doc = &models.SalesRFQ{ApprovalFields: approval, RFQNumber: req.Number, CustomerName: req.Counterparty, RequiredBy: req.Date}
	case models.FormPurchaseOrder:
		doc = &models.PurchaseOrder{ApprovalFields: approval, OrderNumber: req.Number, SupplierName: req.Counterparty, TotalAmount: req.TotalAmount, Currency: currency, DeliverBy: req.Date}
	case models.FormPurchaseInvoice:
		doc = &models.PurchaseInvoice{ApprovalFields: approval, InvoiceNumber: req.Number, SupplierName: req.Counterparty, TotalAmount: req.TotalAmount, Currency: currency, DueDate: req.Date}
	case models.FormSalesQuotation:
		doc = &models.SalesQuotation{ApprovalFields: approval, QuotationNumber: req.Number, CustomerName: req.Counterparty, TotalAmount: req.TotalAmount, Currency: currency, ValidUntil: req.Date}
	case models.FormSalesInvoice:
		doc = &models.SalesInvoice{ApprovalFields: approval, InvoiceNumber: req.Number, CustomerName: req.Counterparty, TotalAmount: req.TotalAmount, Currency: currency, DueDate: req.Date}
	case models.FormSalesOrder:
		doc = &models.SalesOrder{ApprovalFields: approval, OrderNumber: req.Number, CustomerName: req.Counterparty, TotalAmount: req.TotalAmount, Currency: currency, ShipBy: req.Date}
	default:
		return nil, ErrUnknownForm
	}

	if err := s.db.Create(doc).Error; err != nil {
		if IsDuplicateKeyError(err) {
			return nil, errors.New("document number already exists")
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

func (s *DocumentService) GetDocument(formName string, documentID uuid.UUID) (map[string]interface{}, error) {
	adapter, ok := s.registry.Adapter(formName)
	if !ok {
		return nil, ErrUnknownForm
	}

	var row map[string]interface{}
	err := s.db.Table(adapter.TableName()).
		Where("id = ? AND deleted_at IS NULL", documentID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return row, nil
}

func (s *DocumentService) ListDocuments(formName string, params utils.PaginationParams) ([]map[string]interface{}, int64, error) {
	adapter, ok := s.registry.Adapter(formName)
	if !ok {
		return nil, 0, ErrUnknownForm
	}

	query := s.db.Table(adapter.TableName()).Where("deleted_at IS NULL")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var rows []map[string]interface{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return rows, total, nil
}

// internal/services/document_adapter.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

// DocumentAdapter is the capability set a document subsystem exposes to the
// approval engine: read the lifecycle status and conditionally flip it to
// approved. One adapter per form; the engine never touches the rest of a
// document row.
type DocumentAdapter interface {
	FormName() string
	TableName() string

	// GetStatus returns the document's status. When lock is true and the
	// dialect supports it, the row is locked until the surrounding
	// transaction ends, serializing concurrent approvals of the same
	// document.
	GetStatus(tx *gorm.DB, documentID uuid.UUID, lock bool) (models.DocumentStatus, bool, error)

	// TrySetApproved transitions the document to approved only if its
	// status still equals expected at write time. Returns false when the
	// guard failed (concurrent transition or deletion).
	TrySetApproved(tx *gorm.DB, documentID uuid.UUID, expected models.DocumentStatus) (bool, error)

	// CreatorID returns the person who created the document, for the
	// status-changed notification.
	CreatorID(tx *gorm.DB, documentID uuid.UUID) (uuid.UUID, error)
}

// tableDocumentAdapter implements DocumentAdapter over a single gorm table.
// All six document types share this implementation; only the table name and
// form name vary.
type tableDocumentAdapter struct {
	formName string
	table    string
}

func (a *tableDocumentAdapter) FormName() string  { return a.formName }
func (a *tableDocumentAdapter) TableName() string { return a.table }

func (a *tableDocumentAdapter) GetStatus(tx *gorm.DB, documentID uuid.UUID, lock bool) (models.DocumentStatus, bool, error) {
	query := tx.Table(a.table).
		Select("status").
		Where("id = ? AND deleted_at IS NULL", documentID)

	// SQLite serializes writers on its own; postgres needs the row lock to
	// keep two concurrent quorum recounts from both skipping the
	// transition.
	if lock && tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row struct {
		Status models.DocumentStatus
	}
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read document status: %w", err)
	}

	return row.Status, true, nil
}

func (a *tableDocumentAdapter) TrySetApproved(tx *gorm.DB, documentID uuid.UUID, expected models.DocumentStatus) (bool, error) {
	now := time.Now()
	result := tx.Table(a.table).
		Where("id = ? AND status = ? AND deleted_at IS NULL", documentID, expected).
		Updates(map[string]interface{}{
			"status":      models.DocumentStatusApproved,
			"approved_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition document status: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (a *tableDocumentAdapter) CreatorID(tx *gorm.DB, documentID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		CreatedByID uuid.UUID
	}
	err := tx.Table(a.table).
		Select("created_by_id").
		Where("id = ? AND deleted_at IS NULL", documentID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrDocumentNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to read document creator: %w", err)
	}
	return row.CreatedByID, nil
}

// DocumentRegistry maps form names to their adapters.
type DocumentRegistry struct {
	adapters map[string]DocumentAdapter
}

// NewDocumentRegistry registers the six approvable document subsystems.
func NewDocumentRegistry() *DocumentRegistry {
	registry := &DocumentRegistry{adapters: make(map[string]DocumentAdapter)}

	for formName, table := range map[string]string{
		models.FormSalesRFQ:        models.SalesRFQ{}.TableName(),
		models.FormPurchaseOrder:   models.PurchaseOrder{}.TableName(),
		models.FormPurchaseInvoice: models.PurchaseInvoice{}.TableName(),
		models.FormSalesQuotation:  models.SalesQuotation{}.TableName(),
		models.FormSalesInvoice:    models.SalesInvoice{}.TableName(),
		models.FormSalesOrder:      models.SalesOrder{}.TableName(),
	} {
		registry.adapters[formName] = &tableDocumentAdapter{formName: formName, table: table}
	}

	return registry
}

func (r *DocumentRegistry) Adapter(formName string) (DocumentAdapter, bool) {
	adapter, ok := r.adapters[formName]
	return adapter, ok
}

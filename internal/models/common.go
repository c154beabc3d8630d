// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the primary key client-side so the same models work
// against both PostgreSQL and the SQLite test databases.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type PersonRole string

const (
	PersonRoleAdmin    PersonRole = "admin"
	PersonRoleAgent    PersonRole = "agent"
	PersonRoleMerchant PersonRole = "merchant"
)

type PersonStatus string

const (
	PersonStatusActive    PersonStatus = "active"
	PersonStatusSuspended PersonStatus = "suspended"
	PersonStatusDisabled  PersonStatus = "disabled"
)

// DocumentStatus is the lifecycle status shared by every approvable document.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusApproved  DocumentStatus = "approved"
	DocumentStatusRejected  DocumentStatus = "rejected"
	DocumentStatusCancelled DocumentStatus = "cancelled"
)

var validDocumentStatuses = map[DocumentStatus]bool{
	DocumentStatusDraft:     true,
	DocumentStatusPending:   true,
	DocumentStatusApproved:  true,
	DocumentStatusRejected:  true,
	DocumentStatusCancelled: true,
}

var terminalDocumentStatuses = map[DocumentStatus]bool{
	DocumentStatusApproved:  true,
	DocumentStatusRejected:  true,
	DocumentStatusCancelled: true,
}

func (s DocumentStatus) String() string {
	return string(s)
}

func (s DocumentStatus) IsValid() bool {
	return validDocumentStatuses[s]
}

// IsTerminal reports whether the approval workflow allows no further
// transitions from this status.
func (s DocumentStatus) IsTerminal() bool {
	return terminalDocumentStatuses[s]
}

// Form names for the six approvable document types
const (
	FormSalesRFQ        = "SalesRFQ"
	FormPurchaseOrder   = "PurchaseOrder"
	FormPurchaseInvoice = "PurchaseInvoice"
	FormSalesQuotation  = "SalesQuotation"
	FormSalesInvoice    = "SalesInvoice"
	FormSalesOrder      = "SalesOrder"
)

func AllFormNames() []string {
	return []string{
		FormSalesRFQ,
		FormPurchaseOrder,
		FormPurchaseInvoice,
		FormSalesQuotation,
		FormSalesInvoice,
		FormSalesOrder,
	}
}

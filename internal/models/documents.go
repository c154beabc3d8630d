// internal/models/documents.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalFields is embedded by every approvable document. The approval
// engine reads Status and conditionally writes it to approved; everything
// else belongs to the owning subsystem.
type ApprovalFields struct {
	Status      DocumentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedByID uuid.UUID      `json:"created_by_id" gorm:"type:uuid;not null"`
	ApprovedAt  *time.Time     `json:"approved_at"`
}

type SalesRFQ struct {
	BaseModel
	ApprovalFields
	RFQNumber    string     `json:"rfq_number" gorm:"uniqueIndex;size:50;not null"`
	CustomerName string     `json:"customer_name" gorm:"size:255"`
	Origin       string     `json:"origin" gorm:"size:255"`
	Destination  string     `json:"destination" gorm:"size:255"`
	RequiredBy   *time.Time `json:"required_by"`
}

func (SalesRFQ) TableName() string { return "sales_rfqs" }

type PurchaseOrder struct {
	BaseModel
	ApprovalFields
	OrderNumber  string     `json:"order_number" gorm:"uniqueIndex;size:50;not null"`
	SupplierName string     `json:"supplier_name" gorm:"size:255"`
	TotalAmount  float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	Currency     string     `json:"currency" gorm:"size:3;default:'USD'"`
	DeliverBy    *time.Time `json:"deliver_by"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

type PurchaseInvoice struct {
	BaseModel
	ApprovalFields
	InvoiceNumber string     `json:"invoice_number" gorm:"uniqueIndex;size:50;not null"`
	SupplierName  string     `json:"supplier_name" gorm:"size:255"`
	TotalAmount   float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	Currency      string     `json:"currency" gorm:"size:3;default:'USD'"`
	DueDate       *time.Time `json:"due_date"`
}

func (PurchaseInvoice) TableName() string { return "purchase_invoices" }

type SalesQuotation struct {
	BaseModel
	ApprovalFields
	QuotationNumber string     `json:"quotation_number" gorm:"uniqueIndex;size:50;not null"`
	CustomerName    string     `json:"customer_name" gorm:"size:255"`
	TotalAmount     float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	Currency        string     `json:"currency" gorm:"size:3;default:'USD'"`
	ValidUntil      *time.Time `json:"valid_until"`
}

func (SalesQuotation) TableName() string { return "sales_quotations" }

type SalesInvoice struct {
	BaseModel
	ApprovalFields
	InvoiceNumber string     `json:"invoice_number" gorm:"uniqueIndex;size:50;not null"`
	CustomerName  string     `json:"customer_name" gorm:"size:255"`
	TotalAmount   float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	Currency      string     `json:"currency" gorm:"size:3;default:'USD'"`
	DueDate       *time.Time `json:"due_date"`
}

func (SalesInvoice) TableName() string { return "sales_invoices" }

type SalesOrder struct {
	BaseModel
	ApprovalFields
	OrderNumber  string     `json:"order_number" gorm:"uniqueIndex;size:50;not null"`
	CustomerName string     `json:"customer_name" gorm:"size:255"`
	TotalAmount  float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	Currency     string     `json:"currency" gorm:"size:3;default:'USD'"`
	ShipBy       *time.Time `json:"ship_by"`
}

func (SalesOrder) TableName() string { return "sales_orders" }

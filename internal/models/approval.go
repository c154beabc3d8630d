// internal/models/approval.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalRecord is one approver's vote on one document. Records are never
// physically deleted; a revoked vote is soft-deleted so the audit trail
// survives. At most one live record may exist per
// (form_id, document_id, approver_id), enforced by a partial unique index
// created in database.RunMigrations.
type ApprovalRecord struct {
	BaseModel
	FormID           uuid.UUID `json:"form_id" gorm:"type:uuid;not null;index"`
	DocumentID       uuid.UUID `json:"document_id" gorm:"type:uuid;not null;index"`
	ApproverID       uuid.UUID `json:"approver_id" gorm:"type:uuid;not null;index"`
	Approved         bool      `json:"approved" gorm:"not null;default:false"`
	ApproverDateTime time.Time `json:"approver_date_time" gorm:"not null"`
	CreatedByID      uuid.UUID `json:"created_by_id" gorm:"type:uuid;not null"`
	Comment          string    `json:"comment,omitempty" gorm:"type:text"`

	// Relationships
	Form     Form   `json:"form,omitempty" gorm:"foreignKey:FormID"`
	Approver Person `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
}

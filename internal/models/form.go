// internal/models/form.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Form is one approvable document type (e.g. Purchase Order). Reference
// data maintained by administrators; the approval engine only reads it.
type Form struct {
	BaseModel
	FormName    string `json:"form_name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`
	Enabled     bool   `json:"enabled" gorm:"default:true"`

	// Relationships
	Approvers []FormApprover `json:"approvers,omitempty" gorm:"foreignKey:FormID"`
}

// FormApprover binds a person to a form they are authorized to approve.
// The current set of active rows per form is the required approver set.
type FormApprover struct {
	BaseModel
	FormID       uuid.UUID  `json:"form_id" gorm:"type:uuid;not null;index"`
	PersonID     uuid.UUID  `json:"person_id" gorm:"type:uuid;not null;index"`
	Active       bool       `json:"active" gorm:"default:true"`
	AssignedByID *uuid.UUID `json:"assigned_by_id" gorm:"type:uuid"`
	AssignedAt   time.Time  `json:"assigned_at"`

	// Relationships
	Form   Form   `json:"form,omitempty" gorm:"foreignKey:FormID"`
	Person Person `json:"person,omitempty" gorm:"foreignKey:PersonID"`
}

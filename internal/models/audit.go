// internal/models/audit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	PersonID     *uuid.UUID `json:"person_id" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:100;index"`
	ResourceID   *uuid.UUID `json:"resource_id" gorm:"type:uuid;index"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:512"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
}

// StatusNotification is one emitted status-changed event. Delivery is
// best-effort; a failed email leaves the row for later inspection.
type StatusNotification struct {
	BaseModel
	FormName   string         `json:"form_name" gorm:"size:100;not null;index"`
	DocumentID uuid.UUID      `json:"document_id" gorm:"type:uuid;not null;index"`
	NewStatus  DocumentStatus `json:"new_status" gorm:"type:varchar(20);not null"`
	Message    string         `json:"message" gorm:"type:text"`
	EmailedAt  *time.Time     `json:"emailed_at"`
	EmailError string         `json:"email_error,omitempty" gorm:"type:text"`
}

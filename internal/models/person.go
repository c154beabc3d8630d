// internal/models/person.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Person struct {
	BaseModel
	Username     string       `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string       `json:"-" gorm:"size:255;not null"`
	FirstName    string       `json:"first_name" gorm:"size:100"`
	LastName     string       `json:"last_name" gorm:"size:100"`
	Role         PersonRole   `json:"role" gorm:"type:varchar(20);not null;default:'agent'"`
	Status       PersonStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastLoginAt  *time.Time   `json:"last_login_at"`

	// Relationships
	FormApprovals   []FormApprover   `json:"form_approvals,omitempty" gorm:"foreignKey:PersonID"`
	ApprovalRecords []ApprovalRecord `json:"approval_records,omitempty" gorm:"foreignKey:ApproverID"`
}

func (Person) TableName() string { return "persons" }

func (p *Person) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hashedPassword)
	return nil
}

func (p *Person) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password))
}

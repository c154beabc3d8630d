// internal/services/approver_directory.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

// ApproverDirectoryService resolves the current required approver set per
// form. Read-only from the approval engine's perspective; assignments are
// managed through FormService.
type ApproverDirectoryService struct {
	db *gorm.DB
}

func NewApproverDirectoryService(db *gorm.DB) *ApproverDirectoryService {
	return &ApproverDirectoryService{db: db}
}

// FormByName resolves a form row. Returns ErrUnknownForm when no live form
// with that name exists.
func (s *ApproverDirectoryService) FormByName(tx *gorm.DB, formName string) (*models.Form, error) {
	if tx == nil {
		tx = s.db
	}

	var form models.Form
	if err := tx.Where("form_name = ?", formName).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownForm
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &form, nil
}

// RequiredApprovers returns the current set of persons authorized to
// approve documents of the given form. Only active assignments on enabled,
// non-deleted forms count. An unknown or disabled form yields an empty set,
// meaning no one can ever approve; callers must not treat that as a
// quorum of zero.
func (s *ApproverDirectoryService) RequiredApprovers(tx *gorm.DB, formName string) ([]models.Person, error) {
	if tx == nil {
		tx = s.db
	}

	var approvers []models.Person
	err := tx.Model(&models.Person{}).
		Distinct("persons.*").
		Joins("JOIN form_approvers ON form_approvers.person_id = persons.id AND form_approvers.deleted_at IS NULL").
		Joins("JOIN forms ON forms.id = form_approvers.form_id AND forms.deleted_at IS NULL").
		Where("forms.form_name = ? AND forms.enabled = ? AND form_approvers.active = ?", formName, true, true).
		Order("persons.last_name, persons.first_name").
		Find(&approvers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve required approvers: %w", err)
	}

	return approvers, nil
}

// IsAuthorized reports whether the person is in the form's current
// required approver set.
func (s *ApproverDirectoryService) IsAuthorized(tx *gorm.DB, personID uuid.UUID, formName string) (bool, error) {
	if tx == nil {
		tx = s.db
	}

	var count int64
	err := tx.Model(&models.FormApprover{}).
		Joins("JOIN forms ON forms.id = form_approvers.form_id AND forms.deleted_at IS NULL").
		Where("forms.form_name = ? AND forms.enabled = ?", formName, true).
		Where("form_approvers.person_id = ? AND form_approvers.active = ?", personID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check approver authorization: %w", err)
	}

	return count > 0, nil
}

// internal/services/form_service.go
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

// FormService manages the form and approver-assignment reference data the
// directory reads. Assignment changes never touch past approval records;
// quorum is recomputed against the current set on the next vote.
type FormService struct {
	db        *gorm.DB
	directory *ApproverDirectoryService
}

type AssignApproverRequest struct {
	PersonID uuid.UUID `json:"person_id" validate:"required"`
}

func NewFormService(db *gorm.DB, directory *ApproverDirectoryService) *FormService {
	return &FormService{
		db:        db,
		directory: directory,
	}
}

func (s *FormService) ListForms() ([]models.Form, error) {
	var forms []models.Form
	if err := s.db.Order("form_name").Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

func (s *FormService) GetFormApprovers(formName string) ([]models.Person, error) {
	if _, err := s.directory.FormByName(nil, formName); err != nil {
		return nil, err
	}
	return s.directory.RequiredApprovers(nil, formName)
}

func (s *FormService) AssignApprover(formName string, req *AssignApproverRequest, assignedByID uuid.UUID) (*models.FormApprover, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	form, err := s.directory.FormByName(nil, formName)
	if err != nil {
		return nil, err
	}

	var person models.Person
	if err := s.db.First(&person, "id = ?", req.PersonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var assignment models.FormApprover
	err = s.db.Where("form_id = ? AND person_id = ?", form.ID, person.ID).First(&assignment).Error
	switch {
	case err == nil:
		if assignment.Active {
			return nil, errors.New("person is already an approver for this form")
		}
		// Reactivate the existing assignment. Any past votes by this person
		// count toward quorum again on the next recount.
		updates := map[string]interface{}{
			"active":         true,
			"assigned_by_id": assignedByID,
			"assigned_at":    time.Now(),
		}
		if err := s.db.Model(&assignment).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to reactivate approver: %w", err)
		}
		return &assignment, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		assignment = models.FormApprover{
			FormID:       form.ID,
			PersonID:     person.ID,
			Active:       true,
			AssignedByID: &assignedByID,
			AssignedAt:   time.Now(),
		}
		if err := s.db.Create(&assignment).Error; err != nil {
			if IsDuplicateKeyError(err) {
				return nil, errors.New("person is already an approver for this form")
			}
			return nil, fmt.Errorf("failed to assign approver: %w", err)
		}
		return &assignment, nil
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}
}

// RemoveApprover deactivates an assignment. The person's past votes remain
// in the ledger but stop counting toward quorum.
func (s *FormService) RemoveApprover(formName string, personID uuid.UUID) error {
	form, err := s.directory.FormByName(nil, formName)
	if err != nil {
		return err
	}

	result := s.db.Model(&models.FormApprover{}).
		Where("form_id = ? AND person_id = ? AND active = ?", form.ID, personID, true).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to remove approver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPersonNotFound
	}

	return nil
}

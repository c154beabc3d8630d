// internal/services/approval_engine.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/database"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

// ApprovalService orchestrates the multi-approver workflow shared by all
// approvable document types: authorize the approver, record the vote,
// recompute quorum against the current required approver set, and
// transition the document to approved exactly once, all inside one
// database transaction.
type ApprovalService struct {
	db                 *gorm.DB
	directory          *ApproverDirectoryService
	ledger             *ApprovalLedgerService
	registry           *DocumentRegistry
	notifications      *NotificationService
	maxConflictRetries int
}

func NewApprovalService(db *gorm.DB, directory *ApproverDirectoryService, ledger *ApprovalLedgerService, registry *DocumentRegistry, notifications *NotificationService, maxConflictRetries int) *ApprovalService {
	return &ApprovalService{
		db:                 db,
		directory:          directory,
		ledger:             ledger,
		registry:           registry,
		notifications:      notifications,
		maxConflictRetries: maxConflictRetries,
	}
}

type ApprovalResult struct {
	FullyApproved bool   `json:"is_fully_approved"`
	Remaining     int    `json:"remaining,omitempty"`
	Message       string `json:"message"`
}

type ApproverStatus struct {
	PersonID         uuid.UUID  `json:"person_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Approved         bool       `json:"approved"`
	ApproverDateTime *time.Time `json:"approver_date_time,omitempty"`
}

type ApprovalStatus struct {
	FormName           string                `json:"form_name"`
	DocumentID         uuid.UUID             `json:"document_id"`
	DocumentStatus     models.DocumentStatus `json:"document_status"`
	RequiredApprovers  int                   `json:"required_approvers"`
	CompletedApprovals int                   `json:"completed_approvals"`
	ApprovalStatus     []ApproverStatus      `json:"approval_status"`
}

// Approve records one approval vote and, when the vote completes the
// quorum, atomically transitions the document to approved. Transient
// transaction conflicts are retried up to the configured limit before
// surfacing as ErrTransactionConflict.
func (s *ApprovalService) Approve(ctx context.Context, formName string, documentID, approverID, actingUserID uuid.UUID, comment string) (*ApprovalResult, error) {
	adapter, ok := s.registry.Adapter(formName)
	if !ok {
		return nil, ErrUnknownForm
	}

	form, err := s.directory.FormByName(s.db.WithContext(ctx), formName)
	if err != nil {
		return nil, err
	}

	// The approver identity is re-checked against the directory here; a
	// client-asserted role is never trusted for the approval decision.
	authorized, err := s.directory.IsAuthorized(s.db.WithContext(ctx), approverID, formName)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, ErrNotAuthorized
	}

	var result *ApprovalResult
	var creatorID uuid.UUID

	for attempt := 0; ; attempt++ {
		result, creatorID, err = s.approveTx(ctx, adapter, form, documentID, approverID, actingUserID, comment)
		if err == nil || !IsConflictError(err) {
			break
		}
		if attempt >= s.maxConflictRetries {
			return nil, fmt.Errorf("%w: %v", ErrTransactionConflict, err)
		}
		logrus.WithFields(logrus.Fields{
			"form":        formName,
			"document_id": documentID,
			"approver_id": approverID,
			"attempt":     attempt + 1,
		}).Warn("Retrying approval after transaction conflict")
	}
	if err != nil {
		return nil, err
	}

	// Notification is out-of-band on purpose: a delivery failure must not
	// undo a committed approval.
	if result.FullyApproved && s.notifications != nil {
		go s.notifications.NotifyStatusChanged(formName, documentID, models.DocumentStatusApproved, creatorID)
	}

	return result, nil
}

// approveTx runs the precondition checks and mutations of a single approval
// attempt inside one transaction. Either the vote (and, at quorum, the
// status transition) commits as a whole, or nothing is visible.
func (s *ApprovalService) approveTx(ctx context.Context, adapter DocumentAdapter, form *models.Form, documentID, approverID, actingUserID uuid.UUID, comment string) (*ApprovalResult, uuid.UUID, error) {
	var result *ApprovalResult
	var creatorID uuid.UUID

	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		status, exists, err := adapter.GetStatus(tx, documentID, true)
		if err != nil {
			return err
		}
		if !exists {
			return ErrDocumentNotFound
		}
		if status != models.DocumentStatusPending {
			return &InvalidStateError{CurrentStatus: status}
		}

		voted, err := s.ledger.HasVoted(tx, form.ID, documentID, approverID)
		if err != nil {
			return err
		}
		if voted {
			return ErrDuplicateVote
		}

		record := &models.ApprovalRecord{
			FormID:           form.ID,
			DocumentID:       documentID,
			ApproverID:       approverID,
			Approved:         true,
			ApproverDateTime: time.Now(),
			CreatedByID:      actingUserID,
			Comment:          comment,
		}
		if err := s.ledger.RecordVote(tx, record); err != nil {
			return err
		}

		required, err := s.directory.RequiredApprovers(tx, form.FormName)
		if err != nil {
			return err
		}
		eligibleIDs := make([]uuid.UUID, len(required))
		for i, person := range required {
			eligibleIDs[i] = person.ID
		}

		approvedCount, err := s.ledger.CountApprovedVotes(tx, form.ID, documentID, eligibleIDs)
		if err != nil {
			return err
		}

		totalCount, err := s.ledger.CountVotes(tx, form.ID, documentID)
		if err != nil {
			return err
		}
		if totalCount > approvedCount {
			// Votes from persons since removed from the required set stay
			// in the ledger but never count toward quorum.
			logrus.WithFields(logrus.Fields{
				"form":        form.FormName,
				"document_id": documentID,
				"mismatched":  totalCount - approvedCount,
			}).Warn("Mismatched approvals excluded from quorum")
		}

		decision := EvaluateQuorum(len(required), approvedCount)
		if !decision.Met {
			result = &ApprovalResult{
				FullyApproved: false,
				Remaining:     decision.Remaining,
				Message:       fmt.Sprintf("Awaiting %d more approval(s)", decision.Remaining),
			}
			return nil
		}

		transitioned, err := adapter.TrySetApproved(tx, documentID, models.DocumentStatusPending)
		if err != nil {
			return err
		}
		if !transitioned {
			// The status guard failed between our locked read and the
			// write: something else transitioned or deleted the document.
			// The whole attempt rolls back and is retried.
			return ErrTransactionConflict
		}

		if creatorID, err = adapter.CreatorID(tx, documentID); err != nil {
			return err
		}

		result = &ApprovalResult{
			FullyApproved: true,
			Message:       fmt.Sprintf("%s is now fully approved.", form.FormName),
		}
		return nil
	})
	if err != nil {
		return nil, uuid.Nil, err
	}

	return result, creatorID, nil
}

// GetApprovalStatus is a read-only projection joining the current required
// approver set against the ledger. Approvers removed from the form are
// omitted even if they voted; approvers added later appear as not yet
// approved.
func (s *ApprovalService) GetApprovalStatus(ctx context.Context, formName string, documentID uuid.UUID) (*ApprovalStatus, error) {
	adapter, ok := s.registry.Adapter(formName)
	if !ok {
		return nil, ErrUnknownForm
	}

	db := s.db.WithContext(ctx)

	form, err := s.directory.FormByName(db, formName)
	if err != nil {
		return nil, err
	}

	status, exists, err := adapter.GetStatus(db, documentID, false)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDocumentNotFound
	}

	required, err := s.directory.RequiredApprovers(db, formName)
	if err != nil {
		return nil, err
	}

	votes, err := s.ledger.VotesFor(db, form.ID, documentID)
	if err != nil {
		return nil, err
	}

	projection := &ApprovalStatus{
		FormName:          formName,
		DocumentID:        documentID,
		DocumentStatus:    status,
		RequiredApprovers: len(required),
		ApprovalStatus:    make([]ApproverStatus, 0, len(required)),
	}

	for _, person := range required {
		entry := ApproverStatus{
			PersonID:  person.ID,
			FirstName: person.FirstName,
			LastName:  person.LastName,
		}
		if vote, ok := votes[person.ID]; ok && vote.Approved {
			entry.Approved = true
			when := vote.ApproverDateTime
			entry.ApproverDateTime = &when
			projection.CompletedApprovals++
		}
		projection.ApprovalStatus = append(projection.ApprovalStatus, entry)
	}

	return projection, nil
}

// IsInvalidState unwraps the typed state error for handlers.
func IsInvalidState(err error) (*InvalidStateError, bool) {
	var stateErr *InvalidStateError
	if errors.As(err, &stateErr) {
		return stateErr, true
	}
	return nil, false
}

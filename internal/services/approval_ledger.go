// internal/services/approval_ledger.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

// ApprovalLedgerService owns the append-only vote records. Uniqueness of
// live votes per (form, document, approver) is enforced twice: a cheap
// existence check inside the approval transaction, and the partial unique
// index uq_approval_records_live_vote for the window between two
// concurrent checks.
type ApprovalLedgerService struct {
	db *gorm.DB
}

func NewApprovalLedgerService(db *gorm.DB) *ApprovalLedgerService {
	return &ApprovalLedgerService{db: db}
}

func (s *ApprovalLedgerService) HasVoted(tx *gorm.DB, formID, documentID, approverID uuid.UUID) (bool, error) {
	if tx == nil {
		tx = s.db
	}

	var count int64
	err := tx.Model(&models.ApprovalRecord{}).
		Where("form_id = ? AND document_id = ? AND approver_id = ?", formID, documentID, approverID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}

	return count > 0, nil
}

// RecordVote appends one vote. Returns ErrDuplicateVote when a live record
// for the same (form, document, approver) already exists.
func (s *ApprovalLedgerService) RecordVote(tx *gorm.DB, record *models.ApprovalRecord) error {
	if tx == nil {
		tx = s.db
	}

	if err := tx.Create(record).Error; err != nil {
		if IsDuplicateKeyError(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("failed to record vote: %w", err)
	}

	return nil
}

// CountApprovedVotes counts live approved votes whose approver is in the
// eligible set. Votes by persons no longer in the required approver set are
// retained in the ledger but excluded here, so quorum is always computed
// against the current set.
func (s *ApprovalLedgerService) CountApprovedVotes(tx *gorm.DB, formID, documentID uuid.UUID, eligibleApproverIDs []uuid.UUID) (int, error) {
	if tx == nil {
		tx = s.db
	}

	if len(eligibleApproverIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := tx.Model(&models.ApprovalRecord{}).
		Where("form_id = ? AND document_id = ? AND approved = ?", formID, documentID, true).
		Where("approver_id IN ?", eligibleApproverIDs).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count approved votes: %w", err)
	}

	return int(count), nil
}

// CountVotes counts all live votes for the document regardless of current
// eligibility. The difference against CountApprovedVotes exposes mismatched
// approvals from since-removed approvers.
func (s *ApprovalLedgerService) CountVotes(tx *gorm.DB, formID, documentID uuid.UUID) (int, error) {
	if tx == nil {
		tx = s.db
	}

	var count int64
	err := tx.Model(&models.ApprovalRecord{}).
		Where("form_id = ? AND document_id = ? AND approved = ?", formID, documentID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}

	return int(count), nil
}

// VotesFor returns the live votes for a document keyed by approver.
func (s *ApprovalLedgerService) VotesFor(tx *gorm.DB, formID, documentID uuid.UUID) (map[uuid.UUID]models.ApprovalRecord, error) {
	if tx == nil {
		tx = s.db
	}

	var records []models.ApprovalRecord
	err := tx.Where("form_id = ? AND document_id = ?", formID, documentID).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	votes := make(map[uuid.UUID]models.ApprovalRecord, len(records))
	for _, record := range records {
		votes[record.ApproverID] = record
	}
	return votes, nil
}

// RevokeVote soft-deletes a live vote. Not reachable from the HTTP surface
// today; kept for audit-preserving corrections by operators.
func (s *ApprovalLedgerService) RevokeVote(tx *gorm.DB, formID, documentID, approverID uuid.UUID) error {
	if tx == nil {
		tx = s.db
	}

	result := tx.Where("form_id = ? AND document_id = ? AND approver_id = ?", formID, documentID, approverID).
		Delete(&models.ApprovalRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke vote: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

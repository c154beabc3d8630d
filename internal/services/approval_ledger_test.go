// internal/services/approval_ledger_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

func newVote(formID, documentID, approverID uuid.UUID) *models.ApprovalRecord {
	return &models.ApprovalRecord{
		FormID:           formID,
		DocumentID:       documentID,
		ApproverID:       approverID,
		Approved:         true,
		ApproverDateTime: time.Now(),
		CreatedByID:      approverID,
	}
}

func TestRecordVoteRejectsSecondLiveVote(t *testing.T) {
	world := newTestWorld(t, "ledger_"+t.Name())
	ledger := NewApprovalLedgerService(world.db)
	documentID := uuid.New()

	require.NoError(t, ledger.RecordVote(nil, newVote(world.form.ID, documentID, world.alice.ID)))

	err := ledger.RecordVote(nil, newVote(world.form.ID, documentID, world.alice.ID))
	assert.ErrorIs(t, err, ErrDuplicateVote)

	voted, err := ledger.HasVoted(nil, world.form.ID, documentID, world.alice.ID)
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestRevokedVoteDoesNotBlockRevote(t *testing.T) {
	world := newTestWorld(t, "ledger_"+t.Name())
	ledger := NewApprovalLedgerService(world.db)
	documentID := uuid.New()

	require.NoError(t, ledger.RecordVote(nil, newVote(world.form.ID, documentID, world.alice.ID)))
	require.NoError(t, ledger.RevokeVote(nil, world.form.ID, documentID, world.alice.ID))

	voted, err := ledger.HasVoted(nil, world.form.ID, documentID, world.alice.ID)
	require.NoError(t, err)
	assert.False(t, voted)

	// Only live rows count for uniqueness; the revoked row survives in the
	// table for audit.
	require.NoError(t, ledger.RecordVote(nil, newVote(world.form.ID, documentID, world.alice.ID)))

	var liveCount, totalCount int64
	require.NoError(t, world.db.Model(&models.ApprovalRecord{}).
		Where("document_id = ?", documentID).Count(&liveCount).Error)
	require.NoError(t, world.db.Unscoped().Model(&models.ApprovalRecord{}).
		Where("document_id = ?", documentID).Count(&totalCount).Error)
	assert.Equal(t, int64(1), liveCount)
	assert.Equal(t, int64(2), totalCount)
}

func TestCountApprovedVotesFiltersEligibility(t *testing.T) {
	world := newTestWorld(t, "ledger_"+t.Name())
	ledger := NewApprovalLedgerService(world.db)
	documentID := uuid.New()
	bob := seedPerson(t, world.db, "bob_"+t.Name(), models.PersonRoleAgent)

	require.NoError(t, ledger.RecordVote(nil, newVote(world.form.ID, documentID, world.alice.ID)))
	require.NoError(t, ledger.RecordVote(nil, newVote(world.form.ID, documentID, bob.ID)))

	count, err := ledger.CountApprovedVotes(nil, world.form.ID, documentID, []uuid.UUID{bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = ledger.CountApprovedVotes(nil, world.form.ID, documentID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	total, err := ledger.CountVotes(nil, world.form.ID, documentID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

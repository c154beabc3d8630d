// internal/services/form_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

func newFormService(t *testing.T) (*FormService, *testWorld) {
	world := newTestWorld(t, "form_"+t.Name())
	return NewFormService(world.db, NewApproverDirectoryService(world.db)), world
}

func TestAssignApprover(t *testing.T) {
	service, world := newFormService(t)

	assignment, err := service.AssignApprover(models.FormSalesRFQ, &AssignApproverRequest{PersonID: world.alice.ID}, world.admin.ID)
	require.NoError(t, err)
	assert.True(t, assignment.Active)
	assert.Equal(t, world.alice.ID, assignment.PersonID)

	approvers, err := service.GetFormApprovers(models.FormSalesRFQ)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, world.alice.ID, approvers[0].ID)
}

func TestAssignApproverTwiceFails(t *testing.T) {
	service, world := newFormService(t)

	_, err := service.AssignApprover(models.FormSalesRFQ, &AssignApproverRequest{PersonID: world.alice.ID}, world.admin.ID)
	require.NoError(t, err)

	_, err = service.AssignApprover(models.FormSalesRFQ, &AssignApproverRequest{PersonID: world.alice.ID}, world.admin.ID)
	assert.Error(t, err)
}

func TestAssignApproverUnknownPerson(t *testing.T) {
	service, world := newFormService(t)

	_, err := service.AssignApprover(models.FormSalesRFQ, &AssignApproverRequest{PersonID: uuid.New()}, world.admin.ID)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestAssignApproverUnknownForm(t *testing.T) {
	service, world := newFormService(t)

	_, err := service.AssignApprover("WarehouseTransfer", &AssignApproverRequest{PersonID: world.alice.ID}, world.admin.ID)
	assert.ErrorIs(t, err, ErrUnknownForm)
}

func TestRemoveApproverDeactivatesAssignment(t *testing.T) {
	service, world := newFormService(t)

	_, err := service.AssignApprover(models.FormSalesRFQ, &AssignApproverRequest{PersonID: world.alice.ID}, world.admin.ID)
	require.NoError(t, err)

	require.NoError(t, service.RemoveApprover(models.FormSalesRFQ, world.alice.ID))

	approvers, err := service.GetFormApprovers(models.FormSalesRFQ)
	require.NoError(t, err)
	assert.Empty(t, approvers)

	// Removing again reports the person as gone.
	assert.ErrorIs(t, service.RemoveApprover(models.FormSalesRFQ, world.alice.ID), ErrPersonNotFound)
}

func TestReassignApproverReactivates(t *testing.T) {
	service, world := newFormService(t)

	_, err := service.AssignApprover(models.FormSalesRFQ, &AssignApproverRequest{PersonID: world.alice.ID}, world.admin.ID)
	require.NoError(t, err)
	require.NoError(t, service.RemoveApprover(models.FormSalesRFQ, world.alice.ID))

	assignment, err := service.AssignApprover(models.FormSalesRFQ, &AssignApproverRequest{PersonID: world.alice.ID}, world.admin.ID)
	require.NoError(t, err)
	assert.True(t, assignment.Active)

	// Still a single assignment row for the pair.
	var count int64
	require.NoError(t, world.db.Model(&models.FormApprover{}).
		Where("form_id = ? AND person_id = ?", assignment.FormID, world.alice.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// internal/services/approval_engine_test.go
package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/database"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

type ApprovalEngineTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ApprovalService

	form     *models.Form
	alice    *models.Person
	bob      *models.Person
	carol    *models.Person
	dave     *models.Person // agent, not an approver
	document *models.PurchaseOrder
}

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func seedPerson(t *testing.T, db *gorm.DB, username string, role models.PersonRole) *models.Person {
	person := &models.Person{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		LastName:  "Tester",
		Role:      role,
		Status:    models.PersonStatusActive,
	}
	require.NoError(t, person.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(person).Error)
	return person
}

func seedForm(t *testing.T, db *gorm.DB, formName string) *models.Form {
	form := &models.Form{FormName: formName, Enabled: true}
	require.NoError(t, db.Create(form).Error)
	return form
}

func seedApprover(t *testing.T, db *gorm.DB, form *models.Form, person *models.Person) {
	require.NoError(t, db.Create(&models.FormApprover{
		FormID:     form.ID,
		PersonID:   person.ID,
		Active:     true,
		AssignedAt: time.Now(),
	}).Error)
}

func seedPurchaseOrder(t *testing.T, db *gorm.DB, orderNumber string, createdBy uuid.UUID) *models.PurchaseOrder {
	order := &models.PurchaseOrder{
		ApprovalFields: models.ApprovalFields{
			Status:      models.DocumentStatusPending,
			CreatedByID: createdBy,
		},
		OrderNumber:  orderNumber,
		SupplierName: "Acme Freight",
		TotalAmount:  1250.00,
		Currency:     "USD",
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newApprovalService(db *gorm.DB, maxConflictRetries int) *ApprovalService {
	return NewApprovalService(
		db,
		NewApproverDirectoryService(db),
		NewApprovalLedgerService(db),
		NewDocumentRegistry(),
		nil,
		maxConflictRetries,
	)
}

func (s *ApprovalEngineTestSuite) SetupTest() {
	t := s.T()
	s.db = openTestDB(t, "file:engine_"+t.Name()+"?mode=memory&cache=shared")
	s.service = newApprovalService(s.db, 3)

	s.form = seedForm(t, s.db, models.FormPurchaseOrder)
	s.alice = seedPerson(t, s.db, "alice_"+t.Name(), models.PersonRoleAgent)
	s.bob = seedPerson(t, s.db, "bob_"+t.Name(), models.PersonRoleAgent)
	s.carol = seedPerson(t, s.db, "carol_"+t.Name(), models.PersonRoleAdmin)
	s.dave = seedPerson(t, s.db, "dave_"+t.Name(), models.PersonRoleAgent)

	seedApprover(t, s.db, s.form, s.alice)
	seedApprover(t, s.db, s.form, s.bob)
	seedApprover(t, s.db, s.form, s.carol)

	s.document = seedPurchaseOrder(t, s.db, "PO-"+t.Name(), s.dave.ID)
}

func (s *ApprovalEngineTestSuite) approve(person *models.Person) (*ApprovalResult, error) {
	return s.service.Approve(context.Background(), models.FormPurchaseOrder, s.document.ID, person.ID, person.ID, "")
}

func (s *ApprovalEngineTestSuite) documentStatus() models.DocumentStatus {
	var order models.PurchaseOrder
	s.Require().NoError(s.db.First(&order, "id = ?", s.document.ID).Error)
	return order.Status
}

func (s *ApprovalEngineTestSuite) TestQuorumProgression() {
	result, err := s.approve(s.alice)
	s.Require().NoError(err)
	s.False(result.FullyApproved)
	s.Equal(2, result.Remaining)
	s.Equal("Awaiting 2 more approval(s)", result.Message)
	s.Equal(models.DocumentStatusPending, s.documentStatus())

	result, err = s.approve(s.bob)
	s.Require().NoError(err)
	s.False(result.FullyApproved)
	s.Equal(1, result.Remaining)

	result, err = s.approve(s.carol)
	s.Require().NoError(err)
	s.True(result.FullyApproved)
	s.Contains(result.Message, "fully approved")
	s.Equal(models.DocumentStatusApproved, s.documentStatus())

	var order models.PurchaseOrder
	s.Require().NoError(s.db.First(&order, "id = ?", s.document.ID).Error)
	s.NotNil(order.ApprovedAt)
}

func (s *ApprovalEngineTestSuite) TestDuplicateVoteRejected() {
	_, err := s.approve(s.alice)
	s.Require().NoError(err)

	_, err = s.approve(s.alice)
	s.Require().ErrorIs(err, ErrDuplicateVote)

	// The duplicate attempt must not add a second ledger row.
	var count int64
	s.Require().NoError(s.db.Model(&models.ApprovalRecord{}).
		Where("form_id = ? AND document_id = ? AND approver_id = ?", s.form.ID, s.document.ID, s.alice.ID).
		Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *ApprovalEngineTestSuite) TestUnauthorizedApproverRejected() {
	_, err := s.approve(s.dave)
	s.Require().ErrorIs(err, ErrNotAuthorized)

	var count int64
	s.Require().NoError(s.db.Model(&models.ApprovalRecord{}).
		Where("document_id = ?", s.document.ID).
		Count(&count).Error)
	s.Equal(int64(0), count)
}

func (s *ApprovalEngineTestSuite) TestUnknownFormRejected() {
	_, err := s.service.Approve(context.Background(), "WarehouseTransfer", s.document.ID, s.alice.ID, s.alice.ID, "")
	s.Require().ErrorIs(err, ErrUnknownForm)
}

func (s *ApprovalEngineTestSuite) TestMissingDocumentRejected() {
	_, err := s.service.Approve(context.Background(), models.FormPurchaseOrder, uuid.New(), s.alice.ID, s.alice.ID, "")
	s.Require().ErrorIs(err, ErrDocumentNotFound)
}

func (s *ApprovalEngineTestSuite) TestNonPendingDocumentRejected() {
	s.Require().NoError(s.db.Model(&models.PurchaseOrder{}).
		Where("id = ?", s.document.ID).
		Update("status", models.DocumentStatusRejected).Error)

	_, err := s.approve(s.alice)
	stateErr, ok := IsInvalidState(err)
	s.Require().True(ok, "expected invalid state error, got %v", err)
	s.Equal(models.DocumentStatusRejected, stateErr.CurrentStatus)
}

func (s *ApprovalEngineTestSuite) TestApprovedDocumentRejectsFurtherVotes() {
	for _, approver := range []*models.Person{s.alice, s.bob, s.carol} {
		_, err := s.approve(approver)
		s.Require().NoError(err)
	}
	s.Equal(models.DocumentStatusApproved, s.documentStatus())

	// A late approver added after the transition cannot vote anymore.
	eve := seedPerson(s.T(), s.db, "eve_"+s.T().Name(), models.PersonRoleAgent)
	seedApprover(s.T(), s.db, s.form, eve)

	_, err := s.approve(eve)
	_, ok := IsInvalidState(err)
	s.Require().True(ok, "expected invalid state error, got %v", err)
}

func (s *ApprovalEngineTestSuite) TestRemovedApproverVoteExcludedFromQuorum() {
	_, err := s.approve(s.alice)
	s.Require().NoError(err)

	// Alice leaves the approver set; her vote stays in the ledger but the
	// quorum is now bob and carol alone.
	s.Require().NoError(s.db.Model(&models.FormApprover{}).
		Where("form_id = ? AND person_id = ?", s.form.ID, s.alice.ID).
		Update("active", false).Error)

	result, err := s.approve(s.bob)
	s.Require().NoError(err)
	s.False(result.FullyApproved)
	s.Equal(1, result.Remaining)

	result, err = s.approve(s.carol)
	s.Require().NoError(err)
	s.True(result.FullyApproved)

	// The mismatched vote is retained for audit.
	var count int64
	s.Require().NoError(s.db.Model(&models.ApprovalRecord{}).
		Where("document_id = ? AND approver_id = ?", s.document.ID, s.alice.ID).
		Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *ApprovalEngineTestSuite) TestApproverAddedMidFlightRaisesQuorum() {
	_, err := s.approve(s.alice)
	s.Require().NoError(err)
	_, err = s.approve(s.bob)
	s.Require().NoError(err)

	eve := seedPerson(s.T(), s.db, "eve_"+s.T().Name(), models.PersonRoleAgent)
	seedApprover(s.T(), s.db, s.form, eve)

	result, err := s.approve(s.carol)
	s.Require().NoError(err)
	s.False(result.FullyApproved)
	s.Equal(1, result.Remaining)
	s.Equal(models.DocumentStatusPending, s.documentStatus())

	result, err = s.approve(eve)
	s.Require().NoError(err)
	s.True(result.FullyApproved)
	s.Equal(models.DocumentStatusApproved, s.documentStatus())
}

func (s *ApprovalEngineTestSuite) TestGetApprovalStatusProjection() {
	_, err := s.approve(s.alice)
	s.Require().NoError(err)

	status, err := s.service.GetApprovalStatus(context.Background(), models.FormPurchaseOrder, s.document.ID)
	s.Require().NoError(err)
	s.Equal(models.FormPurchaseOrder, status.FormName)
	s.Equal(models.DocumentStatusPending, status.DocumentStatus)
	s.Equal(3, status.RequiredApprovers)
	s.Equal(1, status.CompletedApprovals)
	s.Len(status.ApprovalStatus, 3)

	byPerson := make(map[uuid.UUID]ApproverStatus)
	for _, entry := range status.ApprovalStatus {
		byPerson[entry.PersonID] = entry
	}
	s.True(byPerson[s.alice.ID].Approved)
	s.NotNil(byPerson[s.alice.ID].ApproverDateTime)
	s.False(byPerson[s.bob.ID].Approved)
	s.Nil(byPerson[s.bob.ID].ApproverDateTime)
}

func (s *ApprovalEngineTestSuite) TestGetApprovalStatusOmitsRemovedApprovers() {
	_, err := s.approve(s.alice)
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(&models.FormApprover{}).
		Where("form_id = ? AND person_id = ?", s.form.ID, s.alice.ID).
		Update("active", false).Error)

	status, err := s.service.GetApprovalStatus(context.Background(), models.FormPurchaseOrder, s.document.ID)
	s.Require().NoError(err)
	s.Equal(2, status.RequiredApprovers)
	s.Equal(0, status.CompletedApprovals)
	for _, entry := range status.ApprovalStatus {
		s.NotEqual(s.alice.ID, entry.PersonID)
	}
}

func (s *ApprovalEngineTestSuite) TestGetApprovalStatusUnknownDocument() {
	_, err := s.service.GetApprovalStatus(context.Background(), models.FormPurchaseOrder, uuid.New())
	s.Require().ErrorIs(err, ErrDocumentNotFound)
}

func TestApprovalEngineTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalEngineTestSuite))
}

// The conditional status update is the last line of defense against two
// transactions both deciding the quorum is met.
func TestTrySetApprovedGuard(t *testing.T) {
	db := openTestDB(t, "file:guard_"+t.Name()+"?mode=memory&cache=shared")
	dave := seedPerson(t, db, "dave_guard", models.PersonRoleAgent)
	order := seedPurchaseOrder(t, db, "PO-GUARD", dave.ID)

	registry := NewDocumentRegistry()
	adapter, ok := registry.Adapter(models.FormPurchaseOrder)
	require.True(t, ok)

	transitioned, err := adapter.TrySetApproved(db, order.ID, models.DocumentStatusPending)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// Second attempt sees the status guard fail.
	transitioned, err = adapter.TrySetApproved(db, order.ID, models.DocumentStatusPending)
	require.NoError(t, err)
	assert.False(t, transitioned)
}

// Concurrent approvals of the same document must each land exactly one
// ledger row and transition the document exactly once. A file-backed
// database with immediate transactions exercises real writer contention.
func TestConcurrentApprovals(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "approvals.db") + "?_busy_timeout=5000&_txlock=immediate"
	db := openTestDB(t, dsn)

	form := seedForm(t, db, models.FormSalesOrder)
	creator := seedPerson(t, db, "creator_conc", models.PersonRoleAgent)

	approvers := make([]*models.Person, 3)
	for i, name := range []string{"conc_a", "conc_b", "conc_c"} {
		approvers[i] = seedPerson(t, db, name, models.PersonRoleAgent)
		seedApprover(t, db, form, approvers[i])
	}

	order := &models.SalesOrder{
		ApprovalFields: models.ApprovalFields{
			Status:      models.DocumentStatusPending,
			CreatedByID: creator.ID,
		},
		OrderNumber:  "SO-CONC",
		CustomerName: "Globex",
	}
	require.NoError(t, db.Create(order).Error)

	service := newApprovalService(db, 10)

	var wg sync.WaitGroup
	results := make([]*ApprovalResult, len(approvers))
	errs := make([]error, len(approvers))

	for i, approver := range approvers {
		wg.Add(1)
		go func(i int, approverID uuid.UUID) {
			defer wg.Done()
			results[i], errs[i] = service.Approve(context.Background(), models.FormSalesOrder, order.ID, approverID, approverID, "")
		}(i, approver.ID)
	}
	wg.Wait()

	fullyApproved := 0
	for i := range approvers {
		require.NoError(t, errs[i])
		if results[i].FullyApproved {
			fullyApproved++
		}
	}
	assert.Equal(t, 1, fullyApproved, "exactly one vote completes the quorum")

	var finalOrder models.SalesOrder
	require.NoError(t, db.First(&finalOrder, "id = ?", order.ID).Error)
	assert.Equal(t, models.DocumentStatusApproved, finalOrder.Status)

	var voteCount int64
	require.NoError(t, db.Model(&models.ApprovalRecord{}).
		Where("form_id = ? AND document_id = ?", form.ID, order.ID).
		Count(&voteCount).Error)
	assert.Equal(t, int64(3), voteCount)
}

// The same approver racing against themselves lands exactly one live vote.
func TestConcurrentDuplicateVotes(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "dup.db") + "?_busy_timeout=5000&_txlock=immediate"
	db := openTestDB(t, dsn)

	form := seedForm(t, db, models.FormSalesInvoice)
	creator := seedPerson(t, db, "creator_dup", models.PersonRoleAgent)
	approver := seedPerson(t, db, "approver_dup", models.PersonRoleAgent)
	other := seedPerson(t, db, "other_dup", models.PersonRoleAgent)
	seedApprover(t, db, form, approver)
	seedApprover(t, db, form, other)

	invoice := &models.SalesInvoice{
		ApprovalFields: models.ApprovalFields{
			Status:      models.DocumentStatusPending,
			CreatedByID: creator.ID,
		},
		InvoiceNumber: "SI-DUP",
		CustomerName:  "Initech",
	}
	require.NoError(t, db.Create(invoice).Error)

	service := newApprovalService(db, 10)

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Approve(context.Background(), models.FormSalesInvoice, invoice.ID, approver.ID, approver.ID, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := 0; i < attempts; i++ {
		if errs[i] == nil {
			succeeded++
		} else {
			require.ErrorIs(t, errs[i], ErrDuplicateVote)
		}
	}
	assert.Equal(t, 1, succeeded)

	var voteCount int64
	require.NoError(t, db.Model(&models.ApprovalRecord{}).
		Where("form_id = ? AND document_id = ? AND approver_id = ?", form.ID, invoice.ID, approver.ID).
		Count(&voteCount).Error)
	assert.Equal(t, int64(1), voteCount)
}

// internal/handlers/approval_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/database"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/services"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/utils"
)

type ApprovalHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	form     *models.Form
	alice    *models.Person
	bob      *models.Person
	dave     *models.Person // not an approver
	document *models.SalesRFQ
}

// testAuth stands in for the JWT middleware: the person named by the
// X-Person-ID header is treated as authenticated.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if personID := c.GetHeader("X-Person-ID"); personID != "" {
			c.Set("user_id", personID)
			c.Set("person_role", string(models.PersonRoleAgent))
		}
		c.Next()
	}
}

func (s *ApprovalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:handler_"+s.T().Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db))
	s.db = db

	s.form = &models.Form{FormName: models.FormSalesRFQ, Enabled: true}
	s.Require().NoError(db.Create(s.form).Error)

	s.alice = s.seedPerson("alice")
	s.bob = s.seedPerson("bob")
	s.dave = s.seedPerson("dave")

	for _, approver := range []*models.Person{s.alice, s.bob} {
		s.Require().NoError(db.Create(&models.FormApprover{
			FormID:     s.form.ID,
			PersonID:   approver.ID,
			Active:     true,
			AssignedAt: time.Now(),
		}).Error)
	}

	s.document = &models.SalesRFQ{
		ApprovalFields: models.ApprovalFields{
			Status:      models.DocumentStatusPending,
			CreatedByID: s.dave.ID,
		},
		RFQNumber:    "RFQ-" + s.T().Name(),
		CustomerName: "Umbrella Logistics",
	}
	s.Require().NoError(db.Create(s.document).Error)

	registry := services.NewDocumentRegistry()
	approvalService := services.NewApprovalService(
		db,
		services.NewApproverDirectoryService(db),
		services.NewApprovalLedgerService(db),
		registry,
		nil,
		3,
	)
	handler := NewApprovalHandler(approvalService)

	s.router = gin.New()
	documents := s.router.Group("/v1/forms/:form/documents")
	documents.Use(testAuth())
	{
		documents.POST("/:id/approve", handler.Approve)
		documents.GET("/:id/approval-status", handler.GetApprovalStatus)
	}
}

func (s *ApprovalHandlerTestSuite) seedPerson(username string) *models.Person {
	person := &models.Person{
		Username:  username + "_" + s.T().Name(),
		Email:     username + "_" + s.T().Name() + "@example.com",
		FirstName: username,
		LastName:  "Tester",
		Role:      models.PersonRoleAgent,
		Status:    models.PersonStatusActive,
	}
	s.Require().NoError(person.SetPassword("TestPass123!"))
	s.Require().NoError(s.db.Create(person).Error)
	return person
}

func (s *ApprovalHandlerTestSuite) approveAs(person *models.Person, formName, documentID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest("POST", "/v1/forms/"+formName+"/documents/"+documentID+"/approve", &buf)
	req.Header.Set("Content-Type", "application/json")
	if person != nil {
		req.Header.Set("X-Person-ID", person.ID.String())
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ApprovalHandlerTestSuite) decode(w *httptest.ResponseRecorder) utils.APIResponse {
	var resp utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *ApprovalHandlerTestSuite) TestApproveAcceptedThenFullyApproved() {
	w := s.approveAs(s.alice, models.FormSalesRFQ, s.document.ID.String(), nil)
	s.Equal(http.StatusAccepted, w.Code)

	resp := s.decode(w)
	s.True(resp.Success)
	data := resp.Data.(map[string]interface{})
	s.Equal(false, data["is_fully_approved"])
	s.Equal(float64(1), data["remaining"])

	w = s.approveAs(s.bob, models.FormSalesRFQ, s.document.ID.String(), map[string]interface{}{
		"comment": "Rates verified",
	})
	s.Equal(http.StatusOK, w.Code)

	resp = s.decode(w)
	data = resp.Data.(map[string]interface{})
	s.Equal(true, data["is_fully_approved"])

	var rfq models.SalesRFQ
	s.Require().NoError(s.db.First(&rfq, "id = ?", s.document.ID).Error)
	s.Equal(models.DocumentStatusApproved, rfq.Status)
}

func (s *ApprovalHandlerTestSuite) TestApproveDelegatedApprover() {
	// Dave submits on behalf of alice; the vote is credited to alice.
	w := s.approveAs(s.dave, models.FormSalesRFQ, s.document.ID.String(), map[string]interface{}{
		"approver_id": s.alice.ID.String(),
	})
	s.Equal(http.StatusAccepted, w.Code)

	var record models.ApprovalRecord
	s.Require().NoError(s.db.First(&record, "document_id = ?", s.document.ID).Error)
	s.Equal(s.alice.ID, record.ApproverID)
	s.Equal(s.dave.ID, record.CreatedByID)
}

func (s *ApprovalHandlerTestSuite) TestApproveDuplicateVote() {
	s.approveAs(s.alice, models.FormSalesRFQ, s.document.ID.String(), nil)

	w := s.approveAs(s.alice, models.FormSalesRFQ, s.document.ID.String(), nil)
	s.Equal(http.StatusBadRequest, w.Code)

	resp := s.decode(w)
	s.False(resp.Success)
	s.Equal("DUPLICATE_VOTE", resp.Error.Code)
}

func (s *ApprovalHandlerTestSuite) TestApproveUnauthorizedApprover() {
	w := s.approveAs(s.dave, models.FormSalesRFQ, s.document.ID.String(), nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("FORBIDDEN", s.decode(w).Error.Code)
}

func (s *ApprovalHandlerTestSuite) TestApproveUnknownForm() {
	w := s.approveAs(s.alice, "WarehouseTransfer", s.document.ID.String(), nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("UNKNOWN_FORM", s.decode(w).Error.Code)
}

func (s *ApprovalHandlerTestSuite) TestApproveMissingDocument() {
	w := s.approveAs(s.alice, models.FormSalesRFQ, uuid.NewString(), nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("NOT_FOUND", s.decode(w).Error.Code)
}

func (s *ApprovalHandlerTestSuite) TestApproveInvalidDocumentID() {
	w := s.approveAs(s.alice, models.FormSalesRFQ, "not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ApprovalHandlerTestSuite) TestApproveRequiresAuthentication() {
	w := s.approveAs(nil, models.FormSalesRFQ, s.document.ID.String(), nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ApprovalHandlerTestSuite) TestApproveNonPendingDocument() {
	s.Require().NoError(s.db.Model(&models.SalesRFQ{}).
		Where("id = ?", s.document.ID).
		Update("status", models.DocumentStatusCancelled).Error)

	w := s.approveAs(s.alice, models.FormSalesRFQ, s.document.ID.String(), nil)
	s.Equal(http.StatusBadRequest, w.Code)

	resp := s.decode(w)
	s.Equal("INVALID_STATE", resp.Error.Code)
	details := resp.Error.Details.(map[string]interface{})
	s.Equal(string(models.DocumentStatusCancelled), details["current_status"])
}

func (s *ApprovalHandlerTestSuite) TestGetApprovalStatus() {
	s.approveAs(s.alice, models.FormSalesRFQ, s.document.ID.String(), nil)

	req, _ := http.NewRequest("GET", "/v1/forms/"+models.FormSalesRFQ+"/documents/"+s.document.ID.String()+"/approval-status", nil)
	req.Header.Set("X-Person-ID", s.alice.ID.String())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	data := resp.Data.(map[string]interface{})
	s.Equal(float64(2), data["required_approvers"])
	s.Equal(float64(1), data["completed_approvals"])
	s.Len(data["approval_status"], 2)
}

func TestApprovalHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalHandlerTestSuite))
}

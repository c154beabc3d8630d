// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Persons
	KeyPersonCreated  = "person.created"
	KeyPersonNotFound = "person.not_found"

	// Forms and approver assignments
	KeyFormNotFound        = "form.not_found"
	KeyFormApproverAdded   = "form.approver_added"
	KeyFormApproverRemoved = "form.approver_removed"

	// Documents
	KeyDocumentCreated  = "document.created"
	KeyDocumentNotFound = "document.not_found"

	// Approvals
	KeyApprovalRecorded      = "approval.recorded"
	KeyApprovalFullyApproved = "approval.fully_approved"
	KeyApprovalDuplicate     = "approval.duplicate_vote"
	KeyApprovalNotAuthorized = "approval.not_authorized"
	KeyApprovalInvalidState  = "approval.invalid_state"
	KeyApprovalConflict      = "approval.conflict"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)

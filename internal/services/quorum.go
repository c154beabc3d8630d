// internal/services/quorum.go
package services

// QuorumDecision is the outcome of comparing the approved vote count
// against the required approver count.
type QuorumDecision struct {
	Met       bool
	Remaining int
}

// EvaluateQuorum decides whether a document has collected enough approvals.
// The current policy is unanimous: every person in the current required
// approver set must have an approved vote. A form with no required
// approvers can never meet quorum. Quorum policy changes belong here and
// nowhere else.
func EvaluateQuorum(requiredCount, approvedCount int) QuorumDecision {
	if requiredCount > 0 && approvedCount >= requiredCount {
		return QuorumDecision{Met: true}
	}

	remaining := requiredCount - approvedCount
	if remaining < 0 {
		remaining = 0
	}
	return QuorumDecision{Remaining: remaining}
}

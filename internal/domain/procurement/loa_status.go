package procurement

import (
	"fmt"
	"strings"

	"github.com/procurement/backend/internal/domain/shared"
)

// LoaStatus represents the operational status of an LOA
type LoaStatus string

const (
	LoaStatusNotStarted          LoaStatus = "NOT_STARTED"
	LoaStatusInProgress          LoaStatus = "IN_PROGRESS"
	LoaStatusSupplyWorkCompleted LoaStatus = "SUPPLY_WORK_COMPLETED"
	LoaStatusChasePayment        LoaStatus = "CHASE_PAYMENT"
	LoaStatusClosed              LoaStatus = "CLOSED"
	LoaStatusSupplyWorkDelayed   LoaStatus = "SUPPLY_WORK_DELAYED"
	LoaStatusApplicationPending  LoaStatus = "APPLICATION_PENDING"
	LoaStatusUploadBill          LoaStatus = "UPLOAD_BILL"
	LoaStatusRetrieveEMDSecurity LoaStatus = "RETRIEVE_EMD_SECURITY"
)

// AllLoaStatuses returns every recognised LOA status
func AllLoaStatuses() []LoaStatus {
	return []LoaStatus{
		LoaStatusNotStarted,
		LoaStatusInProgress,
		LoaStatusSupplyWorkCompleted,
		LoaStatusChasePayment,
		LoaStatusClosed,
		LoaStatusSupplyWorkDelayed,
		LoaStatusApplicationPending,
		LoaStatusUploadBill,
		LoaStatusRetrieveEMDSecurity,
	}
}

// IsValid checks if the status is a recognised member of the enumeration
func (s LoaStatus) IsValid() bool {
	for _, status := range AllLoaStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// String returns the string representation
func (s LoaStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the LOA may move to target.
// The workflow graph is open: every recognised status is reachable from every other.
func (s LoaStatus) CanTransitionTo(target LoaStatus) bool {
	return target.IsValid()
}

// ParseLoaStatus parses a status string. Unknown values are rejected, never coerced.
func ParseLoaStatus(raw string) (LoaStatus, error) {
	status := LoaStatus(strings.TrimSpace(raw))
	if !status.IsValid() {
		return "", shared.NewFieldValidationError("status",
			fmt.Sprintf("invalid status %q, must be one of %s", raw, joinStatuses(AllLoaStatuses())))
	}
	return status, nil
}

func joinStatuses(statuses []LoaStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

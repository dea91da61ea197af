package bulk

import "github.com/jakechorley/volunteer-admin/pkg/core/model"

// ApproveDisabled reports whether bulk approve must be blocked for the selected statuses:
// nothing selected, everything already approved, or any withdrawn entry.
func ApproveDisabled(statuses []model.ApplicationStatus) bool {
	return transitionDisabled(statuses, model.ApplicationStatusApproved)
}

// RejectDisabled is the mirror of ApproveDisabled for rejection
func RejectDisabled(statuses []model.ApplicationStatus) bool {
	return transitionDisabled(statuses, model.ApplicationStatusRejected)
}

func transitionDisabled(statuses []model.ApplicationStatus, to model.ApplicationStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	allAlready := true
	for _, s := range statuses {
		if s == model.ApplicationStatusWithdrawn {
			return true
		}
		if s != to {
			allAlready = false
		}
	}
	return allAlready
}

// ReapplyDisabled blocks re-apply unless every selected entry is withdrawn or rejected
func ReapplyDisabled(statuses []model.ApplicationStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s != model.ApplicationStatusWithdrawn && s != model.ApplicationStatusRejected {
			return true
		}
	}
	return false
}

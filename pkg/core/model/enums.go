package model

import (
	"fmt"
	"strings"
)

type GlobalRole string

const (
	GlobalRoleUser     GlobalRole = "USER"
	GlobalRoleSysAdmin GlobalRole = "SYS_ADMIN"
)

func (r GlobalRole) IsSysAdmin() bool {
	return r == GlobalRoleSysAdmin
}

type OrgRole string

const (
	OrgRoleOwner       OrgRole = "OWNER"
	OrgRoleOrganizer   OrgRole = "ORGANIZER"
	OrgRoleCoordinator OrgRole = "COORDINATOR"
	OrgRoleVolunteer   OrgRole = "VOLUNTEER"
)

func (r OrgRole) IsValid() bool {
	switch r {
	case OrgRoleOwner, OrgRoleOrganizer, OrgRoleCoordinator, OrgRoleVolunteer:
		return true
	}
	return false
}

// Weight orders roles from least to most privileged; unknown roles weigh 0
func (r OrgRole) Weight() int {
	switch r {
	case OrgRoleOwner:
		return 4
	case OrgRoleOrganizer:
		return 3
	case OrgRoleCoordinator:
		return 2
	case OrgRoleVolunteer:
		return 1
	}
	return 0
}

func (r OrgRole) Label() string {
	switch r {
	case OrgRoleOwner:
		return "Owner"
	case OrgRoleOrganizer:
		return "Organizer"
	case OrgRoleCoordinator:
		return "Coordinator"
	case OrgRoleVolunteer:
		return "Volunteer"
	}
	return string(r)
}

// ParseOrgRole parses a role name case-insensitively
func ParseOrgRole(s string) (OrgRole, error) {
	role := OrgRole(strings.ToUpper(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid organization role: %q", s)
	}
	return role, nil
}

type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "PENDING"
	MembershipStatusApproved MembershipStatus = "APPROVED"
	MembershipStatusRejected MembershipStatus = "REJECTED"
	MembershipStatusLeft     MembershipStatus = "LEFT"
)

// CanTransitionTo reports whether the membership may move to next.
// Rejected and left memberships go back to pending only through an explicit re-apply.
func (s MembershipStatus) CanTransitionTo(next MembershipStatus) bool {
	switch s {
	case MembershipStatusPending:
		return next == MembershipStatusApproved || next == MembershipStatusRejected
	case MembershipStatusApproved:
		return next == MembershipStatusLeft
	case MembershipStatusRejected, MembershipStatusLeft:
		return next == MembershipStatusPending
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusApproved  ApplicationStatus = "APPROVED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusWithdrawn ApplicationStatus = "WITHDRAWN"
)

// ApplicationStatuses lists statuses in tab order
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

func (s ApplicationStatus) Label() string {
	switch s {
	case ApplicationStatusPending:
		return "Pending"
	case ApplicationStatusApproved:
		return "Approved"
	case ApplicationStatusRejected:
		return "Rejected"
	case ApplicationStatusWithdrawn:
		return "Withdrawn"
	}
	return string(s)
}

// ParseApplicationStatus accepts status names and their verb forms, case-insensitively
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return ApplicationStatusPending, nil
	case "APPROVED", "APPROVE":
		return ApplicationStatusApproved, nil
	case "REJECTED", "REJECT":
		return ApplicationStatusRejected, nil
	case "WITHDRAWN", "WITHDRAW":
		return ApplicationStatusWithdrawn, nil
	}
	return "", fmt.Errorf("invalid application status: %q", s)
}

type QuestionType string

const (
	QuestionTypeText     QuestionType = "TEXT"
	QuestionTypeDropdown QuestionType = "DROPDOWN"
	QuestionTypeCheckbox QuestionType = "CHECKBOX"
)

// MultiSelect reports whether more than one option may be chosen
func (t QuestionType) MultiSelect() bool {
	return t == QuestionTypeCheckbox
}

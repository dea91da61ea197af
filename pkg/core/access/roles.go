package access

import (
	"sort"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// Capabilities are the flags every authorization decision reads
type Capabilities struct {
	IsLeader              bool
	CanManageApplications bool
	IsOwner               bool
}

var all = Capabilities{IsLeader: true, CanManageApplications: true, IsOwner: true}

// Derive computes the capabilities a user holds for orgID.
//
// A system administrator holds every capability regardless of membership records.
// Otherwise only the first approved membership for orgID counts, and a missing role
// is treated as volunteer.
func Derive(role model.GlobalRole, memberships []model.Membership, orgID int64) Capabilities {
	if role.IsSysAdmin() {
		return all
	}

	for _, m := range memberships {
		if m.OrgID != orgID || m.Status != model.MembershipStatusApproved {
			continue
		}
		return fromOrgRole(m.Role)
	}

	return Capabilities{}
}

func fromOrgRole(role model.OrgRole) Capabilities {
	if role == "" {
		role = model.OrgRoleVolunteer
	}
	switch role {
	case model.OrgRoleOwner:
		return all
	case model.OrgRoleOrganizer:
		return Capabilities{IsLeader: true, CanManageApplications: true}
	case model.OrgRoleCoordinator:
		return Capabilities{CanManageApplications: true}
	}
	return Capabilities{}
}

// ForUser derives capabilities for a loaded user. A nil user has none.
func ForUser(user *model.User, orgID int64) Capabilities {
	if user == nil {
		return Capabilities{}
	}
	return Derive(user.Role, user.Memberships, orgID)
}

// LeaderOrgIDs returns the organizations the user leads, in ascending id order.
// For a system administrator it returns nil; callers treat that as every organization.
func LeaderOrgIDs(user *model.User) []int64 {
	return orgIDsWhere(user, func(c Capabilities) bool { return c.IsLeader })
}

// ManagedOrgIDs returns the organizations whose applications the user may manage
func ManagedOrgIDs(user *model.User) []int64 {
	return orgIDsWhere(user, func(c Capabilities) bool { return c.CanManageApplications })
}

func orgIDsWhere(user *model.User, keep func(Capabilities) bool) []int64 {
	if user == nil || user.Role.IsSysAdmin() {
		return nil
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, m := range user.Memberships {
		if seen[m.OrgID] {
			continue
		}
		if keep(Derive(user.Role, user.Memberships, m.OrgID)) {
			seen[m.OrgID] = true
			ids = append(ids, m.OrgID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CanEditMember reports whether actor may change the role of targetUserID within target's organization.
// Owners are never editable by anyone but a system administrator, and nobody edits themselves.
func CanEditMember(actor *model.User, targetUserID int64, target model.Membership) bool {
	if actor == nil {
		return false
	}
	if actor.Role.IsSysAdmin() {
		return true
	}
	if actor.ID == targetUserID || target.Role == model.OrgRoleOwner {
		return false
	}
	return ForUser(actor, target.OrgID).IsLeader
}

// CanRemoveMember follows the same rule as CanEditMember
func CanRemoveMember(actor *model.User, targetUserID int64, target model.Membership) bool {
	return CanEditMember(actor, targetUserID, target)
}

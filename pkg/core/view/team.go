package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

type TeamSort string

const (
	TeamSortNameAsc  TeamSort = "NAME_ASC"
	TeamSortNameDesc TeamSort = "NAME_DESC"
	TeamSortRoleAsc  TeamSort = "ROLE_ASC"
	TeamSortRoleDesc TeamSort = "ROLE_DESC"
)

func ParseTeamSort(s string) (TeamSort, error) {
	sortKey := TeamSort(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	switch sortKey {
	case TeamSortNameAsc, TeamSortNameDesc, TeamSortRoleAsc, TeamSortRoleDesc:
		return sortKey, nil
	}
	return "", fmt.Errorf("invalid team sort %q", s)
}

// TeamQuery is the filter and sort state of the team screen. Empty filters match everything.
type TeamQuery struct {
	Search     string
	OrgFilter  string
	RoleFilter model.OrgRole
	Sort       TeamSort
}

func matchesSearch(search, name, email string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(name), needle) || strings.Contains(strings.ToLower(email), needle)
}

// FilterTeam derives the visible roster. Role sorting uses the member's highest role across organizations.
func FilterTeam(members []model.TeamMember, q TeamQuery, locale string) []model.TeamMember {
	filtered := make([]model.TeamMember, 0, len(members))
	for _, m := range members {
		if !matchesSearch(q.Search, m.Name, m.Email) {
			continue
		}
		if q.OrgFilter != "" && !hasMembership(m, func(o model.Membership) bool { return o.OrgName == q.OrgFilter }) {
			continue
		}
		if q.RoleFilter != "" && !hasMembership(m, func(o model.Membership) bool { return o.Role == q.RoleFilter }) {
			continue
		}
		filtered = append(filtered, m)
	}

	switch q.Sort {
	case TeamSortNameDesc:
		sortStableBy(filtered, locale, Desc, func(m model.TeamMember) string { return m.Name })
	case TeamSortRoleAsc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].HighestRoleWeight() < filtered[j].HighestRoleWeight()
		})
	case TeamSortRoleDesc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].HighestRoleWeight() > filtered[j].HighestRoleWeight()
		})
	default:
		sortStableBy(filtered, locale, Asc, func(m model.TeamMember) string { return m.Name })
	}
	return filtered
}

func hasMembership(m model.TeamMember, match func(model.Membership) bool) bool {
	for _, o := range m.Organizations {
		if match(o) {
			return true
		}
	}
	return false
}

// FilterPendingMembers applies the search and organization filter to join requests, sorted by name
func FilterPendingMembers(pending []model.MembershipApplication, q TeamQuery, locale string) []model.MembershipApplication {
	filtered := make([]model.MembershipApplication, 0, len(pending))
	for _, p := range pending {
		if !matchesSearch(q.Search, p.UserName, p.UserEmail) {
			continue
		}
		if q.OrgFilter != "" && p.OrgName != q.OrgFilter {
			continue
		}
		filtered = append(filtered, p)
	}
	sortStableBy(filtered, locale, Asc, func(p model.MembershipApplication) string { return p.UserName })
	return filtered
}

// callerOrgIDs is nil for a system administrator, meaning every organization
func callerOrgIDs(me *model.User) map[int64]bool {
	if me == nil || me.Role.IsSysAdmin() {
		return nil
	}
	ids := make(map[int64]bool)
	for _, m := range me.Memberships {
		if m.Status == model.MembershipStatusApproved {
			ids[m.OrgID] = true
		}
	}
	return ids
}

// VisibleMemberships returns the member's organizations the caller may see
func VisibleMemberships(me *model.User, member model.TeamMember) []model.Membership {
	allowed := callerOrgIDs(me)
	if allowed == nil && me != nil {
		return member.Organizations
	}
	var visible []model.Membership
	for _, o := range member.Organizations {
		if allowed[o.OrgID] {
			visible = append(visible, o)
		}
	}
	return visible
}

// VisibleOrganizations lists organization names offered as filters: every organization in the roster
// for a system administrator, otherwise only those the caller belongs to. Sorted by name.
func VisibleOrganizations(me *model.User, members []model.TeamMember) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range members {
		for _, o := range VisibleMemberships(me, m) {
			if o.OrgName == "" || seen[o.OrgName] {
				continue
			}
			seen[o.OrgName] = true
			names = append(names, o.OrgName)
		}
	}
	sort.Strings(names)
	return names
}

func TeamMemberIDs(members []model.TeamMember) []int64 {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func MembershipApplicationIDs(pending []model.MembershipApplication) []int64 {
	ids := make([]int64, len(pending))
	for i, p := range pending {
		ids[i] = p.ID
	}
	return ids
}

// TeamTab selects between the roster and the pending join requests
type TeamTab string

const (
	TeamTabMembers TeamTab = "members"
	TeamTabPending TeamTab = "pending"
)

// TeamState mirrors ApplicationState for the team screen
type TeamState struct {
	tab       TeamTab
	query     TeamQuery
	page      int
	pageSize  int
	locale    string
	selection *Selection
}

func NewTeamState(pageSize int, locale string) *TeamState {
	if locale == "" {
		locale = DefaultLocale
	}
	return &TeamState{
		tab:       TeamTabMembers,
		query:     TeamQuery{Sort: TeamSortNameAsc},
		page:      1,
		pageSize:  pageSize,
		locale:    locale,
		selection: NewSelection(),
	}
}

func (s *TeamState) Tab() TeamTab { return s.tab }
func (s *TeamState) Query() TeamQuery { return s.query }
func (s *TeamState) Page() int { return s.page }
func (s *TeamState) Selection() *Selection { return s.selection }

func (s *TeamState) reset() {
	s.page = 1
	s.selection.Clear()
}

func (s *TeamState) SetTab(tab TeamTab) {
	s.tab = tab
	s.reset()
}

func (s *TeamState) SetSearch(search string) {
	s.query.Search = search
	s.reset()
}

func (s *TeamState) SetOrgFilter(org string) {
	s.query.OrgFilter = org
	s.reset()
}

func (s *TeamState) SetRoleFilter(role model.OrgRole) {
	s.query.RoleFilter = role
	s.reset()
}

func (s *TeamState) SetSort(sortKey TeamSort) {
	s.query.Sort = sortKey
	s.reset()
}

// SetPage keeps the selection
func (s *TeamState) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.page = n
}

func (s *TeamState) Members(members []model.TeamMember) []model.TeamMember {
	return FilterTeam(members, s.query, s.locale)
}

func (s *TeamState) Pending(pending []model.MembershipApplication) []model.MembershipApplication {
	return FilterPendingMembers(pending, s.query, s.locale)
}

func (s *TeamState) MembersPage(members []model.TeamMember) Page[model.TeamMember] {
	p := Paginate(s.Members(members), s.page, s.pageSize)
	s.page = p.Number
	return p
}

func (s *TeamState) PendingPage(pending []model.MembershipApplication) Page[model.MembershipApplication] {
	p := Paginate(s.Pending(pending), s.page, s.pageSize)
	s.page = p.Number
	return p
}

// VisibleIDs returns the ids selectable on the active tab
func (s *TeamState) VisibleIDs(members []model.TeamMember, pending []model.MembershipApplication) []int64 {
	if s.tab == TeamTabPending {
		return MembershipApplicationIDs(s.Pending(pending))
	}
	return TeamMemberIDs(s.Members(members))
}

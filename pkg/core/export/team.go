package export

import (
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

const (
	SheetActiveMembers = "Active members"
	SheetPending       = "Pending applications"
)

func phoneOrDash(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return missingAnswer
	}
	return phone
}

// TeamWorkbook builds the team export. members must already be limited to the memberships the caller
// may see. orgFilter, when set, restricts every sheet to that organization.
func TeamWorkbook(members []model.TeamMember, pending []model.MembershipApplication, orgs []string, orgFilter string) *Workbook {
	wb := NewWorkbook()

	active := [][]string{{"Name", "Email", "Phone", "Organizations", "Roles"}}
	for _, m := range members {
		var orgNames, roles []string
		for _, o := range m.Organizations {
			if orgFilter != "" && o.OrgName != orgFilter {
				continue
			}
			orgNames = append(orgNames, o.OrgName)
			roles = append(roles, fmt.Sprintf("%s: %s", o.OrgName, o.Role.Label()))
		}
		if len(orgNames) == 0 {
			continue
		}
		active = append(active, []string{m.Name, m.Email, phoneOrDash(m.Phone), strings.Join(orgNames, ", "), strings.Join(roles, " | ")})
	}
	wb.AddSheet(SheetActiveMembers, active)

	if len(pending) > 0 {
		rows := [][]string{{"Name", "Email", "Phone", "Organization", "Status"}}
		for _, p := range pending {
			if orgFilter != "" && p.OrgName != orgFilter {
				continue
			}
			rows = append(rows, []string{p.UserName, p.UserEmail, phoneOrDash(p.UserPhone), p.OrgName, "Pending"})
		}
		wb.AddSheet(SheetPending, rows)
	}

	for _, org := range orgs {
		if orgFilter != "" && org != orgFilter {
			continue
		}
		rows := [][]string{{"Name", "Email", "Phone", "Role"}}
		for _, m := range members {
			for _, o := range m.Organizations {
				if o.OrgName == org {
					rows = append(rows, []string{m.Name, m.Email, phoneOrDash(m.Phone), o.Role.Label()})
				}
			}
		}
		if len(rows) > 1 {
			wb.AddSheet(org, rows)
		}
	}
	return wb
}

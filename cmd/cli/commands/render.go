package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/loader"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/core/services"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
	"github.com/jakechorley/volunteer-admin/pkg/db"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
)

func statusColor(status model.ApplicationStatus) string {
	switch status {
	case model.ApplicationStatusApproved:
		return colorGreen
	case model.ApplicationStatusRejected:
		return colorRed
	case model.ApplicationStatusWithdrawn:
		return colorDim
	}
	return colorYellow
}

// pad left-aligns s in width runes, cutting it with an ellipsis when it is longer
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		if width <= 1 {
			return string([]rune(s)[:width])
		}
		return string([]rune(s)[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func renderTabs(w io.Writer, tabs []view.Tab, active view.Tab) {
	labels := make([]string, len(tabs))
	for i, tab := range tabs {
		if tab.Same(active) {
			labels[i] = colorBold + "[" + tab.Label() + "]" + colorReset
		} else {
			labels[i] = tab.Label()
		}
	}
	fmt.Fprintf(w, "%s\n", strings.Join(labels, "  "))
}

func renderQuery(w io.Writer, q view.ApplicationQuery) {
	var parts []string
	if q.AreaFilter != "" {
		parts = append(parts, "area="+q.AreaFilter)
	}
	if q.StatusFilter != "" {
		parts = append(parts, "status="+q.StatusFilter.Label())
	}
	parts = append(parts, fmt.Sprintf("sort=%s %s", q.SortBy, q.Order))
	fmt.Fprintf(w, "%s%s%s\n", colorDim, strings.Join(parts, "  "), colorReset)
}

func renderApplicationPage(w io.Writer, page view.Page[model.Application], selection *view.Selection) {
	if page.Total == 0 {
		fmt.Fprintln(w, "\nNo applications in this view.")
		return
	}

	fmt.Fprintf(w, "\n   %-6s %s %s %s %s\n", "ID", pad("Name", 24), pad("Email", 28), pad("Work area", 18), "Status")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, app := range page.Items {
		mark := " "
		if selection != nil && selection.Contains(app.ID) {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %-6d %s %s %s %s%s%s\n",
			mark, app.ID,
			pad(app.UserName, 24),
			pad(app.UserEmail, 28),
			pad(app.WorkAreaName, 18),
			statusColor(app.Status), app.Status.Label(), colorReset)
	}

	fmt.Fprintf(w, "\nPage %d of %d (%d applications)", page.Number, page.TotalPages, page.Total)
	if selection != nil && selection.Len() > 0 {
		fmt.Fprintf(w, ", %d selected", selection.Len())
	}
	fmt.Fprintln(w)
}

func renderOccupancy(w io.Writer, event *model.Event, occupancy map[string]int) {
	if len(event.WorkAreas) == 0 {
		return
	}
	fmt.Fprintln(w, "\nWork areas:")
	for _, wa := range event.WorkAreas {
		approved := occupancy[wa.Name]
		color := ""
		if wa.Capacity > 0 && approved >= wa.Capacity {
			color = colorRed
		}
		fmt.Fprintf(w, "  %s %s%d/%d%s\n", pad(wa.Name, 24), color, approved, wa.Capacity, colorReset)
	}
}

func renderApplicationDetail(w io.Writer, app model.Application, questions []string) {
	fmt.Fprintf(w, "\nApplication %d\n\n", app.ID)
	fmt.Fprintf(w, "Name:       %s\n", app.UserName)
	fmt.Fprintf(w, "Email:      %s\n", app.UserEmail)
	fmt.Fprintf(w, "Phone:      %s\n", orDash(app.UserPhone))
	fmt.Fprintf(w, "Work area:  %s\n", orDash(app.WorkAreaName))
	fmt.Fprintf(w, "Status:     %s%s%s\n", statusColor(app.Status), app.Status.Label(), colorReset)
	if app.UserOrgRole != "" {
		fmt.Fprintf(w, "Org role:   %s\n", app.UserOrgRole)
	}
	if app.UserJoinDate != "" {
		fmt.Fprintf(w, "Joined:     %s\n", app.UserJoinDate)
	}
	if app.Status == model.ApplicationStatusRejected && app.RejectionMessage != "" {
		fmt.Fprintf(w, "Reason:     %s\n", app.RejectionMessage)
	}
	if app.AdminNote != "" {
		fmt.Fprintf(w, "Note:       %s\n", app.AdminNote)
	}

	if len(questions) == 0 {
		return
	}
	fmt.Fprintln(w, "\nAnswers:")
	for _, q := range questions {
		fmt.Fprintf(w, "  %s: %s\n", q, orDash(app.Answers[q]))
	}
}

// renderResult reports a mutation outcome. A partial failure is printed and not returned,
// since its succeeded entries are already applied.
func renderResult(w io.Writer, verb string, result *bulk.Result, err error) error {
	var partial *bulk.PartialFailureError
	if errors.As(err, &partial) {
		fmt.Fprintf(w, "\n⚠️  %s: %d succeeded, %d failed\n", verb, len(partial.Succeeded), len(partial.Failed))
		for _, id := range partial.FailedIDs() {
			fmt.Fprintf(w, "  ✗ %d: %v\n", id, partial.Failed[id])
		}
		fmt.Fprintln(w, "Succeeded entries remain applied; the list has been reloaded.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n✓ %s: %d entries\n", verb, len(result.Succeeded))
	return nil
}

func renderGroups(w io.Writer, groups []view.Group[model.Application]) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "\nYou have not applied to any events yet.")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s%s%s\n", colorBold, g.Name, colorReset)
		for _, app := range g.Items {
			fmt.Fprintf(w, "  %-6d %s %s %s%s%s\n",
				app.ID,
				pad(app.EventTitle, 30),
				pad(app.WorkAreaName, 18),
				statusColor(app.Status), app.Status.Label(), colorReset)
			if app.Status == model.ApplicationStatusRejected && app.RejectionMessage != "" {
				fmt.Fprintf(w, "         %sReason: %s%s\n", colorDim, app.RejectionMessage, colorReset)
			}
		}
	}
}

func renderApplicantEvent(w io.Writer, v *loader.ApplicantView) {
	e := v.Event
	fmt.Fprintf(w, "\n%s%s%s (%s)\n", colorBold, e.Title, colorReset, orDash(e.OrgName))
	if !e.Start.IsZero() {
		fmt.Fprintf(w, "When:   %s to %s\n", e.Start.Format("2006-01-02 15:04"), e.End.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "Where:  %s\n", orDash(e.Location))
	if e.Description != "" {
		fmt.Fprintf(w, "\n%s\n", e.Description)
	}

	if len(e.WorkAreas) > 0 {
		fmt.Fprintln(w, "\nWork areas:")
		for _, wa := range e.WorkAreas {
			fmt.Fprintf(w, "  %s capacity %d\n", pad(wa.Name, 24), wa.Capacity)
		}
	}

	if v.AlreadyApplied {
		fmt.Fprintf(w, "\n%sYou have already applied to this event.%s\n", colorGreen, colorReset)
	}
}

func renderIdentity(w io.Writer, identity *services.Identity) {
	u := identity.User
	fmt.Fprintf(w, "\n%s <%s>\n", u.Name, u.Email)
	if identity.SysAdmin {
		fmt.Fprintf(w, "%sSystem administrator%s\n", colorBold, colorReset)
	}
	if len(identity.Orgs) == 0 {
		fmt.Fprintln(w, "No organization memberships.")
		return
	}
	fmt.Fprintln(w, "\nMemberships:")
	for _, o := range identity.Orgs {
		var caps []string
		if o.Capabilities.IsOwner {
			caps = append(caps, "owner")
		}
		if o.Capabilities.IsLeader {
			caps = append(caps, "leader")
		}
		if o.Capabilities.CanManageApplications {
			caps = append(caps, "manages applications")
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			pad(o.Membership.OrgName, 24),
			pad(o.Membership.Role.Label(), 12),
			pad(string(o.Membership.Status), 10),
			strings.Join(caps, ", "))
	}
}

func membershipSummary(orgs []model.Membership) string {
	parts := make([]string, len(orgs))
	for i, o := range orgs {
		parts[i] = fmt.Sprintf("%s (%s)", o.OrgName, o.Role.Label())
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func renderTeamPage(w io.Writer, page view.Page[model.TeamMember], selection *view.Selection) {
	if page.Total == 0 {
		fmt.Fprintln(w, "\nNo members match.")
		return
	}

	fmt.Fprintf(w, "\n   %-6s %s %s %s\n", "ID", pad("Name", 24), pad("Email", 28), "Organizations")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, m := range page.Items {
		mark := " "
		if selection != nil && selection.Contains(m.ID) {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %-6d %s %s %s\n", mark, m.ID, pad(m.Name, 24), pad(m.Email, 28), membershipSummary(m.Organizations))
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d members)\n", page.Number, page.TotalPages, page.Total)
}

func renderPendingPage(w io.Writer, page view.Page[model.MembershipApplication]) {
	if page.Total == 0 {
		fmt.Fprintln(w, "\nNo pending membership applications.")
		return
	}

	fmt.Fprintf(w, "\n  %-6s %s %s %s\n", "ID", pad("Name", 24), pad("Email", 28), "Organization")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, p := range page.Items {
		fmt.Fprintf(w, "  %-6d %s %s %s\n", p.ID, pad(p.UserName, 24), pad(p.UserEmail, 28), p.OrgName)
	}
	fmt.Fprintf(w, "\nPage %d of %d (%d pending)\n", page.Number, page.TotalPages, page.Total)
}

func renderJournal(w io.Writer, records []db.MutationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "\nNo mutations recorded.")
		return
	}
	fmt.Fprintln(w)
	for _, r := range records {
		outcome := colorGreen + "ok" + colorReset
		if !r.Succeeded {
			outcome = colorRed + "failed: " + r.Error + colorReset
		}
		detail := ""
		if r.Detail != "" {
			detail = fmt.Sprintf(" %q", r.Detail)
		}
		fmt.Fprintf(w, "%s  %s %s #%d%s by %s  %s\n",
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			pad(r.Action, 18),
			r.Env,
			r.TargetID,
			detail,
			orDash(r.Actor),
			outcome)
	}
}

func renderExport(w io.Writer, result *services.ExportResult) {
	fmt.Fprintf(w, "\n✓ Exported %d sheets\n", len(result.Sheets))
	if result.Path != "" {
		fmt.Fprintf(w, "File: %s\n", result.Path)
	}
	if result.URL != "" {
		fmt.Fprintf(w, "Spreadsheet: %s\n", result.URL)
	}
}

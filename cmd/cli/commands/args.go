package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got: %s", what, s)
	}
	return id, nil
}

func parseIDs(args []string, what string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		// "1,2,3" and "1 2 3" are both accepted
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part, what)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// resolveTab accepts a status name or the name of one of the event's work areas
func resolveTab(name string, event *model.Event) (view.Tab, error) {
	if status, err := model.ParseApplicationStatus(name); err == nil {
		return view.StatusTab(status), nil
	}
	area, err := resolveArea(name, event)
	if err != nil {
		return view.Tab{}, fmt.Errorf("unknown tab %q: use a status or a work area", name)
	}
	return view.AreaTab(area), nil
}

func resolveArea(name string, event *model.Event) (string, error) {
	for _, area := range event.AreaNames() {
		if strings.EqualFold(area, strings.TrimSpace(name)) {
			return area, nil
		}
	}
	return "", fmt.Errorf("unknown work area %q", name)
}

func isClear(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || v == "all"
}

func addApplicationViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("tab", "", "Status or work area tab (default pending)")
	cmd.Flags().String("area", "", "Narrow a status tab to one work area ('all' clears)")
	cmd.Flags().String("status", "", "Narrow a work area tab to one status ('all' clears)")
	cmd.Flags().String("sort", "", "Sort by name or area")
	cmd.Flags().Bool("desc", false, "Sort descending")
	cmd.Flags().Int("page", 0, "Page number")
}

// applyApplicationViewFlags changes the table state for every flag given on the command line.
// The page is applied last because every other change returns to page 1.
func applyApplicationViewFlags(cmd *cobra.Command, state *view.ApplicationState, event *model.Event) error {
	flags := cmd.Flags()

	if flags.Changed("tab") {
		name, _ := flags.GetString("tab")
		tab, err := resolveTab(name, event)
		if err != nil {
			return err
		}
		state.SetTab(tab)
	}

	if flags.Changed("area") {
		value, _ := flags.GetString("area")
		area := ""
		if !isClear(value) {
			var err error
			if area, err = resolveArea(value, event); err != nil {
				return err
			}
		}
		if err := state.SetAreaFilter(area); err != nil {
			return err
		}
	}

	if flags.Changed("status") {
		value, _ := flags.GetString("status")
		var status model.ApplicationStatus
		if !isClear(value) {
			var err error
			if status, err = model.ParseApplicationStatus(value); err != nil {
				return err
			}
		}
		if err := state.SetStatusFilter(status); err != nil {
			return err
		}
	}

	if flags.Changed("sort") || flags.Changed("desc") {
		field := state.Query().SortBy
		if flags.Changed("sort") {
			value, _ := flags.GetString("sort")
			var err error
			if field, err = view.ParseApplicationSortField(strings.ToLower(value)); err != nil {
				return err
			}
		}
		order := view.Asc
		if desc, _ := flags.GetBool("desc"); desc {
			order = view.Desc
		}
		state.SetSortOrder(field, order)
	}

	if flags.Changed("page") {
		page, _ := flags.GetInt("page")
		state.SetPage(page)
	}
	return nil
}

func addTeamViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "Case-insensitive match on name or email")
	cmd.Flags().String("org", "", "Only members of this organization ('all' clears)")
	cmd.Flags().String("role", "", "Only members holding this role ('all' clears)")
	cmd.Flags().String("sort", "", "name-asc, name-desc, role-asc or role-desc")
	cmd.Flags().Int("page", 0, "Page number")
}

func applyTeamViewFlags(cmd *cobra.Command, state *view.TeamState, orgs []string) error {
	flags := cmd.Flags()

	if flags.Changed("search") {
		search, _ := flags.GetString("search")
		state.SetSearch(strings.TrimSpace(search))
	}

	if flags.Changed("org") {
		value, _ := flags.GetString("org")
		org := ""
		if !isClear(value) {
			for _, name := range orgs {
				if strings.EqualFold(name, strings.TrimSpace(value)) {
					org = name
				}
			}
			if org == "" {
				return fmt.Errorf("unknown organization %q", value)
			}
		}
		state.SetOrgFilter(org)
	}

	if flags.Changed("role") {
		value, _ := flags.GetString("role")
		var role model.OrgRole
		if !isClear(value) {
			var err error
			if role, err = model.ParseOrgRole(value); err != nil {
				return err
			}
		}
		state.SetRoleFilter(role)
	}

	if flags.Changed("sort") {
		value, _ := flags.GetString("sort")
		sortKey, err := view.ParseTeamSort(value)
		if err != nil {
			return err
		}
		state.SetSort(sortKey)
	}

	if flags.Changed("page") {
		page, _ := flags.GetInt("page")
		state.SetPage(page)
	}
	return nil
}

package view

import (
	"fmt"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// Tab is either a status tab or a work area tab
type Tab struct {
	Status model.ApplicationStatus // set on status tabs
	Area   string                  // set on work area tabs
	Count  int
}

func StatusTab(status model.ApplicationStatus) Tab {
	return Tab{Status: status}
}

func AreaTab(area string) Tab {
	return Tab{Area: area}
}

// IsArea reports whether the tab partitions by work area
func (t Tab) IsArea() bool {
	return t.Status == ""
}

// Same compares tab identity, ignoring counts
func (t Tab) Same(other Tab) bool {
	return t.Status == other.Status && t.Area == other.Area
}

func (t Tab) Label() string {
	if t.IsArea() {
		return fmt.Sprintf("%s (%d)", t.Area, t.Count)
	}
	return fmt.Sprintf("%s (%d)", t.Status.Label(), t.Count)
}

func (t Tab) matches(app model.Application) bool {
	if t.IsArea() {
		return app.WorkAreaName == t.Area
	}
	return app.Status == t.Status
}

// ApplicationTabs returns the four status tabs followed by one tab per work area of the event.
// Counts cover the whole loaded collection.
func ApplicationTabs(event *model.Event, apps []model.Application) []Tab {
	tabs := make([]Tab, 0, len(model.ApplicationStatuses)+len(event.WorkAreas))
	for _, status := range model.ApplicationStatuses {
		tabs = append(tabs, StatusTab(status))
	}
	for _, wa := range event.WorkAreas {
		tabs = append(tabs, AreaTab(wa.Name))
	}

	for i := range tabs {
		for _, app := range apps {
			if tabs[i].matches(app) {
				tabs[i].Count++
			}
		}
	}
	return tabs
}

// ApplicationSortField names the sortable columns of the review table
type ApplicationSortField string

const (
	SortByName ApplicationSortField = "name"
	SortByArea ApplicationSortField = "area"
)

func ParseApplicationSortField(s string) (ApplicationSortField, error) {
	switch ApplicationSortField(s) {
	case SortByName, SortByArea:
		return ApplicationSortField(s), nil
	}
	return "", fmt.Errorf("invalid sort field %q (use name or area)", s)
}

// ApplicationQuery is the complete filter and sort state of the review table
type ApplicationQuery struct {
	Tab          Tab
	AreaFilter   string                  // empty means all; only applied on status tabs
	StatusFilter model.ApplicationStatus // empty means all; only applied on area tabs
	SortBy       ApplicationSortField
	Order        SortOrder
}

// DefaultApplicationQuery opens on the pending tab sorted by name
func DefaultApplicationQuery() ApplicationQuery {
	return ApplicationQuery{
		Tab:    StatusTab(model.ApplicationStatusPending),
		SortBy: SortByName,
		Order:  Asc,
	}
}

// FilterApplications derives the visible list. It never modifies apps.
func FilterApplications(apps []model.Application, q ApplicationQuery, locale string) []model.Application {
	filtered := make([]model.Application, 0, len(apps))
	for _, app := range apps {
		if !q.Tab.matches(app) {
			continue
		}
		if !q.Tab.IsArea() && q.AreaFilter != "" && app.WorkAreaName != q.AreaFilter {
			continue
		}
		if q.Tab.IsArea() && q.StatusFilter != "" && app.Status != q.StatusFilter {
			continue
		}
		filtered = append(filtered, app)
	}

	key := func(a model.Application) string { return a.UserName }
	if q.SortBy == SortByArea {
		key = func(a model.Application) string { return a.WorkAreaName }
	}
	sortStableBy(filtered, locale, q.Order, key)
	return filtered
}

// ApplicationIDs returns the ids of apps in order
func ApplicationIDs(apps []model.Application) []int64 {
	ids := make([]int64, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
	}
	return ids
}

// StatusesOf returns the statuses of the applications whose ids are in ids
func StatusesOf(apps []model.Application, ids []int64) []model.ApplicationStatus {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var statuses []model.ApplicationStatus
	for _, app := range apps {
		if wanted[app.ID] {
			statuses = append(statuses, app.Status)
		}
	}
	return statuses
}

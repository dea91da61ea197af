package view

import (
	"fmt"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// ApplicationState is the mutable UI state of the review table.
// Every change to tab, filter, sort or locale returns to page 1 and clears the selection.
type ApplicationState struct {
	query     ApplicationQuery
	page      int
	pageSize  int
	locale    string
	selection *Selection
}

func NewApplicationState(pageSize int, locale string) *ApplicationState {
	if locale == "" {
		locale = DefaultLocale
	}
	return &ApplicationState{
		query:     DefaultApplicationQuery(),
		page:      1,
		pageSize:  pageSize,
		locale:    locale,
		selection: NewSelection(),
	}
}

func (s *ApplicationState) Query() ApplicationQuery { return s.query }
func (s *ApplicationState) Page() int { return s.page }
func (s *ApplicationState) Locale() string { return s.locale }
func (s *ApplicationState) Selection() *Selection { return s.selection }

func (s *ApplicationState) reset() {
	s.page = 1
	s.selection.Clear()
}

// SetTab switches tab and drops both secondary filters
func (s *ApplicationState) SetTab(tab Tab) {
	s.query.Tab = Tab{Status: tab.Status, Area: tab.Area}
	s.query.AreaFilter = ""
	s.query.StatusFilter = ""
	s.reset()
}

// SetAreaFilter narrows a status tab to one work area. Empty clears it.
func (s *ApplicationState) SetAreaFilter(area string) error {
	if area != "" && s.query.Tab.IsArea() {
		return fmt.Errorf("area filter only applies to status tabs")
	}
	s.query.AreaFilter = area
	s.reset()
	return nil
}

// SetStatusFilter narrows an area tab to one status. Empty clears it.
func (s *ApplicationState) SetStatusFilter(status model.ApplicationStatus) error {
	if status != "" && !s.query.Tab.IsArea() {
		return fmt.Errorf("status filter only applies to work area tabs")
	}
	s.query.StatusFilter = status
	s.reset()
	return nil
}

// SetSort sorts by field ascending, or flips the direction when field is already active and ascending
func (s *ApplicationState) SetSort(field ApplicationSortField) {
	if s.query.SortBy == field && s.query.Order == Asc {
		s.query.Order = Desc
	} else {
		s.query.Order = Asc
	}
	s.query.SortBy = field
	s.reset()
}

// SetSortOrder sets field and direction explicitly
func (s *ApplicationState) SetSortOrder(field ApplicationSortField, order SortOrder) {
	s.query.SortBy = field
	s.query.Order = order
	s.reset()
}

func (s *ApplicationState) SetLocale(locale string) {
	s.locale = locale
	s.reset()
}

// Reset returns to the default query
func (s *ApplicationState) Reset() {
	s.query = DefaultApplicationQuery()
	s.reset()
}

// SetPage moves to page n and keeps the selection
func (s *ApplicationState) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.page = n
}

// Visible derives the filtered and sorted list for apps
func (s *ApplicationState) Visible(apps []model.Application) []model.Application {
	return FilterApplications(apps, s.query, s.locale)
}

// PageOf returns the current page of the visible list
func (s *ApplicationState) PageOf(apps []model.Application) Page[model.Application] {
	p := Paginate(s.Visible(apps), s.page, s.pageSize)
	s.page = p.Number
	return p
}

func (s *ApplicationState) visibleIDs(apps []model.Application) []int64 {
	return ApplicationIDs(s.Visible(apps))
}

func (s *ApplicationState) Select(apps []model.Application, id int64) error {
	return s.selection.Select(s.visibleIDs(apps), id)
}

func (s *ApplicationState) Toggle(apps []model.Application, id int64) error {
	return s.selection.Toggle(s.visibleIDs(apps), id)
}

func (s *ApplicationState) SelectAll(apps []model.Application) {
	s.selection.SelectAll(s.visibleIDs(apps))
}

// Prune keeps the selection consistent after a reload replaced apps
func (s *ApplicationState) Prune(apps []model.Application) {
	s.selection.Prune(s.visibleIDs(apps))
}

// SelectedStatuses returns the statuses of the selected rows, feeding the bulk guards
func (s *ApplicationState) SelectedStatuses(apps []model.Application) []model.ApplicationStatus {
	return StatusesOf(apps, s.selection.IDs())
}

package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

func scenarioEvent() *model.Event {
	return &model.Event{
		ID:        9,
		WorkAreas: []model.WorkArea{{ID: 1, Name: "Kitchen"}, {ID: 2, Name: "Desk"}},
	}
}

func scenarioApps() []model.Application {
	return []model.Application{
		{ID: 1, UserName: "Anna", Status: model.ApplicationStatusPending, WorkAreaName: "Kitchen"},
		{ID: 2, UserName: "Bela", Status: model.ApplicationStatusApproved, WorkAreaName: "Kitchen"},
		{ID: 3, UserName: "Cili", Status: model.ApplicationStatusWithdrawn, WorkAreaName: "Desk"},
	}
}

func TestScenarioA_PendingTab(t *testing.T) {
	apps := scenarioApps()
	state := NewApplicationState(10, "hu")
	state.SetTab(StatusTab(model.ApplicationStatusPending))

	visible := state.Visible(apps)
	assert.Equal(t, []int64{1}, ApplicationIDs(visible))

	tabs := ApplicationTabs(scenarioEvent(), apps)
	require.Len(t, tabs, 6)
	assert.Equal(t, model.ApplicationStatusPending, tabs[0].Status)
	assert.Equal(t, 1, tabs[0].Count)
	assert.Equal(t, 1, tabs[1].Count)
	assert.Equal(t, 0, tabs[2].Count)
	assert.Equal(t, 1, tabs[3].Count)
	assert.Equal(t, "Kitchen", tabs[4].Area)
	assert.Equal(t, 2, tabs[4].Count)
	assert.Equal(t, "Desk", tabs[5].Area)
	assert.Equal(t, 1, tabs[5].Count)
	assert.Equal(t, "Pending (1)", tabs[0].Label())
}

func TestFilterApplications_AreaAndStatusFiltersAreTabScoped(t *testing.T) {
	apps := []model.Application{
		{ID: 1, Status: model.ApplicationStatusPending, WorkAreaName: "Kitchen"},
		{ID: 2, Status: model.ApplicationStatusPending, WorkAreaName: "Desk"},
		{ID: 3, Status: model.ApplicationStatusApproved, WorkAreaName: "Kitchen"},
	}

	q := DefaultApplicationQuery()
	q.AreaFilter = "Desk"
	assert.Equal(t, []int64{2}, ApplicationIDs(FilterApplications(apps, q, "hu")))

	// A status filter on a status tab is ignored
	q = DefaultApplicationQuery()
	q.StatusFilter = model.ApplicationStatusApproved
	assert.ElementsMatch(t, []int64{1, 2}, ApplicationIDs(FilterApplications(apps, q, "hu")))

	q = ApplicationQuery{Tab: AreaTab("Kitchen"), StatusFilter: model.ApplicationStatusApproved, SortBy: SortByName, Order: Asc}
	assert.Equal(t, []int64{3}, ApplicationIDs(FilterApplications(apps, q, "hu")))

	// An area filter on an area tab is ignored
	q = ApplicationQuery{Tab: AreaTab("Kitchen"), AreaFilter: "Desk", SortBy: SortByName, Order: Asc}
	assert.ElementsMatch(t, []int64{1, 3}, ApplicationIDs(FilterApplications(apps, q, "hu")))
}

func TestFilterApplications_HungarianCollation(t *testing.T) {
	apps := []model.Application{
		{ID: 1, UserName: "Zoltán", Status: model.ApplicationStatusPending},
		{ID: 2, UserName: "Ádám", Status: model.ApplicationStatusPending},
		{ID: 3, UserName: "Béla", Status: model.ApplicationStatusPending},
		{ID: 4, UserName: "Andrea", Status: model.ApplicationStatusPending},
	}

	q := DefaultApplicationQuery()
	asc := ApplicationIDs(FilterApplications(apps, q, "hu"))
	// Accented Á sorts alongside A, not after Z as a byte comparison would place it
	assert.Equal(t, int64(1), asc[3])
	assert.Equal(t, int64(3), asc[2])

	q.Order = Desc
	desc := ApplicationIDs(FilterApplications(apps, q, "hu"))
	assert.Equal(t, int64(1), desc[0])
}

func TestFilterApplications_StableTies(t *testing.T) {
	apps := []model.Application{
		{ID: 5, UserName: "Same", Status: model.ApplicationStatusPending, WorkAreaName: "B"},
		{ID: 6, UserName: "Same", Status: model.ApplicationStatusPending, WorkAreaName: "A"},
		{ID: 7, UserName: "Same", Status: model.ApplicationStatusPending, WorkAreaName: "C"},
	}

	q := DefaultApplicationQuery()
	assert.Equal(t, []int64{5, 6, 7}, ApplicationIDs(FilterApplications(apps, q, "hu")))
	q.Order = Desc
	assert.Equal(t, []int64{5, 6, 7}, ApplicationIDs(FilterApplications(apps, q, "hu")))

	q.SortBy = SortByArea
	q.Order = Asc
	assert.Equal(t, []int64{6, 5, 7}, ApplicationIDs(FilterApplications(apps, q, "hu")))
}

func TestFilterApplications_Idempotent(t *testing.T) {
	apps := scenarioApps()
	state := NewApplicationState(2, "hu")
	state.SetTab(AreaTab("Kitchen"))
	state.SetSort(SortByName)

	firstPage := state.PageOf(apps)
	secondPage := state.PageOf(apps)
	assert.Equal(t, firstPage, secondPage)
	assert.Equal(t, state.Visible(apps), state.Visible(apps))

	// The input collection is never reordered
	assert.Equal(t, []int64{1, 2, 3}, ApplicationIDs(apps))
}

func TestApplicationState_SetSortToggles(t *testing.T) {
	state := NewApplicationState(10, "hu")
	assert.Equal(t, Asc, state.Query().Order)

	state.SetSort(SortByName)
	assert.Equal(t, Desc, state.Query().Order)
	state.SetSort(SortByName)
	assert.Equal(t, Asc, state.Query().Order)

	state.SetSort(SortByName)
	state.SetSort(SortByArea)
	assert.Equal(t, SortByArea, state.Query().SortBy)
	assert.Equal(t, Asc, state.Query().Order)
}

func TestApplicationState_SelectionClearedOnEveryQueryChange(t *testing.T) {
	apps := scenarioApps()

	changes := map[string]func(s *ApplicationState){
		"tab":         func(s *ApplicationState) { s.SetTab(StatusTab(model.ApplicationStatusApproved)) },
		"area filter": func(s *ApplicationState) { require.NoError(t, s.SetAreaFilter("Kitchen")) },
		"sort":        func(s *ApplicationState) { s.SetSort(SortByArea) },
		"locale":      func(s *ApplicationState) { s.SetLocale("en") },
		"reset":       func(s *ApplicationState) { s.Reset() },
	}

	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			state := NewApplicationState(10, "hu")
			require.NoError(t, state.Select(apps, 1))
			state.SetPage(3)

			change(state)
			assert.Equal(t, 0, state.Selection().Len())
			assert.Equal(t, 1, state.Page())
		})
	}
}

func TestApplicationState_SetPageKeepsSelection(t *testing.T) {
	apps := scenarioApps()
	state := NewApplicationState(1, "hu")
	state.SetTab(AreaTab("Kitchen"))
	state.SelectAll(apps)
	state.SetPage(2)

	assert.Equal(t, []int64{1, 2}, state.Selection().IDs())
	assert.Equal(t, 2, state.PageOf(apps).Number)
}

func TestApplicationState_CannotSelectHiddenRows(t *testing.T) {
	apps := scenarioApps()
	state := NewApplicationState(10, "hu")

	assert.Error(t, state.Select(apps, 2), "approved row is not on the pending tab")
	require.NoError(t, state.Toggle(apps, 1))
	assert.True(t, state.Selection().Contains(1))
	require.NoError(t, state.Toggle(apps, 1))
	assert.False(t, state.Selection().Contains(1))
}

func TestApplicationState_PruneAfterReload(t *testing.T) {
	apps := scenarioApps()
	state := NewApplicationState(10, "hu")
	require.NoError(t, state.Select(apps, 1))

	// After a reload application 1 is no longer pending
	reloaded := scenarioApps()
	reloaded[0].Status = model.ApplicationStatusApproved
	state.Prune(reloaded)
	assert.Equal(t, 0, state.Selection().Len())
}

func TestApplicationState_FilterTabValidation(t *testing.T) {
	state := NewApplicationState(10, "hu")
	assert.Error(t, state.SetStatusFilter(model.ApplicationStatusApproved))

	state.SetTab(AreaTab("Kitchen"))
	assert.Error(t, state.SetAreaFilter("Desk"))
	assert.NoError(t, state.SetStatusFilter(model.ApplicationStatusApproved))
	assert.NoError(t, state.SetStatusFilter(""))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name      string
		page      int
		size      int
		wantItems []int
		wantPage  int
		wantTotal int
	}{
		{"first page", 1, 2, []int{1, 2}, 1, 3},
		{"last partial page", 3, 2, []int{5}, 3, 3},
		{"clamped high", 9, 2, []int{5}, 3, 3},
		{"clamped low", 0, 2, []int{1, 2}, 1, 3},
		{"one page", 1, 10, []int{1, 2, 3, 4, 5}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.wantItems, p.Items)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Equal(t, tt.wantTotal, p.TotalPages)
			assert.Equal(t, 5, p.Total)
		})
	}

	empty := Paginate([]int{}, 4, 10)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 1, empty.Number)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestGroupByOrganization_FirstSeenOrder(t *testing.T) {
	apps := []model.Application{
		{ID: 1, OrgName: "Zebra"},
		{ID: 2, OrgName: ""},
		{ID: 3, OrgName: "Alpha"},
		{ID: 4, OrgName: "Zebra"},
	}

	groups := GroupByOrganization(apps, func(a model.Application) string { return a.OrgName })
	require.Len(t, groups, 3)
	assert.Equal(t, "Zebra", groups[0].Name)
	assert.Equal(t, []int64{1, 4}, ApplicationIDs(groups[0].Items))
	assert.Equal(t, OtherGroup, groups[1].Name)
	assert.Equal(t, "Alpha", groups[2].Name)

	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	assert.Equal(t, len(apps), total)
}

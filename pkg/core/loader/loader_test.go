package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/clients/apiclient"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// mockAPI implements API with overridable behaviour per endpoint
type mockAPI struct {
	getEventFunc func(ctx context.Context, eventID int64) (*model.Event, error)
	apps         []model.Application
	appsErr      error
	me           *model.User
	meErr        error
	myApps       []model.Application
	myAppsErr    error
	team         []model.TeamMember
	teamErr      error
	pending      []model.MembershipApplication
	pendingErr   error
}

func (m *mockAPI) Me(ctx context.Context) (*model.User, error) {
	return m.me, m.meErr
}

func (m *mockAPI) GetEvent(ctx context.Context, eventID int64) (*model.Event, error) {
	if m.getEventFunc != nil {
		return m.getEventFunc(ctx, eventID)
	}
	return &model.Event{ID: eventID, OrgID: 4, Title: "Event"}, nil
}

func (m *mockAPI) ListEventApplications(ctx context.Context, eventID int64) ([]model.Application, error) {
	return m.apps, m.appsErr
}

func (m *mockAPI) MyApplications(ctx context.Context) ([]model.Application, error) {
	return m.myApps, m.myAppsErr
}

func (m *mockAPI) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	return m.team, m.teamErr
}

func (m *mockAPI) PendingMembershipApplications(ctx context.Context) ([]model.MembershipApplication, error) {
	return m.pending, m.pendingErr
}

func TestLoadEvent_JoinsAllFetches(t *testing.T) {
	api := &mockAPI{
		apps: []model.Application{{ID: 1}, {ID: 2}},
		me:   &model.User{ID: 10},
	}
	l := New(api, zap.NewNop())

	coll, err := l.LoadEvent(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), coll.Event.ID)
	assert.Len(t, coll.Applications, 2)
	assert.Equal(t, int64(10), coll.Me.ID)
	assert.Equal(t, uint64(1), coll.Generation)
}

func TestLoadEvent_ForbiddenIsNotAuthorized(t *testing.T) {
	api := &mockAPI{
		appsErr: &apiclient.APIError{StatusCode: 403, Message: "Nincs jogosultságod"},
		me:      &model.User{ID: 10},
	}
	l := New(api, zap.NewNop())

	_, err := l.LoadEvent(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAuthorized))
	assert.False(t, errors.Is(err, ErrLoadFailed))
	assert.True(t, errors.Is(err, apiclient.ErrForbidden))
}

func TestLoadEvent_OtherFailuresAreGeneric(t *testing.T) {
	api := &mockAPI{
		meErr: errors.New("connection refused"),
	}
	l := New(api, zap.NewNop())

	_, err := l.LoadEvent(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.False(t, errors.Is(err, ErrNotAuthorized))
}

func TestLoadEvent_FallsBackToApplicationOrganization(t *testing.T) {
	api := &mockAPI{
		getEventFunc: func(ctx context.Context, eventID int64) (*model.Event, error) {
			return &model.Event{ID: eventID}, nil
		},
		apps: []model.Application{{ID: 1, OrgID: 6, OrgName: "Helpers"}},
		me:   &model.User{ID: 10},
	}
	l := New(api, zap.NewNop())

	coll, err := l.LoadEvent(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(6), coll.Event.OrgID)
	assert.Equal(t, "Helpers", coll.Event.OrgName)
}

func TestLoadEvent_NoOrganizationAndNoApplications(t *testing.T) {
	noOrg := func(ctx context.Context, eventID int64) (*model.Event, error) {
		return &model.Event{ID: eventID}, nil
	}
	organizer := model.Membership{OrgID: 6, OrgName: "Helpers", Role: model.OrgRoleOrganizer, Status: model.MembershipStatusApproved}
	volunteer := model.Membership{OrgID: 7, OrgName: "Others", Role: model.OrgRoleVolunteer, Status: model.MembershipStatusApproved}
	coordinator := model.Membership{OrgID: 8, OrgName: "Third", Role: model.OrgRoleCoordinator, Status: model.MembershipStatusApproved}

	tests := []struct {
		name     string
		me       *model.User
		wantOrg  int64
		wantName string
	}{
		{"the only managed organization is adopted", &model.User{ID: 10, Memberships: []model.Membership{organizer, volunteer}}, 6, "Helpers"},
		{"several managed organizations stay unknown", &model.User{ID: 10, Memberships: []model.Membership{organizer, coordinator}}, 0, ""},
		{"a volunteer adopts nothing", &model.User{ID: 10, Memberships: []model.Membership{volunteer}}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(&mockAPI{getEventFunc: noOrg, me: tt.me}, zap.NewNop())

			coll, err := l.LoadEvent(context.Background(), 9)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrg, coll.Event.OrgID)
			assert.Equal(t, tt.wantName, coll.Event.OrgName)
		})
	}
}

func TestLoadEvent_StaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	api := &mockAPI{me: &model.User{ID: 10}}
	api.getEventFunc = func(ctx context.Context, eventID int64) (*model.Event, error) {
		if eventID == 1 {
			close(started)
			<-release
		}
		return &model.Event{ID: eventID, OrgID: 4}, nil
	}
	l := New(api, zap.NewNop())

	type result struct {
		coll *EventCollection
		err  error
	}
	first := make(chan result, 1)
	go func() {
		coll, err := l.LoadEvent(context.Background(), 1)
		first <- result{coll, err}
	}()

	<-started
	second, err := l.LoadEvent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Event.ID)

	close(release)
	res := <-first
	assert.Nil(t, res.coll)
	assert.True(t, errors.Is(res.err, ErrSuperseded))
	assert.Equal(t, second.Generation, l.Current(ScopeEvent))
}

func TestLoadEvent_ReloadReplacesCollection(t *testing.T) {
	api := &mockAPI{
		apps: []model.Application{{ID: 1, Status: model.ApplicationStatusPending}},
		me:   &model.User{ID: 10},
	}
	l := New(api, zap.NewNop())

	first, err := l.LoadEvent(context.Background(), 9)
	require.NoError(t, err)

	api.apps = []model.Application{{ID: 1, Status: model.ApplicationStatusApproved}}
	second, err := l.LoadEvent(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusPending, first.Applications[0].Status)
	assert.Equal(t, model.ApplicationStatusApproved, second.Applications[0].Status)
	assert.Greater(t, second.Generation, first.Generation)
}

func TestLoadTeam(t *testing.T) {
	api := &mockAPI{
		me:      &model.User{ID: 10},
		team:    []model.TeamMember{{ID: 1}, {ID: 2}},
		pending: []model.MembershipApplication{{ID: 5}},
	}
	l := New(api, zap.NewNop())

	coll, err := l.LoadTeam(context.Background())
	require.NoError(t, err)
	assert.Len(t, coll.Members, 2)
	assert.Len(t, coll.Pending, 1)

	api.pendingErr = &apiclient.APIError{StatusCode: 403}
	_, err = l.LoadTeam(context.Background())
	assert.True(t, errors.Is(err, ErrNotAuthorized))
}

func TestLoadApplicantEvent_BestEffortAlreadyApplied(t *testing.T) {
	api := &mockAPI{
		me:     &model.User{ID: 10},
		myApps: []model.Application{{ID: 1, EventID: 9, Status: model.ApplicationStatusPending}},
	}
	l := New(api, zap.NewNop())

	view, err := l.LoadApplicantEvent(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, view.AlreadyApplied)

	api.myAppsErr = errors.New("boom")
	view, err = l.LoadApplicantEvent(context.Background(), 9)
	require.NoError(t, err, "a failed applied-check must not fail the screen")
	assert.False(t, view.AlreadyApplied)
	assert.Equal(t, int64(9), view.Event.ID)
}

func TestLoadApplicantEvent_WithdrawnAllowsReapply(t *testing.T) {
	api := &mockAPI{
		me:     &model.User{ID: 10},
		myApps: []model.Application{{ID: 1, EventID: 9, Status: model.ApplicationStatusWithdrawn}},
	}
	l := New(api, zap.NewNop())

	view, err := l.LoadApplicantEvent(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, view.AlreadyApplied)
}

package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jakechorley/volunteer-admin/pkg/clients/apiclient"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/session"
)

// fakeBackend is an in-memory volunteer backend. Mutations are called concurrently by the coordinator.
type fakeBackend struct {
	mu sync.Mutex

	currentUser int64
	users       map[int64]*model.User
	events      map[int64]*model.Event
	apps        []model.Application
	members     []model.TeamMember
	pending     []model.MembershipApplication

	failIDs   map[int64]error
	calls     []string
	notes     map[int64]string
	emailed   []int64
	subject   string
	roles     map[[2]int64]model.OrgRole
	removed   [][2]int64
	decisions map[int64]string
	token     string
	authErr   error
	applied   map[int64]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:     map[int64]*model.User{},
		events:    map[int64]*model.Event{},
		failIDs:   map[int64]error{},
		notes:     map[int64]string{},
		roles:     map[[2]int64]model.OrgRole{},
		decisions: map[int64]string{},
	}
}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Me(ctx context.Context) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[f.currentUser]
	if !ok {
		return nil, apiclient.ErrUnauthorized
	}
	copied := *u
	return &copied, nil
}

func (f *fakeBackend) GetEvent(ctx context.Context, eventID int64) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return nil, &apiclient.APIError{StatusCode: 404, Message: "event not found"}
	}
	copied := *e
	return &copied, nil
}

func (f *fakeBackend) ListEventApplications(ctx context.Context, eventID int64) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Application
	for _, a := range f.apps {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeBackend) MyApplications(ctx context.Context) ([]model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Application
	for _, a := range f.apps {
		if a.UserID == f.currentUser {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.members), nil
}

func (f *fakeBackend) PendingMembershipApplications(ctx context.Context) ([]model.MembershipApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MembershipApplication
	for _, p := range f.pending {
		if p.Status == model.MembershipStatusPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) SetApplicationStatus(ctx context.Context, id int64, status model.ApplicationStatus, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("status %d %s", id, status))
	if err := f.failIDs[id]; err != nil {
		return err
	}
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].Status = status
			f.apps[i].RejectionMessage = ""
			if status == model.ApplicationStatusRejected {
				f.apps[i].RejectionMessage = msg
			}
			return nil
		}
	}
	return &apiclient.APIError{StatusCode: 404, Message: "application not found"}
}

func (f *fakeBackend) WithdrawApplication(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("withdraw %d", id))
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].Status = model.ApplicationStatusWithdrawn
			return nil
		}
	}
	return &apiclient.APIError{StatusCode: 404, Message: "application not found"}
}

func (f *fakeBackend) Apply(ctx context.Context, eventID int64, workAreaIDs []int64, answers map[int64]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("apply %d %v", eventID, workAreaIDs))
	e, ok := f.events[eventID]
	if !ok {
		return &apiclient.APIError{StatusCode: 404, Message: "event not found"}
	}
	f.applied = answers

	nextID := int64(1)
	for _, app := range f.apps {
		nextID = max(nextID, app.ID+1)
	}
	for _, areaID := range workAreaIDs {
		i := slices.IndexFunc(e.WorkAreas, func(wa model.WorkArea) bool { return wa.ID == areaID })
		if i < 0 {
			return &apiclient.APIError{StatusCode: 400, Message: "unknown work area"}
		}
		f.apps = append(f.apps, model.Application{
			ID: nextID, EventID: eventID, OrgID: e.OrgID, OrgName: e.OrgName, UserID: f.currentUser,
			WorkAreaID: areaID, WorkAreaName: e.WorkAreas[i].Name, Status: model.ApplicationStatusPending,
		})
		nextID++
	}
	return nil
}

func (f *fakeBackend) SetApplicationNote(ctx context.Context, id int64, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("note %d", id))
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].AdminNote = note
			return nil
		}
	}
	return &apiclient.APIError{StatusCode: 404, Message: "application not found"}
}

func (f *fakeBackend) SendApplicationsEmail(ctx context.Context, ids []int64, subject, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailed = slices.Clone(ids)
	f.subject = subject
	return nil
}

func (f *fakeBackend) DecideMembershipApplication(ctx context.Context, id int64, status model.MembershipStatus, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("decide %d %s", id, status))
	if err := f.failIDs[id]; err != nil {
		return err
	}
	for i := range f.pending {
		if f.pending[i].ID == id {
			f.pending[i].Status = status
			f.pending[i].RejectionMessage = msg
			f.decisions[id] = msg
			return nil
		}
	}
	return &apiclient.APIError{StatusCode: 404, Message: "membership application not found"}
}

func (f *fakeBackend) SetMemberRole(ctx context.Context, userID, orgID int64, role model.OrgRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[[2]int64{userID, orgID}] = role
	for i := range f.members {
		if f.members[i].ID != userID {
			continue
		}
		orgs := slices.Clone(f.members[i].Organizations)
		for j := range orgs {
			if orgs[j].OrgID == orgID {
				orgs[j].Role = role
			}
		}
		f.members[i].Organizations = orgs
	}
	return nil
}

func (f *fakeBackend) RemoveMember(ctx context.Context, userID, orgID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, [2]int64{userID, orgID})
	for i := range f.members {
		if f.members[i].ID != userID {
			continue
		}
		var kept []model.Membership
		for _, o := range f.members[i].Organizations {
			if o.OrgID != orgID {
				kept = append(kept, o)
			}
		}
		f.members[i].Organizations = kept
	}
	return nil
}

func (f *fakeBackend) SendTeamEmail(ctx context.Context, userIDs []int64, subject, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailed = slices.Clone(userIDs)
	f.subject = subject
	return nil
}

func (f *fakeBackend) Authenticate(ctx context.Context, email, password string) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return f.token, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// memorySessionStore is an in-memory SessionStore
type memorySessionStore struct {
	sessions map[string]*session.Session
	deletes  int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]*session.Session{}}
}

func (m *memorySessionStore) Save(sess *session.Session) error {
	m.sessions[sess.Env] = sess
	return nil
}

func (m *memorySessionStore) Load(env string) (*session.Session, error) {
	sess, ok := m.sessions[env]
	if !ok {
		return nil, session.ErrNoSession
	}
	return sess, nil
}

func (m *memorySessionStore) Delete(env string) error {
	m.deletes++
	delete(m.sessions, env)
	return nil
}

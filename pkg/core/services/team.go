package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/access"
	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/export"
	"github.com/jakechorley/volunteer-admin/pkg/core/loader"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
)

// TeamClient performs roster and membership mutations
type TeamClient interface {
	DecideMembershipApplication(ctx context.Context, membershipID int64, status model.MembershipStatus, rejectionMessage string) error
	SetMemberRole(ctx context.Context, userID, orgID int64, role model.OrgRole) error
	RemoveMember(ctx context.Context, userID, orgID int64) error
	SendTeamEmail(ctx context.Context, userIDs []int64, subject, message string) error
}

// TeamLoader loads the roster and pending join requests
type TeamLoader interface {
	LoadTeam(ctx context.Context) (*loader.TeamCollection, error)
}

// TeamManagement coordinates the team screen for a leader or system administrator
type TeamManagement struct {
	client      TeamClient
	loader      TeamLoader
	coordinator *bulk.Coordinator
	logger      *zap.Logger

	State *view.TeamState

	collection *loader.TeamCollection
	members    []model.TeamMember
	pending    []model.MembershipApplication
}

func NewTeamManagement(client TeamClient, ldr TeamLoader, coordinator *bulk.Coordinator, state *view.TeamState, logger *zap.Logger) *TeamManagement {
	return &TeamManagement{
		client:      client,
		loader:      ldr,
		coordinator: coordinator,
		logger:      logger,
		State:       state,
	}
}

// Open loads the team. Only leaders of at least one organization and system administrators may open it.
func (t *TeamManagement) Open(ctx context.Context) error {
	collection, err := t.loader.LoadTeam(ctx)
	if err != nil {
		return err
	}
	me := collection.Me
	if me == nil || (!me.Role.IsSysAdmin() && len(access.LeaderOrgIDs(me)) == 0) {
		return fmt.Errorf("%w: team", loader.ErrNotAuthorized)
	}

	t.apply(collection)
	t.logger.Info("Opened team",
		zap.Int("members", len(t.members)),
		zap.Int("pending", len(t.pending)))
	return nil
}

// Reload implements bulk.Target
func (t *TeamManagement) Reload(ctx context.Context) error {
	if t.collection == nil {
		return ErrNotOpen
	}
	collection, err := t.loader.LoadTeam(ctx)
	if errors.Is(err, loader.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}
	t.apply(collection)
	return nil
}

// apply keeps only the memberships and join requests of organizations the caller belongs to
func (t *TeamManagement) apply(collection *loader.TeamCollection) {
	t.collection = collection
	me := collection.Me

	t.members = make([]model.TeamMember, 0, len(collection.Members))
	for _, m := range collection.Members {
		visible := view.VisibleMemberships(me, m)
		if len(visible) == 0 {
			continue
		}
		m.Organizations = visible
		t.members = append(t.members, m)
	}

	t.pending = make([]model.MembershipApplication, 0, len(collection.Pending))
	for _, p := range collection.Pending {
		if access.ForUser(me, p.OrgID).IsLeader {
			t.pending = append(t.pending, p)
		}
	}

	t.State.Selection().Prune(t.State.VisibleIDs(t.members, t.pending))
}

// ClearSelection implements bulk.Target
func (t *TeamManagement) ClearSelection() {
	t.State.Selection().Clear()
}

func (t *TeamManagement) Me() *model.User {
	if t.collection == nil {
		return nil
	}
	return t.collection.Me
}

func (t *TeamManagement) Members() []model.TeamMember { return t.members }

func (t *TeamManagement) PendingApplications() []model.MembershipApplication { return t.pending }

// Organizations lists the organization names offered as filters
func (t *TeamManagement) Organizations() []string {
	return view.VisibleOrganizations(t.Me(), t.members)
}

func (t *TeamManagement) MembersPage() view.Page[model.TeamMember] {
	return t.State.MembersPage(t.members)
}

func (t *TeamManagement) PendingPage() view.Page[model.MembershipApplication] {
	return t.State.PendingPage(t.pending)
}

// CanEdit reports whether the caller may change or remove member's membership of orgID
func (t *TeamManagement) CanEdit(member model.TeamMember, orgID int64) bool {
	for _, o := range member.Organizations {
		if o.OrgID == orgID {
			return access.CanEditMember(t.Me(), member.ID, o)
		}
	}
	return false
}

func (t *TeamManagement) findMember(userID int64) (model.TeamMember, bool) {
	for _, m := range t.members {
		if m.ID == userID {
			return m, true
		}
	}
	return model.TeamMember{}, false
}

func (t *TeamManagement) findPending(id int64) (model.MembershipApplication, bool) {
	for _, p := range t.pending {
		if p.ID == id {
			return p, true
		}
	}
	return model.MembershipApplication{}, false
}

func (t *TeamManagement) selectedOr(ids []int64) []int64 {
	if len(ids) == 0 {
		return t.State.Selection().IDs()
	}
	return ids
}

// DecideApplications approves or rejects join requests (or the selection on the pending tab).
// A rejection reason is attached to every entry.
func (t *TeamManagement) DecideApplications(ctx context.Context, ids []int64, status model.MembershipStatus, reason string) (*bulk.Result, error) {
	if t.collection == nil {
		return nil, ErrNotOpen
	}

	var action bulk.Action
	switch status {
	case model.MembershipStatusApproved:
		action = bulk.ActionApprove
		reason = ""
	case model.MembershipStatusRejected:
		action = bulk.ActionReject
		reason = strings.TrimSpace(reason)
	default:
		return nil, fmt.Errorf("membership applications can only be approved or rejected, not %q", status)
	}

	ids = t.selectedOr(ids)
	for _, id := range ids {
		p, ok := t.findPending(id)
		if !ok {
			return nil, fmt.Errorf("%w: membership application %d", ErrNotFound, id)
		}
		if !p.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("%w: membership application %d is %s", ErrActionDisabled, id, p.Status)
		}
	}

	return t.coordinator.Run(ctx, bulk.Request{Action: action, IDs: ids, Reason: reason},
		func(ctx context.Context, id int64) error {
			return t.client.DecideMembershipApplication(ctx, id, status, reason)
		}, t)
}

// SetRole changes a member's role within one organization
func (t *TeamManagement) SetRole(ctx context.Context, userID, orgID int64, role model.OrgRole) (*bulk.Result, error) {
	if t.collection == nil {
		return nil, ErrNotOpen
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid organization role: %q", role)
	}
	member, ok := t.findMember(userID)
	if !ok {
		return nil, fmt.Errorf("%w: member %d", ErrNotFound, userID)
	}
	if !t.CanEdit(member, orgID) {
		return nil, ErrNotPermitted
	}

	return t.coordinator.Run(ctx, bulk.Request{Action: bulk.ActionAssignRole, IDs: []int64{userID}, Role: role},
		func(ctx context.Context, id int64) error {
			return t.client.SetMemberRole(ctx, id, orgID, role)
		}, t)
}

// RemoveMember removes members (or the selection) from one organization
func (t *TeamManagement) RemoveMember(ctx context.Context, userIDs []int64, orgID int64) (*bulk.Result, error) {
	if t.collection == nil {
		return nil, ErrNotOpen
	}
	userIDs = t.selectedOr(userIDs)
	for _, id := range userIDs {
		member, ok := t.findMember(id)
		if !ok {
			return nil, fmt.Errorf("%w: member %d", ErrNotFound, id)
		}
		if !t.CanEdit(member, orgID) {
			return nil, fmt.Errorf("%w: member %d", ErrNotPermitted, id)
		}
	}

	return t.coordinator.Run(ctx, bulk.Request{Action: bulk.ActionRemoveMembership, IDs: userIDs},
		func(ctx context.Context, id int64) error {
			return t.client.RemoveMember(ctx, id, orgID)
		}, t)
}

// EmailMembers asks the backend to email members (or the selection)
func (t *TeamManagement) EmailMembers(ctx context.Context, userIDs []int64, subject, message string) error {
	if t.collection == nil {
		return ErrNotOpen
	}
	userIDs = t.selectedOr(userIDs)
	if len(userIDs) == 0 {
		return bulk.ErrEmptySelection
	}
	for _, id := range userIDs {
		if _, ok := t.findMember(id); !ok {
			return fmt.Errorf("%w: member %d", ErrNotFound, id)
		}
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return fmt.Errorf("subject and message are required")
	}

	t.logger.Debug("Requesting team email", zap.Int("recipients", len(userIDs)))
	if err := t.client.SendTeamEmail(ctx, userIDs, subject, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Workbook exports the filtered roster and join requests
func (t *TeamManagement) Workbook() (*export.Workbook, error) {
	if t.collection == nil {
		return nil, ErrNotOpen
	}
	q := t.State.Query()
	return export.TeamWorkbook(t.State.Members(t.members), t.State.Pending(t.pending), t.Organizations(), q.OrgFilter), nil
}

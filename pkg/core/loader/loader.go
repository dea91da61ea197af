package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/volunteer-admin/pkg/clients/apiclient"
	"github.com/jakechorley/volunteer-admin/pkg/core/access"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

var (
	// ErrNotAuthorized marks a load rejected with 403
	ErrNotAuthorized = errors.New("you are not permitted to view this")
	// ErrLoadFailed marks every other load failure
	ErrLoadFailed = errors.New("could not load data")
	// ErrSuperseded is returned when a newer load for the same scope started before this one finished
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// API is the subset of the REST client the loader reads from
type API interface {
	Me(ctx context.Context) (*model.User, error)
	GetEvent(ctx context.Context, eventID int64) (*model.Event, error)
	ListEventApplications(ctx context.Context, eventID int64) ([]model.Application, error)
	MyApplications(ctx context.Context) ([]model.Application, error)
	ListTeam(ctx context.Context) ([]model.TeamMember, error)
	PendingMembershipApplications(ctx context.Context) ([]model.MembershipApplication, error)
}

// Scope names a family of loads where only the latest result may be applied
type Scope string

const (
	ScopeEvent     Scope = "event"
	ScopeTeam      Scope = "team"
	ScopeApplicant Scope = "applicant"
)

// EventCollection is everything the review screen needs for one event
type EventCollection struct {
	Event        *model.Event
	Applications []model.Application
	Me           *model.User
	Generation   uint64
}

// TeamCollection is everything the team screen needs
type TeamCollection struct {
	Me         *model.User
	Members    []model.TeamMember
	Pending    []model.MembershipApplication
	Generation uint64
}

// ApplicantView is the event as seen by a volunteer deciding whether to apply
type ApplicantView struct {
	Event          *model.Event
	Me             *model.User
	MyApplications []model.Application
	AlreadyApplied bool
	Generation     uint64
}

// Loader fetches whole collections and never patches them
type Loader struct {
	api    API
	logger *zap.Logger

	mu          sync.Mutex
	generations map[Scope]uint64
}

func New(api API, logger *zap.Logger) *Loader {
	return &Loader{
		api:         api,
		logger:      logger,
		generations: make(map[Scope]uint64),
	}
}

// begin starts a new generation for scope, superseding any load still in flight
func (l *Loader) begin(scope Scope) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generations[scope]++
	return l.generations[scope]
}

// Current reports the latest generation issued for scope
func (l *Loader) Current(scope Scope) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generations[scope]
}

func (l *Loader) finish(scope Scope, generation uint64) error {
	if current := l.Current(scope); current != generation {
		l.logger.Debug("Discarding superseded load",
			zap.String("scope", string(scope)),
			zap.Uint64("generation", generation),
			zap.Uint64("current", current))
		return ErrSuperseded
	}
	return nil
}

// classify maps a fetch failure onto the loader's two user-facing categories
func classify(what string, err error) error {
	if errors.Is(err, apiclient.ErrForbidden) {
		return fmt.Errorf("%w: %s: %w", ErrNotAuthorized, what, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, what, err)
}

// LoadEvent fetches the event, its applications and the caller's profile concurrently.
// The result is only returned when all three succeed.
func (l *Loader) LoadEvent(ctx context.Context, eventID int64) (*EventCollection, error) {
	generation := l.begin(ScopeEvent)
	l.logger.Debug("Loading event collection", zap.Int64("event_id", eventID), zap.Uint64("generation", generation))

	var (
		event *model.Event
		apps  []model.Application
		me    *model.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if event, err = l.api.GetEvent(gctx, eventID); err != nil {
			return classify("event", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if apps, err = l.api.ListEventApplications(gctx, eventID); err != nil {
			return classify("applications", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if me, err = l.api.Me(gctx); err != nil {
			return classify("profile", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if ferr := l.finish(ScopeEvent, generation); ferr != nil {
			return nil, ferr
		}
		return nil, err
	}
	if err := l.finish(ScopeEvent, generation); err != nil {
		return nil, err
	}

	// Some backend revisions omit the owning organization on the event itself
	if event.OrgID == 0 && len(apps) > 0 {
		event.OrgID = apps[0].OrgID
		if event.OrgName == "" {
			event.OrgName = apps[0].OrgName
		}
	}
	if event.OrgID == 0 {
		adoptManagedOrganization(event, me)
	}

	l.logger.Debug("Loaded event collection",
		zap.Int64("event_id", eventID),
		zap.Int("applications", len(apps)),
		zap.Int("work_areas", len(event.WorkAreas)))

	return &EventCollection{Event: event, Applications: apps, Me: me, Generation: generation}, nil
}

// adoptManagedOrganization assigns the event to the only organization whose applications me manages.
// With none or several candidates the organization stays unknown.
func adoptManagedOrganization(event *model.Event, me *model.User) {
	managed := access.ManagedOrgIDs(me)
	if len(managed) != 1 {
		return
	}
	event.OrgID = managed[0]
	for _, m := range me.Memberships {
		if m.OrgID == managed[0] && event.OrgName == "" {
			event.OrgName = m.OrgName
		}
	}
}

// LoadTeam fetches the caller's profile, the team roster and pending join requests concurrently
func (l *Loader) LoadTeam(ctx context.Context) (*TeamCollection, error) {
	generation := l.begin(ScopeTeam)
	l.logger.Debug("Loading team collection", zap.Uint64("generation", generation))

	var (
		me      *model.User
		members []model.TeamMember
		pending []model.MembershipApplication
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if me, err = l.api.Me(gctx); err != nil {
			return classify("profile", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if members, err = l.api.ListTeam(gctx); err != nil {
			return classify("team", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if pending, err = l.api.PendingMembershipApplications(gctx); err != nil {
			return classify("pending memberships", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if ferr := l.finish(ScopeTeam, generation); ferr != nil {
			return nil, ferr
		}
		return nil, err
	}
	if err := l.finish(ScopeTeam, generation); err != nil {
		return nil, err
	}

	l.logger.Debug("Loaded team collection", zap.Int("members", len(members)), zap.Int("pending", len(pending)))
	return &TeamCollection{Me: me, Members: members, Pending: pending, Generation: generation}, nil
}

// LoadApplicantEvent fetches an event for a prospective volunteer.
// The "already applied" lookup is best-effort: on failure it logs a warning and reports false.
func (l *Loader) LoadApplicantEvent(ctx context.Context, eventID int64) (*ApplicantView, error) {
	generation := l.begin(ScopeApplicant)

	var (
		event *model.Event
		me    *model.User
		mine  []model.Application
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if event, err = l.api.GetEvent(gctx, eventID); err != nil {
			return classify("event", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if me, err = l.api.Me(gctx); err != nil {
			return classify("profile", err)
		}
		return nil
	})
	g.Go(func() error {
		apps, err := l.api.MyApplications(gctx)
		if err != nil {
			l.logger.Warn("Could not check existing applications", zap.Int64("event_id", eventID), zap.Error(err))
			return nil
		}
		mine = apps
		return nil
	})

	if err := g.Wait(); err != nil {
		if ferr := l.finish(ScopeApplicant, generation); ferr != nil {
			return nil, ferr
		}
		return nil, err
	}
	if err := l.finish(ScopeApplicant, generation); err != nil {
		return nil, err
	}

	return &ApplicantView{
		Event:          event,
		Me:             me,
		MyApplications: mine,
		AlreadyApplied: model.HasActiveApplication(mine, eventID),
		Generation:     generation,
	}, nil
}

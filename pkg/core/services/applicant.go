package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/loader"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
)

// MyApplicationsClient lists the caller's own applications
type MyApplicationsClient interface {
	MyApplications(ctx context.Context) ([]model.Application, error)
}

// ApplicantClient is what a volunteer needs to manage their own applications
type ApplicantClient interface {
	MyApplicationsClient
	ApplicationClient
}

// ApplicantEventLoader loads an event as seen by a prospective volunteer
type ApplicantEventLoader interface {
	LoadApplicantEvent(ctx context.Context, eventID int64) (*loader.ApplicantView, error)
}

func byOrganization(app model.Application) string { return app.OrgName }

// MyApplications returns the caller's applications grouped by organization in first-seen order
func MyApplications(ctx context.Context, client MyApplicationsClient, logger *zap.Logger) ([]view.Group[model.Application], error) {
	logger.Debug("Fetching own applications")
	apps, err := client.MyApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: your applications: %w", loader.ErrLoadFailed, err)
	}
	logger.Debug("Found own applications", zap.Int("count", len(apps)))
	return view.GroupByOrganization(apps, byOrganization), nil
}

// ApplicantEvent returns the event detail with occupancy and whether the caller already applied.
// The already-applied check degrades to false when it cannot be made.
func ApplicantEvent(ctx context.Context, ldr ApplicantEventLoader, logger *zap.Logger, eventID int64) (*loader.ApplicantView, error) {
	logger.Debug("Loading event for applicant", zap.Int64("event_id", eventID))
	return ldr.LoadApplicantEvent(ctx, eventID)
}

// Applicant is the caller's own application list. Reapply and withdraw are issued from here.
type Applicant struct {
	client      ApplicantClient
	coordinator *bulk.Coordinator
	logger      *zap.Logger

	apps   []model.Application
	loaded bool
}

func NewApplicant(client ApplicantClient, coordinator *bulk.Coordinator, logger *zap.Logger) *Applicant {
	return &Applicant{client: client, coordinator: coordinator, logger: logger}
}

// Reload implements bulk.Target
func (a *Applicant) Reload(ctx context.Context) error {
	apps, err := a.client.MyApplications(ctx)
	if err != nil {
		return fmt.Errorf("%w: your applications: %w", loader.ErrLoadFailed, err)
	}
	a.apps = apps
	a.loaded = true
	return nil
}

// ClearSelection implements bulk.Target; the applicant list has no selection
func (a *Applicant) ClearSelection() {}

func (a *Applicant) Applications() []model.Application { return a.apps }

func (a *Applicant) Groups() []view.Group[model.Application] {
	return view.GroupByOrganization(a.apps, byOrganization)
}

func (a *Applicant) own(ctx context.Context, id int64) (model.Application, error) {
	if !a.loaded {
		if err := a.Reload(ctx); err != nil {
			return model.Application{}, err
		}
	}
	for _, app := range a.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return model.Application{}, fmt.Errorf("%w: application %d is not yours", ErrNotFound, id)
}

// Reapply returns a withdrawn or rejected application to pending
func (a *Applicant) Reapply(ctx context.Context, id int64) (*bulk.Result, error) {
	app, err := a.own(ctx, id)
	if err != nil {
		return nil, err
	}
	return reapply(ctx, a.client, a.coordinator, a, []model.ApplicationStatus{app.Status}, []int64{id})
}

// Withdraw withdraws an application, freeing its place in the work area
func (a *Applicant) Withdraw(ctx context.Context, id int64) (*bulk.Result, error) {
	app, err := a.own(ctx, id)
	if err != nil {
		return nil, err
	}
	return withdraw(ctx, a.client, a.coordinator, a, []model.ApplicationStatus{app.Status}, []int64{id})
}

// RejectionMessage returns the message attached to a rejected application, if any
func (a *Applicant) RejectionMessage(id int64) (string, error) {
	for _, app := range a.apps {
		if app.ID == id {
			if app.Status != model.ApplicationStatusRejected {
				return "", nil
			}
			return app.RejectionMessage, nil
		}
	}
	return "", fmt.Errorf("%w: application %d", ErrNotFound, id)
}

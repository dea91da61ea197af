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

// ApplicationClient performs application mutations
type ApplicationClient interface {
	SetApplicationStatus(ctx context.Context, applicationID int64, status model.ApplicationStatus, rejectionMessage string) error
	WithdrawApplication(ctx context.Context, applicationID int64) error
}

// ReviewClient is everything the review screen calls on the backend
type ReviewClient interface {
	ApplicationClient
	SetApplicationNote(ctx context.Context, applicationID int64, note string) error
	SendApplicationsEmail(ctx context.Context, applicationIDs []int64, subject, message string) error
}

// EventLoader loads a whole event collection
type EventLoader interface {
	LoadEvent(ctx context.Context, eventID int64) (*loader.EventCollection, error)
}

// ApplicationReview coordinates one event's review screen: the loaded collection, the table state
// and every mutation issued from it. Local data only ever changes through Reload.
type ApplicationReview struct {
	client      ReviewClient
	loader      EventLoader
	coordinator *bulk.Coordinator
	logger      *zap.Logger

	State *view.ApplicationState

	eventID    int64
	collection *loader.EventCollection
	caps       access.Capabilities
}

func NewApplicationReview(client ReviewClient, ldr EventLoader, coordinator *bulk.Coordinator, state *view.ApplicationState, logger *zap.Logger) *ApplicationReview {
	return &ApplicationReview{
		client:      client,
		loader:      ldr,
		coordinator: coordinator,
		logger:      logger,
		State:       state,
	}
}

// Open loads an event for review. The caller must be able to manage applications of the event's organization.
func (r *ApplicationReview) Open(ctx context.Context, eventID int64) error {
	r.logger.Debug("Opening event for review", zap.Int64("event_id", eventID))

	collection, err := r.loader.LoadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	caps := access.ForUser(collection.Me, collection.Event.OrgID)
	if !caps.CanManageApplications && collection.Event.OrgID == 0 {
		return fmt.Errorf("%w: %q names no organization and none of yours could be matched", ErrOrganizationUnknown, collection.Event.Title)
	}
	if !caps.CanManageApplications {
		return fmt.Errorf("%w: applications of %q", loader.ErrNotAuthorized, collection.Event.Title)
	}

	if r.eventID != eventID {
		r.State.Reset()
	}
	r.eventID = eventID
	r.apply(collection)

	r.logger.Info("Opened event",
		zap.Int64("event_id", eventID),
		zap.String("title", collection.Event.Title),
		zap.Int("applications", len(collection.Applications)))
	return nil
}

// Reload refetches the whole collection. A load superseded by a newer one is not an error.
func (r *ApplicationReview) Reload(ctx context.Context) error {
	if r.collection == nil {
		return ErrNotOpen
	}

	collection, err := r.loader.LoadEvent(ctx, r.eventID)
	if errors.Is(err, loader.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}
	r.apply(collection)
	return nil
}

func (r *ApplicationReview) apply(collection *loader.EventCollection) {
	r.collection = collection
	r.caps = access.ForUser(collection.Me, collection.Event.OrgID)
	r.State.Prune(collection.Applications)
}

// ClearSelection implements bulk.Target
func (r *ApplicationReview) ClearSelection() {
	r.State.Selection().Clear()
}

func (r *ApplicationReview) Loaded() bool { return r.collection != nil }

func (r *ApplicationReview) Event() *model.Event {
	if r.collection == nil {
		return nil
	}
	return r.collection.Event
}

func (r *ApplicationReview) Applications() []model.Application {
	if r.collection == nil {
		return nil
	}
	return r.collection.Applications
}

func (r *ApplicationReview) Capabilities() access.Capabilities { return r.caps }

// Tabs returns the status tabs followed by one tab per work area, with counts
func (r *ApplicationReview) Tabs() []view.Tab {
	if r.collection == nil {
		return nil
	}
	return view.ApplicationTabs(r.collection.Event, r.collection.Applications)
}

// Visible returns the filtered and sorted applications of the active tab
func (r *ApplicationReview) Visible() []model.Application {
	return r.State.Visible(r.Applications())
}

// Page returns the current page of the visible applications
func (r *ApplicationReview) Page() view.Page[model.Application] {
	return r.State.PageOf(r.Applications())
}

// Occupancy counts approved applications per work area against capacity
func (r *ApplicationReview) Occupancy() map[string]int {
	return model.AreaOccupancy(r.Applications())
}

func (r *ApplicationReview) find(id int64) (model.Application, bool) {
	for _, app := range r.Applications() {
		if app.ID == id {
			return app, true
		}
	}
	return model.Application{}, false
}

func (r *ApplicationReview) requireManage() error {
	if r.collection == nil {
		return ErrNotOpen
	}
	if !r.caps.CanManageApplications {
		return ErrNotPermitted
	}
	return nil
}

// targetIDs returns ids, or the current selection when ids is empty. Every id must be loaded.
func (r *ApplicationReview) targetIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		ids = r.State.Selection().IDs()
	}
	for _, id := range ids {
		if _, ok := r.find(id); !ok {
			return nil, fmt.Errorf("%w: application %d", ErrNotFound, id)
		}
	}
	return ids, nil
}

func (r *ApplicationReview) statusMutation(status model.ApplicationStatus, reason string) bulk.MutateFunc {
	return func(ctx context.Context, id int64) error {
		return r.client.SetApplicationStatus(ctx, id, status, reason)
	}
}

// BulkApprove approves ids (or the selection). Disabled when every entry is already approved or any is withdrawn.
func (r *ApplicationReview) BulkApprove(ctx context.Context, ids []int64) (*bulk.Result, error) {
	if err := r.requireManage(); err != nil {
		return nil, err
	}
	ids, err := r.targetIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 && bulk.ApproveDisabled(view.StatusesOf(r.Applications(), ids)) {
		return nil, fmt.Errorf("%w: approve", ErrActionDisabled)
	}

	return r.coordinator.Run(ctx, bulk.Request{Action: bulk.ActionApprove, IDs: ids},
		r.statusMutation(model.ApplicationStatusApproved, ""), r)
}

// BulkReject rejects ids (or the selection) and attaches reason to every entry
func (r *ApplicationReview) BulkReject(ctx context.Context, ids []int64, reason string) (*bulk.Result, error) {
	if err := r.requireManage(); err != nil {
		return nil, err
	}
	ids, err := r.targetIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 && bulk.RejectDisabled(view.StatusesOf(r.Applications(), ids)) {
		return nil, fmt.Errorf("%w: reject", ErrActionDisabled)
	}

	reason = strings.TrimSpace(reason)
	return r.coordinator.Run(ctx, bulk.Request{Action: bulk.ActionReject, IDs: ids, Reason: reason},
		r.statusMutation(model.ApplicationStatusRejected, reason), r)
}

// ChangeStatus moves a single application to status. Withdrawn applications only leave that state
// through Reapply, and withdrawing is left to the applicant.
func (r *ApplicationReview) ChangeStatus(ctx context.Context, id int64, status model.ApplicationStatus, reason string) (*bulk.Result, error) {
	if err := r.requireManage(); err != nil {
		return nil, err
	}
	app, ok := r.find(id)
	if !ok {
		return nil, fmt.Errorf("%w: application %d", ErrNotFound, id)
	}

	switch status {
	case model.ApplicationStatusApproved:
		return r.BulkApprove(ctx, []int64{id})
	case model.ApplicationStatusRejected:
		return r.BulkReject(ctx, []int64{id}, reason)
	case model.ApplicationStatusPending:
		if app.Status == model.ApplicationStatusWithdrawn {
			return r.Reapply(ctx, []int64{id})
		}
		if app.Status == model.ApplicationStatusPending {
			return nil, fmt.Errorf("%w: application %d is already pending", ErrActionDisabled, id)
		}
		return r.coordinator.Run(ctx, bulk.Request{Action: bulk.ActionReapply, IDs: []int64{id}},
			r.statusMutation(model.ApplicationStatusPending, ""), r)
	case model.ApplicationStatusWithdrawn:
		// the backend only lets the applicant withdraw
		return nil, fmt.Errorf("%w: only the applicant can withdraw application %d", ErrActionDisabled, id)
	}
	return nil, fmt.Errorf("invalid application status: %q", status)
}

// Reapply moves withdrawn or rejected applications back to pending. It is never implied by another action.
func (r *ApplicationReview) Reapply(ctx context.Context, ids []int64) (*bulk.Result, error) {
	if r.collection == nil {
		return nil, ErrNotOpen
	}
	ids, err := r.targetIDs(ids)
	if err != nil {
		return nil, err
	}
	return reapply(ctx, r.client, r.coordinator, r, view.StatusesOf(r.Applications(), ids), ids)
}

// Withdraw withdraws applications
func (r *ApplicationReview) Withdraw(ctx context.Context, ids []int64) (*bulk.Result, error) {
	if r.collection == nil {
		return nil, ErrNotOpen
	}
	ids, err := r.targetIDs(ids)
	if err != nil {
		return nil, err
	}
	return withdraw(ctx, r.client, r.coordinator, r, view.StatusesOf(r.Applications(), ids), ids)
}

// SaveNote stores the private administrator note and reloads
func (r *ApplicationReview) SaveNote(ctx context.Context, id int64, note string) error {
	if err := r.requireManage(); err != nil {
		return err
	}
	if _, ok := r.find(id); !ok {
		return fmt.Errorf("%w: application %d", ErrNotFound, id)
	}

	r.logger.Debug("Saving note", zap.Int64("application_id", id))
	if err := r.client.SetApplicationNote(ctx, id, note); err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return r.Reload(ctx)
}

// EmailSelected asks the backend to email the applicants of ids (or the selection).
// Delivery is the backend's concern; only the request as a whole can fail.
func (r *ApplicationReview) EmailSelected(ctx context.Context, ids []int64, subject, message string) error {
	if err := r.requireManage(); err != nil {
		return err
	}
	ids, err := r.targetIDs(ids)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return bulk.ErrEmptySelection
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return fmt.Errorf("subject and message are required")
	}

	r.logger.Debug("Requesting applicant email", zap.Int("recipients", len(ids)))
	if err := r.client.SendApplicationsEmail(ctx, ids, subject, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// Workbook builds the export of the loaded event: current view, per status, per work area
func (r *ApplicationReview) Workbook() (*export.Workbook, error) {
	if r.collection == nil {
		return nil, ErrNotOpen
	}
	return export.ApplicationsWorkbook(r.collection.Event, r.collection.Applications, r.Visible()), nil
}

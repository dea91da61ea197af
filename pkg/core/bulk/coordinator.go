package bulk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/db"
)

// Action names a status transition applied to selected entries
type Action string

const (
	ActionApprove          Action = "approve"
	ActionReject           Action = "reject"
	ActionReapply          Action = "reapply"
	ActionWithdraw         Action = "withdraw"
	ActionAssignRole       Action = "assign-role"
	ActionRemoveMembership Action = "remove-membership"
)

// ErrEmptySelection is returned when a request names no entries
var ErrEmptySelection = errors.New("no entries selected")

// Request is one user-initiated mutation over one or more entries
type Request struct {
	Action Action
	IDs    []int64
	Reason string        // attached verbatim to every rejected entry
	Role   model.OrgRole // only for ActionAssignRole
}

func (r Request) detail() string {
	switch {
	case r.Reason != "":
		return r.Reason
	case r.Role != "":
		return string(r.Role)
	}
	return ""
}

// MutateFunc applies the request to a single entry
type MutateFunc func(ctx context.Context, id int64) error

// Target is the collection the mutation was issued from
type Target interface {
	// Reload refetches the full collection. It is the only way local state changes after a mutation.
	Reload(ctx context.Context) error
	ClearSelection()
}

// Result reports per-entry outcomes
type Result struct {
	BatchID   string
	Succeeded []int64
	Failed    map[int64]error
}

// PartialFailureError reports a batch where at least one entry failed.
// Entries in Succeeded were applied by the backend and are not rolled back.
type PartialFailureError struct {
	Action    Action
	Failed    map[int64]error
	Succeeded []int64
}

func (e *PartialFailureError) FailedIDs() []int64 {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (e *PartialFailureError) Error() string {
	failed := e.FailedIDs()
	parts := make([]string, len(failed))
	for i, id := range failed {
		parts[i] = fmt.Sprintf("%d: %v", id, e.Failed[id])
	}
	return fmt.Sprintf("%s failed for %d of %d entries (%s); %d succeeded and remain applied",
		e.Action, len(failed), len(failed)+len(e.Succeeded), strings.Join(parts, "; "), len(e.Succeeded))
}

// Coordinator issues mutations and enforces the reload-after-mutation rule
type Coordinator struct {
	journal db.Journal
	logger  *zap.Logger
	env     string
	actor   string
	now     func() time.Time
}

func NewCoordinator(journal db.Journal, logger *zap.Logger, env, actor string) *Coordinator {
	if journal == nil {
		journal = db.NopJournal{}
	}
	return &Coordinator{
		journal: journal,
		logger:  logger,
		env:     env,
		actor:   actor,
		now:     time.Now,
	}
}

// Run applies req through mutate.
//
// A single entry is mutated once; on success the target is reloaded, on failure the error is
// returned and nothing is reloaded. Several entries are mutated concurrently without a limit;
// once all have finished the target is always reloaded and its selection cleared, and any failure
// is reported as a *PartialFailureError.
func (c *Coordinator) Run(ctx context.Context, req Request, mutate MutateFunc, target Target) (*Result, error) {
	ids := dedupe(req.IDs)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	result := &Result{BatchID: uuid.NewString(), Failed: make(map[int64]error)}
	logger := c.logger.With(zap.String("action", string(req.Action)), zap.String("batch_id", result.BatchID))

	if len(ids) == 1 {
		id := ids[0]
		err := mutate(ctx, id)
		c.record(ctx, result.BatchID, req, map[int64]error{id: err})
		if err != nil {
			logger.Debug("Mutation failed", zap.Int64("id", id), zap.Error(err))
			result.Failed[id] = err
			return result, err
		}
		result.Succeeded = []int64{id}

		if err := target.Reload(ctx); err != nil {
			return result, fmt.Errorf("%s succeeded but reload failed: %w", req.Action, err)
		}
		return result, nil
	}

	logger.Debug("Running bulk mutation", zap.Int("count", len(ids)))

	var mu sync.Mutex
	outcomes := make(map[int64]error, len(ids))
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			err := mutate(ctx, id)
			mu.Lock()
			outcomes[id] = err
			mu.Unlock()
			// Individual failures never cancel the rest of the batch
			return nil
		})
	}
	_ = g.Wait()

	c.record(ctx, result.BatchID, req, outcomes)

	for _, id := range ids {
		if err := outcomes[id]; err != nil {
			result.Failed[id] = err
		} else {
			result.Succeeded = append(result.Succeeded, id)
		}
	}

	reloadErr := target.Reload(ctx)
	target.ClearSelection()

	var err error
	if len(result.Failed) > 0 {
		err = &PartialFailureError{Action: req.Action, Failed: result.Failed, Succeeded: result.Succeeded}
		logger.Warn("Bulk mutation partially failed",
			zap.Int("succeeded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failed)))
	}
	if reloadErr != nil {
		err = errors.Join(err, fmt.Errorf("reload after %s failed: %w", req.Action, reloadErr))
	}
	return result, err
}

// record writes one journal row per entry. Journal failures are logged and never fail the mutation.
func (c *Coordinator) record(ctx context.Context, batchID string, req Request, outcomes map[int64]error) {
	now := c.now()
	ids := make([]int64, 0, len(outcomes))
	for id := range outcomes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	records := make([]db.MutationRecord, 0, len(ids))
	for _, id := range ids {
		rec := db.MutationRecord{
			ID:         uuid.NewString(),
			BatchID:    batchID,
			Env:        c.env,
			Actor:      c.actor,
			Action:     string(req.Action),
			TargetID:   id,
			Detail:     req.detail(),
			Succeeded:  outcomes[id] == nil,
			RecordedAt: now,
		}
		if err := outcomes[id]; err != nil {
			rec.Error = err.Error()
		}
		records = append(records, rec)
	}

	if err := c.journal.RecordMutations(ctx, records); err != nil {
		c.logger.Warn("Failed to record mutations in journal", zap.String("batch_id", batchID), zap.Error(err))
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

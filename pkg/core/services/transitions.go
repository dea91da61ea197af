package services

import (
	"context"
	"fmt"

	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// reapply and withdraw are shared by the reviewer's and the applicant's collections

func reapply(ctx context.Context, client ApplicationClient, coordinator *bulk.Coordinator, target bulk.Target, statuses []model.ApplicationStatus, ids []int64) (*bulk.Result, error) {
	if len(ids) > 0 && bulk.ReapplyDisabled(statuses) {
		return nil, fmt.Errorf("%w: only withdrawn or rejected applications can be re-applied", ErrActionDisabled)
	}
	return coordinator.Run(ctx, bulk.Request{Action: bulk.ActionReapply, IDs: ids},
		func(ctx context.Context, id int64) error {
			return client.SetApplicationStatus(ctx, id, model.ApplicationStatusPending, "")
		}, target)
}

func withdraw(ctx context.Context, client ApplicationClient, coordinator *bulk.Coordinator, target bulk.Target, statuses []model.ApplicationStatus, ids []int64) (*bulk.Result, error) {
	for _, s := range statuses {
		if s == model.ApplicationStatusWithdrawn {
			return nil, fmt.Errorf("%w: already withdrawn", ErrActionDisabled)
		}
	}
	return coordinator.Run(ctx, bulk.Request{Action: bulk.ActionWithdraw, IDs: ids},
		func(ctx context.Context, id int64) error {
			return client.WithdrawApplication(ctx, id)
		}, target)
}

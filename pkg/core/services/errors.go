package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/clients/apiclient"
)

var (
	// ErrNotPermitted is returned before any request when the caller's capabilities forbid the action
	ErrNotPermitted = errors.New("you are not permitted to do this")
	// ErrActionDisabled is returned when the selection's statuses block the requested transition
	ErrActionDisabled = errors.New("action is not available for the selected entries")
	// ErrNotOpen is returned by collection operations before Open succeeded
	ErrNotOpen = errors.New("nothing loaded yet")
	// ErrNotFound is returned when an id does not belong to the loaded collection
	ErrNotFound = errors.New("entry not found in the loaded collection")
	// ErrOrganizationUnknown is returned when an event's owning organization cannot be determined
	ErrOrganizationUnknown = errors.New("the event's organization is unknown")
	// ErrAlreadyApplied is returned when every requested work area already has an active application
	ErrAlreadyApplied = errors.New("you already applied to these work areas")
	// ErrInvalidApplication is returned when an application form is incomplete or does not fit the event
	ErrInvalidApplication = errors.New("invalid application")
)

// SessionRemover deletes the persisted session for an environment
type SessionRemover interface {
	Delete(env string) error
}

// ForgetOnUnauthorized destroys the persisted session when err is a 401 and returns err with a login hint.
// Any other error is returned unchanged.
func ForgetOnUnauthorized(err error, store SessionRemover, env string, logger *zap.Logger) error {
	if err == nil || !errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}
	logger.Info("Session rejected by the server, removing it", zap.String("env", env))
	if delErr := store.Delete(env); delErr != nil {
		logger.Warn("Failed to remove rejected session", zap.Error(delErr))
	}
	return fmt.Errorf("%w (session cleared, run login again)", err)
}

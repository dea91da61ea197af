package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/internal/config"
	"github.com/jakechorley/volunteer-admin/pkg/clients/apiclient"
	"github.com/jakechorley/volunteer-admin/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/loader"
	"github.com/jakechorley/volunteer-admin/pkg/core/services"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
	"github.com/jakechorley/volunteer-admin/pkg/db"
	"github.com/jakechorley/volunteer-admin/pkg/session"
	"github.com/jakechorley/volunteer-admin/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Logger   *zap.Logger
	Sessions *session.Store
	Journal  db.Journal
	Ctx      context.Context
	Input    *bufio.Scanner

	// Set by SetSession; nil until logged in
	Session *session.Session
	API     *apiclient.Client
	Loader  *loader.Loader

	// Kept across commands in an interactive session
	review *services.ApplicationReview
	team   *services.TeamManagement
	sheets *sheetsclient.Client
}

// SetSession installs sess (or an anonymous client when nil) and drops any loaded screens
func (app *AppContext) SetSession(sess *session.Session) {
	token := ""
	if sess != nil {
		token = sess.Token
	}
	app.Session = sess
	app.API = apiclient.NewClient(app.Cfg.APIBaseURL, token, app.Cfg.RequestTimeout, app.Logger)
	app.Loader = loader.New(app.API, app.Logger)
	app.review = nil
	app.team = nil
}

// RequireSession fails with session.ErrNoSession when nobody is logged in
func (app *AppContext) RequireSession() error {
	if app.Session == nil {
		return session.ErrNoSession
	}
	return nil
}

// Fail clears the stored session when err is a 401
func (app *AppContext) Fail(err error) error {
	err = services.ForgetOnUnauthorized(err, app.Sessions, app.Env, app.Logger)
	if errors.Is(err, apiclient.ErrUnauthorized) {
		app.SetSession(nil)
	}
	return err
}

func (app *AppContext) actor() string {
	if app.Session == nil {
		return ""
	}
	return app.Session.Subject
}

func (app *AppContext) Coordinator() *bulk.Coordinator {
	return bulk.NewCoordinator(app.Journal, app.Logger, app.Env, app.actor())
}

// Review returns the review of eventID, opening it unless it is already the loaded event
func (app *AppContext) Review(eventID int64) (*services.ApplicationReview, error) {
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	if app.review != nil && app.review.Loaded() && app.review.Event().ID == eventID {
		return app.review, nil
	}

	review := services.NewApplicationReview(app.API, app.Loader, app.Coordinator(),
		view.NewApplicationState(app.Cfg.PageSize, app.Cfg.Locale), app.Logger)
	if err := review.Open(app.Ctx, eventID); err != nil {
		return nil, app.Fail(err)
	}
	app.review = review
	return review, nil
}

// CurrentReview returns the review opened earlier in this session
func (app *AppContext) CurrentReview() (*services.ApplicationReview, error) {
	if app.review == nil || !app.review.Loaded() {
		return nil, fmt.Errorf("no event open: run 'open <eventID>' first")
	}
	return app.review, nil
}

// Team returns the team screen, loading it on first use
func (app *AppContext) Team() (*services.TeamManagement, error) {
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	if app.team != nil {
		return app.team, nil
	}

	team := services.NewTeamManagement(app.API, app.Loader, app.Coordinator(),
		view.NewTeamState(app.Cfg.PageSize, app.Cfg.Locale), app.Logger)
	if err := team.Open(app.Ctx); err != nil {
		return nil, app.Fail(err)
	}
	app.team = team
	return team, nil
}

// Applicant returns the caller's own application list
func (app *AppContext) Applicant() (*services.Applicant, error) {
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	return services.NewApplicant(app.API, app.Coordinator(), app.Logger), nil
}

// Publisher builds the Google Sheets client on first use; only publishing exports need it
func (app *AppContext) Publisher() (services.WorkbookPublisher, error) {
	if app.sheets != nil {
		return app.sheets, nil
	}

	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	store, err := utils.NewTokenStore("")
	if err != nil {
		return nil, err
	}
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, store, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheets = client
	return client, nil
}

// Prompt prints label and reads one line of input
func (app *AppContext) Prompt(w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	if !app.Input.Scan() {
		if err := app.Input.Err(); err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(app.Input.Text()), nil
}

// Confirm asks a yes/no question; anything but y or yes is a no
func (app *AppContext) Confirm(w io.Writer, question string) (bool, error) {
	answer, err := app.Prompt(w, question+" [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

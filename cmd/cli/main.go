package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/cmd/cli/commands"
	"github.com/jakechorley/volunteer-admin/internal/config"
	"github.com/jakechorley/volunteer-admin/pkg/db"
	"github.com/jakechorley/volunteer-admin/pkg/postgres"
	"github.com/jakechorley/volunteer-admin/pkg/session"
	"github.com/jakechorley/volunteer-admin/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     *commands.AppContext
	journal *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "volunteer-admin",
		Short: "Volunteer admin CLI - Review event applications and manage teams",
		Long: `A CLI tool for organizers: review, approve and reject event applications,
manage organization members and join requests, and export what you see to Excel or Google Sheets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if journal != nil {
				journal.Close()
			}
			if app != nil && app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	// app is filled in by initApp before any command runs
	app = &commands.AppContext{}

	// Add all commands
	rootCmd.AddCommand(commands.LoginCmd(app))
	rootCmd.AddCommand(commands.LogoutCmd(app))
	rootCmd.AddCommand(commands.WhoamiCmd(app))
	rootCmd.AddCommand(commands.ApplicationsCmd(app))
	rootCmd.AddCommand(commands.ApproveCmd(app))
	rootCmd.AddCommand(commands.RejectCmd(app))
	rootCmd.AddCommand(commands.SetStatusCmd(app))
	rootCmd.AddCommand(commands.NoteCmd(app))
	rootCmd.AddCommand(commands.EmailApplicantsCmd(app))
	rootCmd.AddCommand(commands.ExportApplicationsCmd(app))
	rootCmd.AddCommand(commands.MyApplicationsCmd(app))
	rootCmd.AddCommand(commands.EventCmd(app))
	rootCmd.AddCommand(commands.ApplyCmd(app))
	rootCmd.AddCommand(commands.ReapplyCmd(app))
	rootCmd.AddCommand(commands.WithdrawCmd(app))
	rootCmd.AddCommand(commands.TeamCmd(app))
	rootCmd.AddCommand(commands.PendingMembersCmd(app))
	rootCmd.AddCommand(commands.ApproveMembersCmd(app))
	rootCmd.AddCommand(commands.RejectMembersCmd(app))
	rootCmd.AddCommand(commands.SetRoleCmd(app))
	rootCmd.AddCommand(commands.RemoveMemberCmd(app))
	rootCmd.AddCommand(commands.EmailTeamCmd(app))
	rootCmd.AddCommand(commands.ExportTeamCmd(app))
	rootCmd.AddCommand(commands.OrganizationsCmd(app))
	rootCmd.AddCommand(commands.JournalCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, the stored session and the mutation journal
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()
	app.Input = bufio.NewScanner(os.Stdin)

	// Initialize logger
	app.Logger, err = logging.New(env, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("api_base_url", app.Cfg.APIBaseURL))

	// Restore the session from a previous login
	app.Sessions, err = session.NewStore(app.Cfg.SessionDir)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	sess, err := app.Sessions.Load(env)
	switch {
	case errors.Is(err, session.ErrNoSession):
		app.Logger.Debug("No stored session")
	case err != nil:
		return fmt.Errorf("failed to load session: %w", err)
	default:
		app.Logger.Debug("Session restored", zap.String("subject", sess.Subject))
	}

	// Initialize the mutation journal
	if app.Cfg.JournalEnabled() {
		app.Logger.Debug("Connecting to journal database")
		journal, err = postgres.Open(app.Ctx, app.Cfg.JournalDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize journal database: %w", err)
		}
		app.Journal = journal
		app.Logger.Debug("Journal database initialized successfully")
	} else {
		app.Journal = db.NopJournal{}
	}

	app.SetSession(sess)

	return nil
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/services"
)

// EnvPassword lets scripts log in without a prompt
const EnvPassword = "VOLUNTEER_ADMIN_PASSWORD"

// LoginCmd creates the login command
func LoginCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the session for this environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			email := args[0]

			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if password == "" {
				var err error
				password, err = app.Prompt(out, "Password: ")
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("no password given")
				}
				if err != nil {
					return err
				}
			}

			sess, err := services.Login(app.Ctx, app.API, app.Sessions, app.Logger, app.Env, email, password)
			if err != nil {
				return err
			}
			app.SetSession(sess)

			fmt.Fprintf(out, "\n✓ Logged in as %s\n", sess.Subject)
			if !sess.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Session expires %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().String("password", "", "Password (otherwise $"+EnvPassword+" or a prompt)")

	return cmd
}

// LogoutCmd creates the logout command
func LogoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session for this environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.Logout(app.Sessions, app.Logger, app.Env); err != nil {
				return err
			}
			app.SetSession(nil)
			fmt.Fprintln(cmd.OutOrStdout(), "\n✓ Logged out")
			return nil
		},
	}
}

// WhoamiCmd creates the whoami command
func WhoamiCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and what they may do per organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireSession(); err != nil {
				return err
			}

			identity, err := services.Whoami(app.Ctx, app.API, app.Logger)
			if err != nil {
				return app.Fail(err)
			}

			app.Logger.Debug("whoami command", zap.Int64("user_id", identity.User.ID))
			renderIdentity(cmd.OutOrStdout(), identity)
			return nil
		},
	}
}

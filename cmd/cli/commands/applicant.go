package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-admin/pkg/core/services"
)

// MyApplicationsCmd creates the myApplications command
func MyApplicationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "myApplications",
		Short: "List your own applications grouped by organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireSession(); err != nil {
				return err
			}

			groups, err := services.MyApplications(app.Ctx, app.API, app.Logger)
			if err != nil {
				return app.Fail(err)
			}
			renderGroups(cmd.OutOrStdout(), groups)
			return nil
		},
	}
}

// EventCmd creates the event command
func EventCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "event <eventID>",
		Short: "Show an event's details and whether you already applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseID(args[0], "eventID")
			if err != nil {
				return err
			}
			if err := app.RequireSession(); err != nil {
				return err
			}

			v, err := services.ApplicantEvent(app.Ctx, app.Loader, app.Logger, eventID)
			if err != nil {
				return app.Fail(err)
			}
			renderApplicantEvent(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// ApplyCmd creates the apply command
func ApplyCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <eventID>",
		Short: "Apply to an event's work areas, answering its questions",
		Long: `Apply to one or more work areas of an event. Questions are answered with --answer "question=value",
where question is the question text or its id; choose several options of a multi-choice question with commas.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseID(args[0], "eventID")
			if err != nil {
				return err
			}
			if err := app.RequireSession(); err != nil {
				return err
			}
			form, err := applicationForm(cmd, eventID)
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := app.Confirm(cmd.OutOrStdout(), fmt.Sprintf("Apply to event %d?", eventID))
				if err != nil || !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			result, err := services.Apply(app.Ctx, app.API, app.Loader, app.Logger, form)
			if err != nil {
				return app.Fail(err)
			}
			renderApplyResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringArray("area", nil, "Work area to apply to (repeatable)")
	cmd.Flags().StringArray("answer", nil, "Answer as question=value (repeatable)")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func applicationForm(cmd *cobra.Command, eventID int64) (services.ApplicationForm, error) {
	areas, _ := cmd.Flags().GetStringArray("area")
	raw, _ := cmd.Flags().GetStringArray("answer")

	answers := make(map[string]string, len(raw))
	for _, a := range raw {
		question, value, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(question) == "" {
			return services.ApplicationForm{}, fmt.Errorf("answer must be question=value, got: %s", a)
		}
		answers[strings.TrimSpace(question)] = value
	}
	return services.ApplicationForm{EventID: eventID, Areas: areas, Answers: answers}, nil
}

func renderApplyResult(w io.Writer, result *services.ApplyResult) {
	fmt.Fprintf(w, "\n✓ Applied to %s: %s\n", result.Event.Title, strings.Join(result.Applied, ", "))
	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "Already applied to: %s\n", strings.Join(result.Skipped, ", "))
	}
}

// ReapplyCmd creates the reapply command
func ReapplyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reapply <appID>",
		Short: "Return one of your withdrawn or rejected applications to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "appID")
			if err != nil {
				return err
			}
			applicant, err := app.Applicant()
			if err != nil {
				return err
			}

			result, err := applicant.Reapply(app.Ctx, id)
			return renderResult(cmd.OutOrStdout(), "Re-applied", result, app.Fail(err))
		},
	}
}

// WithdrawCmd creates the withdraw command
func WithdrawCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw <appID>",
		Short: "Withdraw one of your applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "appID")
			if err != nil {
				return err
			}
			applicant, err := app.Applicant()
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := app.Confirm(cmd.OutOrStdout(), fmt.Sprintf("Withdraw application %d?", id))
				if err != nil || !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			result, err := applicant.Withdraw(app.Ctx, id)
			return renderResult(cmd.OutOrStdout(), "Withdrawn", result, app.Fail(err))
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	return cmd
}

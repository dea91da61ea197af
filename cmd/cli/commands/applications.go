package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/export"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/core/services"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
)

// openReview parses the event id argument, opens the event and applies any view flags
func openReview(cmd *cobra.Command, app *AppContext, arg string) (*services.ApplicationReview, error) {
	eventID, err := parseID(arg, "eventID")
	if err != nil {
		return nil, err
	}
	review, err := app.Review(eventID)
	if err != nil {
		return nil, err
	}
	if err := applyApplicationViewFlags(cmd, review.State, review.Event()); err != nil {
		return nil, err
	}
	return review, nil
}

func showReview(w io.Writer, review *services.ApplicationReview) {
	event := review.Event()
	fmt.Fprintf(w, "\n%s%s%s (%s)\n\n", colorBold, event.Title, colorReset, event.OrgName)
	renderTabs(w, review.Tabs(), review.State.Query().Tab)
	renderQuery(w, review.State.Query())
	renderApplicationPage(w, review.Page(), review.State.Selection())
}

// ApplicationsCmd creates the applications command
func ApplicationsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applications <eventID>",
		Short: "List an event's applications by tab, with filters, sorting and paging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := openReview(cmd, app, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			showReview(out, review)
			renderOccupancy(out, review.Event(), review.Occupancy())
			return nil
		},
	}

	addApplicationViewFlags(cmd)

	return cmd
}

// targetApplications resolves the ids a mutation applies to: explicit ids, the whole visible list,
// or the current selection
func targetApplications(cmd *cobra.Command, review *services.ApplicationReview, args []string) ([]int64, error) {
	ids, err := parseIDs(args, "appID")
	if err != nil {
		return nil, err
	}
	if allVisible, _ := cmd.Flags().GetBool("all-visible"); allVisible {
		if len(ids) > 0 {
			return nil, fmt.Errorf("give application ids or --all-visible, not both")
		}
		ids = view.ApplicationIDs(review.Visible())
	}
	if len(ids) == 0 {
		ids = review.State.Selection().IDs()
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: give application ids or --all-visible", bulk.ErrEmptySelection)
	}
	return ids, nil
}

func confirmBulk(cmd *cobra.Command, app *AppContext, verb string, count int) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes || count < 2 {
		return true, nil
	}
	ok, err := app.Confirm(cmd.OutOrStdout(), fmt.Sprintf("%s %d applications?", verb, count))
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	return ok, err
}

// rejectionReason reads --reason, or asks for one unless --no-reason or --yes was given
func rejectionReason(cmd *cobra.Command, app *AppContext) (string, error) {
	flags := cmd.Flags()
	if flags.Changed("reason") {
		reason, _ := flags.GetString("reason")
		return strings.TrimSpace(reason), nil
	}
	noReason, _ := flags.GetBool("no-reason")
	yes, _ := flags.GetBool("yes")
	if noReason || yes {
		return "", nil
	}
	reason, err := app.Prompt(cmd.OutOrStdout(), "Rejection reason shown to the applicant (empty for none): ")
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return reason, err
}

// statusReason asks for a rejection message the same way reject does; other statuses carry none
func statusReason(cmd *cobra.Command, app *AppContext, status model.ApplicationStatus) (string, error) {
	if status != model.ApplicationStatusRejected {
		return "", nil
	}
	return rejectionReason(cmd, app)
}

func addDecisionFlags(cmd *cobra.Command) {
	addApplicationViewFlags(cmd)
	cmd.Flags().Bool("all-visible", false, "Apply to every application in the filtered view")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// ApproveCmd creates the approve command
func ApproveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <eventID> [appID...]",
		Short: "Approve applications (ids, --all-visible, or the selection)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := openReview(cmd, app, args[0])
			if err != nil {
				return err
			}
			return approveApplications(cmd, app, review, args[1:])
		},
	}

	addDecisionFlags(cmd)

	return cmd
}

func approveApplications(cmd *cobra.Command, app *AppContext, review *services.ApplicationReview, args []string) error {
	ids, err := targetApplications(cmd, review, args)
	if err != nil {
		return err
	}
	ok, err := confirmBulk(cmd, app, "Approve", len(ids))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}

	app.Logger.Debug("approve command", zap.Int64s("ids", ids))
	result, err := review.BulkApprove(app.Ctx, ids)
	return renderResult(cmd.OutOrStdout(), "Approved", result, app.Fail(err))
}

// RejectCmd creates the reject command
func RejectCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <eventID> [appID...]",
		Short: "Reject applications with an optional reason shown to each applicant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := openReview(cmd, app, args[0])
			if err != nil {
				return err
			}
			return rejectApplications(cmd, app, review, args[1:])
		},
	}

	addRejectFlags(cmd)

	return cmd
}

func addRejectFlags(cmd *cobra.Command) {
	addDecisionFlags(cmd)
	cmd.Flags().String("reason", "", "Rejection message attached to every rejected application")
	cmd.Flags().Bool("no-reason", false, "Reject without a message")
}

func rejectApplications(cmd *cobra.Command, app *AppContext, review *services.ApplicationReview, args []string) error {
	ids, err := targetApplications(cmd, review, args)
	if err != nil {
		return err
	}
	reason, err := rejectionReason(cmd, app)
	if err != nil {
		return err
	}
	ok, err := confirmBulk(cmd, app, "Reject", len(ids))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}

	app.Logger.Debug("reject command", zap.Int64s("ids", ids), zap.Bool("with_reason", reason != ""))
	result, err := review.BulkReject(app.Ctx, ids, reason)
	return renderResult(cmd.OutOrStdout(), "Rejected", result, app.Fail(err))
}

// SetStatusCmd creates the setStatus command
func SetStatusCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setStatus <eventID> <appID> <status>",
		Short: "Move one application to pending, approved or rejected",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := openReview(cmd, app, args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1], "appID")
			if err != nil {
				return err
			}
			status, err := model.ParseApplicationStatus(args[2])
			if err != nil {
				return err
			}
			reason, err := statusReason(cmd, app, status)
			if err != nil {
				return err
			}

			result, err := review.ChangeStatus(app.Ctx, id, status, reason)
			return renderResult(cmd.OutOrStdout(), "Set to "+status.Label(), result, app.Fail(err))
		},
	}

	cmd.Flags().String("reason", "", "Rejection message, only used when rejecting")
	cmd.Flags().Bool("no-reason", false, "Reject without a message")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for a rejection message")

	return cmd
}

// NoteCmd creates the note command
func NoteCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "note <eventID> <appID> <text...>",
		Short: "Save the private administrator note of an application (empty text clears it)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := openReview(cmd, app, args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1], "appID")
			if err != nil {
				return err
			}
			note := strings.Join(args[2:], " ")

			if err := review.SaveNote(app.Ctx, id, note); err != nil {
				return app.Fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Note saved for application %d\n", id)
			return nil
		},
	}
}

func addEmailFlags(cmd *cobra.Command) {
	cmd.Flags().String("subject", "", "Email subject (required)")
	cmd.Flags().String("message", "", "Email body (required)")
}

// EmailApplicantsCmd creates the emailApplicants command
func EmailApplicantsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emailApplicants <eventID> [appID...]",
		Short: "Ask the backend to email the selected applicants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := openReview(cmd, app, args[0])
			if err != nil {
				return err
			}
			ids, err := targetApplications(cmd, review, args[1:])
			if err != nil {
				return err
			}
			subject, _ := cmd.Flags().GetString("subject")
			message, _ := cmd.Flags().GetString("message")

			if err := review.EmailSelected(app.Ctx, ids, subject, message); err != nil {
				return app.Fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Email requested for %d applicants\n", len(ids))
			return nil
		},
	}

	addApplicationViewFlags(cmd)
	addEmailFlags(cmd)
	cmd.Flags().Bool("all-visible", false, "Email every applicant in the filtered view")

	return cmd
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "Directory for the .xlsx file (default from config)")
	cmd.Flags().Bool("publish", false, "Also publish to the configured Google spreadsheet")
	cmd.Flags().String("spreadsheet", "", "Spreadsheet id to publish to (overrides config)")
}

// exportOptions turns the export flags into destinations
func exportOptions(cmd *cobra.Command, app *AppContext, fileName string) (services.ExportOptions, error) {
	dir, _ := cmd.Flags().GetString("out")
	if dir == "" {
		dir = app.Cfg.ExportDir
	}
	opts := services.ExportOptions{Dir: dir, FileName: fileName}

	publish, _ := cmd.Flags().GetBool("publish")
	spreadsheetID, _ := cmd.Flags().GetString("spreadsheet")
	if spreadsheetID != "" {
		publish = true
	}
	if !publish {
		return opts, nil
	}

	if spreadsheetID == "" {
		spreadsheetID = app.Cfg.ExportSpreadsheetID
	}
	if spreadsheetID == "" {
		return opts, fmt.Errorf("no spreadsheet to publish to: set exportSpreadsheetID or pass --spreadsheet")
	}
	publisher, err := app.Publisher()
	if err != nil {
		return opts, err
	}
	opts.SpreadsheetID = spreadsheetID
	opts.Publisher = publisher
	return opts, nil
}

// ExportApplicationsCmd creates the exportApplications command
func ExportApplicationsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportApplications <eventID>",
		Short: "Export an event's applications: current view, per status and per work area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := openReview(cmd, app, args[0])
			if err != nil {
				return err
			}

			wb, err := review.Workbook()
			if err != nil {
				return err
			}
			opts, err := exportOptions(cmd, app, export.FileName("applications", review.Event().Title))
			if err != nil {
				return err
			}

			result, err := services.ExportWorkbook(app.Ctx, wb, opts, app.Logger)
			if err != nil {
				return err
			}
			renderExport(cmd.OutOrStdout(), result)
			return nil
		},
	}

	addApplicationViewFlags(cmd)
	addExportFlags(cmd)

	return cmd
}

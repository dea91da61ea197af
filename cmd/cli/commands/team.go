package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/export"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/core/services"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
)

func openTeam(cmd *cobra.Command, app *AppContext, tab view.TeamTab) (*services.TeamManagement, error) {
	team, err := app.Team()
	if err != nil {
		return nil, err
	}
	if team.State.Tab() != tab {
		team.State.SetTab(tab)
	}
	if err := applyTeamViewFlags(cmd, team.State, team.Organizations()); err != nil {
		return nil, err
	}
	return team, nil
}

// TeamCmd creates the team command
func TeamCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "List team members of the organizations you lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := openTeam(cmd, app, view.TeamTabMembers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if orgs := team.Organizations(); len(orgs) > 0 {
				fmt.Fprintf(out, "\nOrganizations: %s\n", strings.Join(orgs, ", "))
			}
			renderTeamPage(out, team.MembersPage(), team.State.Selection())
			if n := len(team.PendingApplications()); n > 0 {
				fmt.Fprintf(out, "%d pending membership applications (see pendingMembers)\n", n)
			}
			return nil
		},
	}

	addTeamViewFlags(cmd)

	return cmd
}

// PendingMembersCmd creates the pendingMembers command
func PendingMembersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pendingMembers",
		Short: "List pending requests to join the organizations you lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := openTeam(cmd, app, view.TeamTabPending)
			if err != nil {
				return err
			}
			renderPendingPage(cmd.OutOrStdout(), team.PendingPage())
			return nil
		},
	}

	addTeamViewFlags(cmd)

	return cmd
}

// decideMembersCmd builds approveMembers and rejectMembers; verb is used in the prompt, done in the summary
func decideMembersCmd(app *AppContext, use, short, verb, done string, status model.MembershipStatus) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [membershipID...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := openTeam(cmd, app, view.TeamTabPending)
			if err != nil {
				return err
			}

			ids, err := parseIDs(args, "membershipID")
			if err != nil {
				return err
			}
			if all, _ := cmd.Flags().GetBool("all"); all && len(ids) == 0 {
				ids = view.MembershipApplicationIDs(team.State.Pending(team.PendingApplications()))
			}
			if len(ids) == 0 {
				ids = team.State.Selection().IDs()
			}
			if len(ids) == 0 {
				return fmt.Errorf("%w: give membership ids or --all", bulk.ErrEmptySelection)
			}

			reason := ""
			if status == model.MembershipStatusRejected {
				reason, err = rejectionReason(cmd, app)
				if err != nil {
					return err
				}
			}
			ok, err := confirmBulk(cmd, app, verb, len(ids))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			app.Logger.Debug(use+" command", zap.Int64s("ids", ids))
			result, err := team.DecideApplications(app.Ctx, ids, status, reason)
			return renderResult(cmd.OutOrStdout(), done, result, app.Fail(err))
		},
	}

	addTeamViewFlags(cmd)
	cmd.Flags().Bool("all", false, "Apply to every pending application in the filtered view")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	if status == model.MembershipStatusRejected {
		cmd.Flags().String("reason", "", "Rejection message attached to every rejected request")
		cmd.Flags().Bool("no-reason", false, "Reject without a message")
	}
	return cmd
}

// ApproveMembersCmd creates the approveMembers command
func ApproveMembersCmd(app *AppContext) *cobra.Command {
	return decideMembersCmd(app, "approveMembers", "Approve membership applications", "Approve", "Approved", model.MembershipStatusApproved)
}

// RejectMembersCmd creates the rejectMembers command
func RejectMembersCmd(app *AppContext) *cobra.Command {
	return decideMembersCmd(app, "rejectMembers", "Reject membership applications", "Reject", "Rejected", model.MembershipStatusRejected)
}

// SetRoleCmd creates the setRole command
func SetRoleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setRole <userID> <orgID> <role>",
		Short: "Change a member's role (owner, organizer, coordinator, volunteer) in one organization",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			orgID, err := parseID(args[1], "orgID")
			if err != nil {
				return err
			}
			role, err := model.ParseOrgRole(args[2])
			if err != nil {
				return err
			}

			team, err := app.Team()
			if err != nil {
				return err
			}
			result, err := team.SetRole(app.Ctx, userID, orgID, role)
			return renderResult(cmd.OutOrStdout(), "Role set to "+role.Label(), result, app.Fail(err))
		},
	}
}

// RemoveMemberCmd creates the removeMember command
func RemoveMemberCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "removeMember <userID> <orgID>",
		Short: "Remove a member from one organization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			orgID, err := parseID(args[1], "orgID")
			if err != nil {
				return err
			}

			team, err := app.Team()
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := app.Confirm(cmd.OutOrStdout(), fmt.Sprintf("Remove member %d from organization %d?", userID, orgID))
				if err != nil || !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			result, err := team.RemoveMember(app.Ctx, []int64{userID}, orgID)
			return renderResult(cmd.OutOrStdout(), "Removed", result, app.Fail(err))
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// EmailTeamCmd creates the emailTeam command
func EmailTeamCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emailTeam [userID...]",
		Short: "Ask the backend to email team members (ids, --all-visible, or the selection)",
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := openTeam(cmd, app, view.TeamTabMembers)
			if err != nil {
				return err
			}

			ids, err := parseIDs(args, "userID")
			if err != nil {
				return err
			}
			if all, _ := cmd.Flags().GetBool("all-visible"); all && len(ids) == 0 {
				ids = view.TeamMemberIDs(team.State.Members(team.Members()))
			}
			if len(ids) == 0 {
				ids = team.State.Selection().IDs()
			}

			subject, _ := cmd.Flags().GetString("subject")
			message, _ := cmd.Flags().GetString("message")
			if err := team.EmailMembers(app.Ctx, ids, subject, message); err != nil {
				return app.Fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Email requested for %d members\n", len(ids))
			return nil
		},
	}

	addTeamViewFlags(cmd)
	addEmailFlags(cmd)
	cmd.Flags().Bool("all-visible", false, "Email every member in the filtered view")

	return cmd
}

// ExportTeamCmd creates the exportTeam command
func ExportTeamCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exportTeam",
		Short: "Export the filtered roster and pending join requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := openTeam(cmd, app, view.TeamTabMembers)
			if err != nil {
				return err
			}

			wb, err := team.Workbook()
			if err != nil {
				return err
			}
			opts, err := exportOptions(cmd, app, export.FileName("team", team.State.Query().OrgFilter))
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

	addTeamViewFlags(cmd)
	addExportFlags(cmd)

	return cmd
}

// OrganizationsCmd creates the organizations command
func OrganizationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "organizations",
		Short: "List organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RequireSession(); err != nil {
				return err
			}

			orgs, err := app.API.ListOrganizations(app.Ctx)
			if err != nil {
				return app.Fail(fmt.Errorf("failed to list organizations: %w", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nFound %d organizations:\n\n", len(orgs))
			for _, o := range orgs {
				fmt.Fprintf(out, "  %-6d %s %s\n", o.ID, pad(o.Name, 30), orDash(o.Email))
			}
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
	"github.com/jakechorley/volunteer-admin/pkg/core/view"
)

// SessionCmds are only meaningful inside an interactive session, where the opened event
// and its table state survive between commands
func SessionCmds(app *AppContext) []*cobra.Command {
	return []*cobra.Command{
		openCmd(app),
		showCmd(app),
		tabCmd(app),
		filterCmd(app),
		sortCmd(app),
		pageCmd(app),
		reloadCmd(app),
		selectCmd(app),
		unselectCmd(app),
		selectAllCmd(app),
		clearCmd(app),
		selectMembersCmd(app),
		approveSelectedCmd(app),
		rejectSelectedCmd(app),
	}
}

func openCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <eventID>",
		Short: "Open an event for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseID(args[0], "eventID")
			if err != nil {
				return err
			}
			review, err := app.Review(eventID)
			if err != nil {
				return err
			}
			showReview(cmd.OutOrStdout(), review)
			renderOccupancy(cmd.OutOrStdout(), review.Event(), review.Occupancy())
			return nil
		},
	}
}

func showCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [appID]",
		Short: "Show the current page, or one application with its answers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				showReview(cmd.OutOrStdout(), review)
				return nil
			}

			id, err := parseID(args[0], "appID")
			if err != nil {
				return err
			}
			for _, a := range review.Applications() {
				if a.ID == id {
					renderApplicationDetail(cmd.OutOrStdout(), a, review.Event().QuestionTexts())
					return nil
				}
			}
			return fmt.Errorf("application %d is not part of this event", id)
		},
	}
}

func tabCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tab <status|area>",
		Short: "Switch to a status tab or a work area tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			tab, err := resolveTab(args[0], review.Event())
			if err != nil {
				return err
			}
			review.State.SetTab(tab)
			showReview(cmd.OutOrStdout(), review)
			return nil
		},
	}
}

func filterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <area|status> <value|all>",
		Short: "Narrow the tab by work area (status tabs) or by status (area tabs)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}

			switch strings.ToLower(args[0]) {
			case "area":
				area := ""
				if !isClear(args[1]) {
					if area, err = resolveArea(args[1], review.Event()); err != nil {
						return err
					}
				}
				err = review.State.SetAreaFilter(area)
			case "status":
				var status model.ApplicationStatus
				if !isClear(args[1]) {
					if status, err = model.ParseApplicationStatus(args[1]); err != nil {
						return err
					}
				}
				err = review.State.SetStatusFilter(status)
			default:
				return fmt.Errorf("filter must be area or status, got: %s", args[0])
			}
			if err != nil {
				return err
			}
			showReview(cmd.OutOrStdout(), review)
			return nil
		},
	}
}

func sortCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <name|area> [desc]",
		Short: "Sort the table; sorting by the same field again flips the order",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			field, err := view.ParseApplicationSortField(strings.ToLower(args[0]))
			if err != nil {
				return err
			}

			if len(args) == 2 {
				var order view.SortOrder
				switch strings.ToLower(args[1]) {
				case "asc":
					order = view.Asc
				case "desc":
					order = view.Desc
				default:
					return fmt.Errorf("order must be asc or desc, got: %s", args[1])
				}
				review.State.SetSortOrder(field, order)
			} else {
				review.State.SetSort(field)
			}
			showReview(cmd.OutOrStdout(), review)
			return nil
		},
	}
}

func pageCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "page <n|next|prev>",
		Short: "Move to another page; the selection is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}

			n := review.State.Page()
			switch strings.ToLower(args[0]) {
			case "next":
				n++
			case "prev":
				n--
			default:
				if n, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("page must be a number, next or prev, got: %s", args[0])
				}
			}
			review.State.SetPage(n)
			showReview(cmd.OutOrStdout(), review)
			return nil
		},
	}
}

func reloadCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Fetch the open event again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			if err := review.Reload(app.Ctx); err != nil {
				return app.Fail(err)
			}
			showReview(cmd.OutOrStdout(), review)
			return nil
		},
	}
}

func selectCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <appID...>",
		Short: "Add applications in the current view to the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			ids, err := parseIDs(args, "appID")
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := review.State.Select(review.Applications(), id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d selected\n", review.State.Selection().Len())
			return nil
		},
	}
}

func unselectCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unselect <appID...>",
		Short: "Remove applications from the selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			ids, err := parseIDs(args, "appID")
			if err != nil {
				return err
			}
			for _, id := range ids {
				review.State.Selection().Unselect(id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d selected\n", review.State.Selection().Len())
			return nil
		},
	}
}

func selectAllCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "selectAll",
		Short: "Select every application in the filtered view, across all pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			review.State.SelectAll(review.Applications())
			fmt.Fprintf(cmd.OutOrStdout(), "%d selected\n", review.State.Selection().Len())
			return nil
		},
	}
}

func clearCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the application and team selections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.review != nil {
				app.review.ClearSelection()
			}
			if app.team != nil {
				app.team.ClearSelection()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared")
			return nil
		},
	}
}

func selectMembersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "selectMembers <id...>",
		Short: "Select members, or join requests after pendingMembers, for the team commands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := app.Team()
			if err != nil {
				return err
			}
			ids, err := parseIDs(args, "id")
			if err != nil {
				return err
			}

			visible := team.State.VisibleIDs(team.Members(), team.PendingApplications())
			for _, id := range ids {
				if err := team.State.Selection().Select(visible, id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d selected\n", team.State.Selection().Len())
			return nil
		},
	}
}

func approveSelectedCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approveSelected",
		Short: "Approve the selected applications of the open event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			return approveApplications(cmd, app, review, nil)
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func rejectSelectedCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rejectSelected",
		Short: "Reject the selected applications of the open event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := app.CurrentReview()
			if err != nil {
				return err
			}
			return rejectApplications(cmd, app, review, nil)
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().String("reason", "", "Rejection message attached to every rejected application")
	cmd.Flags().Bool("no-reason", false, "Reject without a message")

	return cmd
}

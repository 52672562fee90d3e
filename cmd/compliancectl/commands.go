package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/change-compliance/internal/api/dto"
	"github.com/spec-kit/change-compliance/internal/config"
	"github.com/spec-kit/change-compliance/internal/llm"
	"github.com/spec-kit/change-compliance/internal/repository"
	"github.com/spec-kit/change-compliance/internal/service"
)

// newCompleter is swapped in tests.
var newCompleter = llm.New

type rootOptions struct {
	seedFile string
	asJSON   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "compliancectl",
		Short: "Inspect change ticket compliance from the command line",
		Long: `compliancectl loads the change ticket catalog, evaluates every ticket
against the compliance rules and prints listings, details and dashboard
statistics. The chat command asks the configured model a one-shot question.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.seedFile, "seed", "", "Ticket seed YAML (defaults to CATALOG_SEED_FILE or the built-in tickets)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newStatsCmd(opts),
		newPromptCmd(opts),
		newChatCmd(opts),
	)
	return root
}

func (o *rootOptions) catalog() (*config.Config, repository.TicketRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	seed := o.seedFile
	if seed == "" {
		seed = cfg.Catalog.SeedFile
	}
	repo, err := repository.LoadCatalog(seed)
	if err != nil {
		return nil, nil, err
	}
	return cfg, repo, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		status, priority, compliance, assignee string
		sortBy, sortOrder                      string
		page, pageSize                         int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets with filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortOrder != service.SortAsc && sortOrder != service.SortDesc {
				return fmt.Errorf("--sort-order must be asc or desc, got %q", sortOrder)
			}
			if page < 1 || pageSize < 1 || pageSize > 100 {
				return fmt.Errorf("--page must be >= 1 and --page-size between 1 and 100")
			}
			_, repo, err := opts.catalog()
			if err != nil {
				return err
			}
			svc := service.NewTicketService(service.TicketDependencies{TicketRepo: repo})
			result := svc.List(cmd.Context(), service.TicketListQuery{
				Filter: service.TicketFilter{
					Status:           &status,
					Priority:         &priority,
					ComplianceStatus: &compliance,
					Assignee:         &assignee,
				},
				SortBy:    sortBy,
				SortOrder: sortOrder,
				Page:      page,
				PageSize:  pageSize,
			})
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), dto.NewTicketListResponse(result))
			}
			return writeTicketTable(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (e.g. \"Pending Approval\")")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority")
	cmd.Flags().StringVar(&compliance, "compliance", "", "Filter by compliance status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Filter by assignee")
	cmd.Flags().StringVar(&sortBy, "sort-by", service.SortByCreatedAt, "createdAt, priority, compliance or scheduledStartDate")
	cmd.Flags().StringVar(&sortOrder, "sort-order", service.SortDesc, "asc or desc")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Tickets per page")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one ticket and its rule results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, err := opts.catalog()
			if err != nil {
				return err
			}
			svc := service.NewTicketService(service.TicketDependencies{TicketRepo: repo})
			ticket, err := svc.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), ticket)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", ticket.Number, ticket.ShortDescription)
			fmt.Fprintf(out, "Status: %s  Priority: %s  Assigned to: %s\n", ticket.Status, ticket.Priority, ticket.AssignedTo)
			fmt.Fprintf(out, "Compliance: %s\n\n", ticket.ComplianceStatus)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RULE\tRESULT\tSEVERITY\tMESSAGE\tSUGGESTION")
			for _, r := range ticket.ValidationResults {
				result := "pass"
				if !r.Passed {
					result = "FAIL"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Rule, result, r.Severity, r.Message, r.Suggestion)
			}
			return tw.Flush()
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, err := opts.catalog()
			if err != nil {
				return err
			}
			svc := service.NewTicketService(service.TicketDependencies{TicketRepo: repo})
			stats := dto.NewStatsResponse(svc.Stats(cmd.Context()))
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Total tickets\t%d\n", stats.TotalTickets)
			fmt.Fprintf(tw, "Pending approval\t%d\n", stats.PendingApproval)
			fmt.Fprintf(tw, "Compliant\t%d\n", stats.Compliant)
			fmt.Fprintf(tw, "Warning\t%d\n", stats.Warning)
			fmt.Fprintf(tw, "Non-compliant\t%d\n", stats.NonCompliant)
			for _, p := range []string{"Critical", "High", "Medium", "Low"} {
				if n, ok := stats.ByPriority[p]; ok {
					fmt.Fprintf(tw, "Priority %s\t%d\n", p, n)
				}
			}
			return tw.Flush()
		},
	}
}

func newPromptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt sent to the chat model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, err := opts.catalog()
			if err != nil {
				return err
			}
			prompt, err := service.BuildSystemPrompt(service.BuildChatContext(repo.All()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return err
		},
	}
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask the compliance assistant a one-shot question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, repo, err := opts.catalog()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			completer, err := newCompleter(ctx, cfg.LLM)
			if err != nil {
				return err
			}
			chat := service.NewChatService(service.ChatDependencies{
				TicketRepo:  repo,
				Completer:   completer,
				MaxTokens:   cfg.LLM.MaxTokens,
				Temperature: cfg.LLM.Temperature,
			})
			reply, err := chat.Reply(ctx, []llm.Message{{Role: llm.RoleUser, Content: strings.Join(args, " ")}})
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), dto.ChatResponse{Response: reply})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
}

func writeTicketTable(w io.Writer, page service.TicketPage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tPRIORITY\tSTATUS\tCOMPLIANCE\tASSIGNED TO\tCREATED")
	for _, t := range page.Tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Number, t.Priority, t.Status, t.ComplianceStatus, t.AssignedTo, t.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d tickets (page %d, %d per page)\n", len(page.Tickets), page.Total, page.Page, page.PageSize)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/financecore/finance-core/internal/domain/auth"
	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/pkg/money"
)

func newReviewCmd(a *app) *cobra.Command {
	var filter expense.Filter

	cmd := &cobra.Command{
		Use:   "review",
		Short: "List and filter imported records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requirePermission(auth.PermViewReview); err != nil {
				return err
			}

			records, err := a.expenses.All()
			if err != nil {
				return err
			}

			// Type and status filters compare against normalized values.
			filter.Type = strings.ToUpper(strings.TrimSpace(filter.Type))
			filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))

			filtered := expense.ApplyFilter(records, filter)
			summary := expense.Summarize(filtered)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tCOLLABORATOR\tVALUE\tTYPE\tSTATUS")
			for _, r := range filtered {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Date, r.Name, r.Val, r.Type, r.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d records (%d pending), total %s\n",
				summary.Count, summary.Pending, money.Format(summary.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "match collaborator, ID or value (fuzzy)")
	cmd.Flags().StringVar(&filter.Type, "type", "", "filter by category")
	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&filter.Date, "date", "", "filter by date fragment (DD/MM/YYYY)")

	cmd.AddCommand(newReviewDeleteCmd(a), newReviewClearCmd(a))
	return cmd
}

func newReviewClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every imported record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requirePermission(auth.PermEditExpenses); err != nil {
				return err
			}
			if err := a.expenses.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All records deleted")
			return nil
		},
	}
}

func newReviewDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requirePermission(auth.PermEditExpenses); err != nil {
				return err
			}
			if err := a.expenses.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

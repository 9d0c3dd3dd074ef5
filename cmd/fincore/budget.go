package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/financecore/finance-core/internal/domain/auth"
	"github.com/financecore/finance-core/internal/domain/budget"
	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/pkg/money"
)

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show and edit monthly budget targets",
	}
	cmd.AddCommand(newBudgetShowCmd(a), newBudgetSetCmd(a))
	return cmd
}

func newBudgetShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the budget table for all twelve months",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requirePermission(auth.PermViewDashboard); err != nil {
				return err
			}

			months, err := a.budgets.Load()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MONTH\tGERAL\tPPRI\tPPRI ACTUAL\tDIÁRIAS\tDIÁRIAS ACTUAL")
			for _, monthKey := range expense.MonthKeys {
				fields := months[monthKey]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					monthKey,
					formatBudgetCell(fields[budget.BudgetKey(expense.CategoryGeneral)]),
					formatBudgetCell(fields[budget.BudgetKey(expense.CategoryPPRI)]),
					formatBudgetCell(fields[budget.ActualKey(expense.CategoryPPRI)]),
					formatBudgetCell(fields[budget.BudgetKey(expense.CategoryDiarias)]),
					formatBudgetCell(fields[budget.ActualKey(expense.CategoryDiarias)]),
				)
			}
			return w.Flush()
		},
	}
}

func newBudgetSetCmd(a *app) *cobra.Command {
	var actual, mask bool

	cmd := &cobra.Command{
		Use:   "set <month> <category> <amount>",
		Short: "Set a month's budget target (or manual actual) for a category",
		Long: `Set a month's budget target for a category. Months use the Jan..Dez
abbreviations; categories are Geral, PPRI or Diárias. Amounts use the
Brazilian format ("1.234,56"); with --mask the digits are read as centavos
("123456" meaning R$ 1.234,56).`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requirePermission(auth.PermManageBudget); err != nil {
				return err
			}

			month, category, rawAmount := args[0], args[1], args[2]
			category, err := canonicalCategory(category)
			if err != nil {
				return err
			}

			amount := money.Parse(rawAmount)
			if mask {
				amount = money.ParseDigitMask(rawAmount)
			}

			field := budget.BudgetKey(category)
			if actual {
				if category == expense.CategoryGeneral {
					return fmt.Errorf("manual actuals apply to PPRI and Diárias only")
				}
				field = budget.ActualKey(category)
			}

			value, _ := amount.Float64()
			if err := a.budgets.Save(map[string]map[string]float64{
				month: {field: value},
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", month, field, money.Format(amount))
			return nil
		},
	}

	cmd.Flags().BoolVar(&actual, "actual", false, "set the manual actual instead of the target")
	cmd.Flags().BoolVar(&mask, "mask", false, "read the amount as a digit mask (centavos)")
	return cmd
}

func canonicalCategory(raw string) (string, error) {
	for _, c := range []string{expense.CategoryGeneral, expense.CategoryPPRI, expense.CategoryDiarias} {
		if strings.EqualFold(c, raw) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (use Geral, PPRI or Diárias)", raw)
}

func formatBudgetCell(v float64) string {
	if v == 0 {
		return "-"
	}
	return money.Format(decimal.NewFromFloat(v))
}

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/financecore/finance-core/internal/domain/auth"
	"github.com/financecore/finance-core/internal/domain/insights"
	"github.com/financecore/finance-core/pkg/money"
)

type reportFlags struct {
	year         string
	month        string
	collaborator string
}

func (rf *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rf.year, "year", strconv.Itoa(time.Now().Year()), "filter by year")
	cmd.Flags().StringVar(&rf.month, "month", "", "filter by month (Jan..Dez or 1..12)")
	cmd.Flags().StringVar(&rf.collaborator, "collaborator", "", "filter by collaborator")
}

func (rf *reportFlags) filter() (insights.Filter, error) {
	idx, err := parseMonthFlag(rf.month)
	if err != nil {
		return insights.Filter{}, err
	}
	return insights.Filter{Year: rf.year, MonthIndex: idx, Collaborator: rf.collaborator}, nil
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Budget-vs-actual aggregates over the imported records",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if parent := cmd.Parent(); parent != nil && parent.PersistentPreRunE != nil {
				if err := parent.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			return a.requirePermission(auth.PermViewDashboard)
		},
	}
	cmd.AddCommand(
		newReportKPIsCmd(a),
		newReportSeriesCmd(a),
		newReportRankingCmd(a),
		newReportDeviationCmd(a),
	)
	return cmd
}

func newReportKPIsCmd(a *app) *cobra.Command {
	rf := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Headline totals for the selected period",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rf.filter()
			if err != nil {
				return err
			}
			kpi, err := a.engine.KPIs(f)
			if err != nil {
				return err
			}

			balance := kpi.TotalBudget.Sub(kpi.TotalActual)
			fmt.Fprintf(cmd.OutOrStdout(), "Budget:  %s\nActual:  %s\nBalance: %s\n",
				money.Format(kpi.TotalBudget), money.Format(kpi.TotalActual), money.Format(balance))
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}

func newReportSeriesCmd(a *app) *cobra.Command {
	rf := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Month-by-month budget vs actual per tracked category",
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := a.engine.MonthlySeries(rf.year, rf.collaborator)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, cs := range series {
				fmt.Fprintf(w, "%s\t\t\n", cs.Category)
				fmt.Fprintln(w, "MONTH\tBUDGET\tACTUAL")
				for _, p := range cs.Points {
					fmt.Fprintf(w, "%s\t%s\t%s\n", p.Month, money.Format(p.Budget), money.Format(p.Actual))
				}
				fmt.Fprintln(w, "\t\t")
			}
			return w.Flush()
		},
	}
	rf.register(cmd)
	return cmd
}

func newReportRankingCmd(a *app) *cobra.Command {
	rf := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Top five cost categories for the selected period",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rf.filter()
			if err != nil {
				return err
			}
			ranking, err := a.engine.Ranking(f)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tCATEGORY\tTOTAL")
			for i, entry := range ranking {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, entry.Category, money.Format(entry.Total))
			}
			return w.Flush()
		},
	}
	rf.register(cmd)
	return cmd
}

func newReportDeviationCmd(a *app) *cobra.Command {
	rf := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "deviation",
		Short: "Monthly gap analysis with diagnosis and action plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseMonthFlag(rf.month)
			if err != nil {
				return err
			}
			if idx < 0 {
				return fmt.Errorf("the deviation report needs --month")
			}

			report, err := a.engine.DeviationReport(rf.year, idx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s/%s  [%s]\n", report.MonthName, report.Year, report.Status)
			fmt.Fprintf(out, "Budget %s  Actual %s  Gap %s (%.1f%%)\n\n",
				money.Format(report.TotalBudget), money.Format(report.TotalActual),
				money.Format(report.TotalGap), report.TotalGapPct*100)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tBUDGET\tACTUAL\tGAP\tCAUSE")
			for _, d := range report.Deviations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					d.Name, money.Format(d.Budget), money.Format(d.Actual),
					money.Format(d.Gap), d.Cause.Kind)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, "\nRecommended actions:")
			for _, action := range report.Actions {
				fmt.Fprintf(out, "  - %s: %s\n", action.Title, action.Description)
			}
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}

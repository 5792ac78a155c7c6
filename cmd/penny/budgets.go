package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/penny/internal/cli"
	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Set spending limits per category",
	}

	cmd.AddCommand(setBudgetCmd())
	cmd.AddCommand(listBudgetsCmd())

	return cmd
}

func setBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set <category> <amount>",
		Short:   "Set the budget for a category",
		Example: `  penny budgets set groceries 400 --period monthly`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			periodFlag, _ := cmd.Flags().GetString("period")
			period := model.BudgetPeriod(periodFlag)

			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("%w: invalid amount %q", common.ErrValidation, args[1])
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := store.SetBudget(ctx, args[0], amount, period); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Budget for %s set to %s %s", args[0], cli.FormatAmount(amount), period)))
			return err
		},
	}

	cmd.Flags().String("period", string(model.BudgetPeriodMonthly), "Budget period (weekly, monthly, yearly)")

	return cmd
}

func listBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets with spending in the current period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return printBudgets(cmd, store, time.Now())
		},
	}
}

func printBudgets(cmd *cobra.Command, store service.Storage, now time.Time) error {
	w := cmd.OutOrStdout()
	lines, err := store.ListBudgets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list budgets: %w", err)
	}
	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No budgets yet. Use 'penny budgets set <category> <amount>' to add one."))
		return err
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		spent, err := store.CategorySpending(cmd.Context(), line.CategoryID, line.Period.Range(now))
		if err != nil {
			return fmt.Errorf("failed to total %s spending: %w", line.CategoryName, err)
		}
		rows = append(rows, budgetRow(line, spent))
	}

	return writeTable(w, []string{"Category", "Period", "Budget", "Spent", "Remaining"}, rows)
}

func budgetRow(line model.BudgetLine, spent decimal.Decimal) []string {
	remaining := line.Amount.Sub(spent)
	remainingText := cli.FormatAmount(remaining)
	if remaining.IsNegative() {
		remainingText = cli.ErrorStyle.Render(remainingText)
	}
	return []string{
		line.CategoryName,
		string(line.Period),
		cli.FormatAmount(line.Amount),
		cli.FormatAmount(spent),
		remainingText,
	}
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	_, err := fmt.Fprint(w, cli.RenderTable(headers, rows))
	return err
}

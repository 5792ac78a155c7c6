package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/penny/internal/cli"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("period", string(model.PeriodMonth), "Reporting window (day, week, month)")
	cmd.Flags().Int("offset", 0, "Shift the window by this many periods (-1 is the previous one)")
}

func periodRange(cmd *cobra.Command) (model.Period, model.DateRange, error) {
	periodFlag, _ := cmd.Flags().GetString("period")
	offset, _ := cmd.Flags().GetInt("offset")

	period, err := model.ParsePeriod(periodFlag)
	if err != nil {
		return "", model.DateRange{}, err
	}
	return period, period.Range(time.Now(), offset), nil
}

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List recorded expenses",
		Long:  `List debit transactions in a day, week or month window, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, dateRange, err := periodRange(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx, &dateRange)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			names, err := categoryNames(cmd, store)
			if err != nil {
				return err
			}

			return printTransactions(cmd.OutOrStdout(), period.Label(dateRange), txns, names)
		},
	}

	addPeriodFlags(cmd)
	return cmd
}

func categoryNames(cmd *cobra.Command, store service.Storage) (map[string]string, error) {
	categories, err := store.GetCategories(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func printTransactions(w io.Writer, label string, txns []model.Transaction, categories map[string]string) error {
	if _, err := fmt.Fprintln(w, cli.FormatTitle(label)); err != nil {
		return err
	}
	if len(txns) == 0 {
		_, err := fmt.Fprintln(w, cli.FormatInfo("No transactions in this period."))
		return err
	}

	total := decimal.Zero
	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		total = total.Add(txn.Amount)
		rows = append(rows, []string{
			txn.Date.Format("2006-01-02 15:04"),
			cli.FormatAmount(txn.Amount),
			categories[txn.CategoryID],
			deref(txn.Item),
			deref(txn.Description),
		})
	}

	if _, err := fmt.Fprint(w, cli.RenderTable([]string{"Date", "Amount", "Category", "Item", "Description"}, rows)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s %s\n", cli.SubtleStyle.Render("Total:"), cli.FormatAmount(total))
	return err
}

func spendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Show total spending with a per-category breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, dateRange, err := periodRange(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			total, err := store.SpendingTotal(ctx, dateRange)
			if err != nil {
				return fmt.Errorf("failed to total spending: %w", err)
			}
			summary, err := store.GetCategorySummary(ctx, dateRange)
			if err != nil {
				return fmt.Errorf("failed to summarize spending: %w", err)
			}

			return printSpending(cmd.OutOrStdout(), period.Label(dateRange), total, summary)
		},
	}

	addPeriodFlags(cmd)
	return cmd
}

func printSpending(w io.Writer, label string, total decimal.Decimal, summary []model.CategoryTotal) error {
	body := cli.ChartIcon + " Spent " + cli.FormatAmount(total)
	if len(summary) > 0 {
		rows := make([][]string, 0, len(summary))
		for _, line := range summary {
			rows = append(rows, []string{
				line.Category,
				cli.FormatAmount(decimal.NewFromFloat(line.Total)),
				strconv.Itoa(line.Count),
			})
		}
		body += "\n\n" + cli.RenderTable([]string{"Category", "Total", "Count"}, rows)
	}

	_, err := fmt.Fprintln(w, cli.RenderBox(label, body))
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package prompt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/penny/internal/model"
)

func TestSQLQuery(t *testing.T) {
	now := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	out, err := SQLQuery("how much on food?", `CREATE TABLE category (id TEXT PRIMARY KEY)`, now)
	require.NoError(t, err)

	assert.Contains(t, out, "CREATE TABLE category")
	assert.Contains(t, out, "Question: how much on food?")
	assert.Contains(t, out, "Today is 2025-03-12")
	assert.Contains(t, out, "1741773600000")
}

func TestSQLReport(t *testing.T) {
	rows := []map[string]any{{"total": 42.5, "name": "food"}}
	out, err := SQLReport("food total?", "SELECT 1;", rows)
	require.NoError(t, err)

	assert.Contains(t, out, "SELECT 1;")
	assert.Contains(t, out, "Results (1 rows)")
	assert.Contains(t, out, `{"name":"food","total":42.5}`)
}

func TestTransactionsReport(t *testing.T) {
	desc := "snacks"
	txns := []model.Transaction{{
		Date:        time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Description: &desc,
		CategoryID:  "cat-1",
		Type:        model.TransactionTypeDebit,
		Amount:      decimal.NewFromInt(20),
	}}

	out, err := TransactionsReport("what did I buy?", txns)
	require.NoError(t, err)
	assert.Contains(t, out, "- 2025-03-01 debit $20.00 snacks [category cat-1]")

	out, err = CategoryTotals("totals", txns)
	require.NoError(t, err)
	assert.Contains(t, out, `$20.00 category=cat-1 "snacks"`)
}

func TestDataQuery(t *testing.T) {
	now := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	out, err := DataQuery("this week?", now)
	require.NoError(t, err)
	assert.Contains(t, out, `"startDate": "2025-03-10"`)
}

// Package prompt holds the fixed text templates sent to language models.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/Veraticus/penny/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ChatSystem is the system prompt for free conversation.
const ChatSystem = "This is a conversation between user and assistant, a friendly chatbot."

// ExpenseExtraction asks for a single transaction object.
const ExpenseExtraction = `Extract expense as JSON:
{"amount": number, "description": "string", "category": "food|transport|shopping|rent|other", "item"?: "string", "type"?: "debit|credit" }
"20 snacks" → {"amount": 20, "description": "snacks", "category": "food", "item": "snacks"}`

// IntentClassification asks the model to label a message as add or report.
const IntentClassification = `Classify the user's message into exactly one intent.
add: the user is recording money they spent or received, e.g. "20 snacks", "paid 50 for groceries", "salary 3000".
report: the user is asking about past spending or income, e.g. "how much did I spend on food this week?".
Reply with one word: add or report.`

// StopWords terminate generation on local chat-tuned models.
var StopWords = []string{
	"</s>",
	"<|end|>",
	"<|eot_id|>",
	"<|end_of_text|>",
	"<|im_end|>",
	"<|EOT|>",
	"<|END_OF_TURN_TOKEN|>",
	"<|end_of_turn|>",
	"<|endoftext|>",
}

// Token budgets per template.
const (
	ChatMaxTokens      = 100
	ExpenseMaxTokens   = 200
	SQLMaxTokens       = 300
	ReportMaxTokens    = 400
	DataQueryMaxTokens = 150
)

var templates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"json": toJSON}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

// SQLQuery builds the schema-aware SQL generation prompt.
func SQLQuery(question, schema string, now time.Time) (string, error) {
	return render("sql_query.tmpl", struct {
		Question  string
		Schema    string
		Today     string
		NowMillis int64
	}{
		Question:  question,
		Schema:    schema,
		Today:     now.Format("2006-01-02"),
		NowMillis: now.UnixMilli(),
	})
}

// SQLReport builds the prompt that turns query rows into a prose answer.
func SQLReport(question, sql string, rows []map[string]any) (string, error) {
	return render("sql_report.tmpl", struct {
		Question string
		SQL      string
		Rows     []map[string]any
	}{Question: question, SQL: sql, Rows: rows})
}

// TransactionsReport builds the prompt that answers a question from a list of
// transactions.
func TransactionsReport(question string, txns []model.Transaction) (string, error) {
	return render("transactions_report.tmpl", struct {
		Question     string
		Transactions []model.Transaction
	}{Question: question, Transactions: txns})
}

// CategoryTotals builds the prompt for a per-category JSON array summary.
func CategoryTotals(question string, txns []model.Transaction) (string, error) {
	return render("category_totals.tmpl", struct {
		Question     string
		Transactions []model.Transaction
	}{Question: question, Transactions: txns})
}

// DataQuery builds the prompt that turns a question into a date-range filter.
func DataQuery(question string, now time.Time) (string, error) {
	week := model.PeriodWeek.Range(now, 0)
	return render("data_query.tmpl", struct {
		Question  string
		Today     string
		WeekStart string
	}{
		Question:  question,
		Today:     now.Format("2006-01-02"),
		WeekStart: week.Start.Format("2006-01-02"),
	})
}

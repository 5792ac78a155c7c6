// Package provider maps provider ids to handlers and the capabilities each
// handler implements.
package provider

import (
	"context"
	"fmt"
	"slices"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/llm"
	"github.com/Veraticus/penny/internal/model"
)

// Provider ids.
const (
	Local  = "local"
	Gemini = llm.ProviderGemini
	OpenAI = llm.ProviderOpenAI
)

// Capability names an operation a handler may implement.
type Capability string

// Capabilities.
const (
	CapabilityChat                   Capability = "chat"
	CapabilityParseExpense           Capability = "parseExpense"
	CapabilityReport                 Capability = "report"
	CapabilityDataQuery              Capability = "generateDataQuery"
	CapabilitySQLQuery               Capability = "generateSQLQuery"
	CapabilityConversationalReport   Capability = "conversationalReport"
	CapabilityConversationalSQLReply Capability = "conversationalReportFromSQL"
)

// Handler is implemented by *LocalHandler and *RemoteHandler only.
type Handler interface {
	ID() string
	Chat(ctx context.Context, messages []model.Message, cfg map[string]string) (string, error)
	sealed()
}

// ExpenseParser extracts a transaction from a chat message.
type ExpenseParser interface {
	ParseExpense(ctx context.Context, message string, cfg map[string]string) (model.TransactionInput, error)
}

// Reporter summarizes transactions as per-category totals.
type Reporter interface {
	Report(ctx context.Context, question string, txns []model.Transaction, cfg map[string]string) ([]model.CategoryTotal, error)
}

// DataQueryGenerator turns a question into a structured filter.
type DataQueryGenerator interface {
	GenerateDataQuery(ctx context.Context, question string, cfg map[string]string) (model.DataQuery, error)
}

// SQLGenerator turns a question into a SELECT statement for the given schema.
type SQLGenerator interface {
	GenerateSQLQuery(ctx context.Context, question, schema string, cfg map[string]string) (string, error)
}

// ConversationalReporter answers a question in prose from transactions.
type ConversationalReporter interface {
	ConversationalReport(ctx context.Context, question string, txns []model.Transaction, cfg map[string]string) (string, error)
}

// SQLReportSummarizer answers a question in prose from query results.
type SQLReportSummarizer interface {
	ConversationalReportFromSQL(ctx context.Context, question, sql string, rows []map[string]any, cfg map[string]string) (string, error)
}

var (
	localCapabilities = []Capability{
		CapabilityChat,
		CapabilityParseExpense,
	}
	remoteCapabilities = []Capability{
		CapabilityChat,
		CapabilityParseExpense,
		CapabilityReport,
		CapabilityDataQuery,
		CapabilitySQLQuery,
		CapabilityConversationalReport,
		CapabilityConversationalSQLReply,
	}
)

// Capabilities lists what h implements.
func Capabilities(h Handler) []Capability {
	switch h.(type) {
	case *LocalHandler:
		return slices.Clone(localCapabilities)
	case *RemoteHandler:
		return slices.Clone(remoteCapabilities)
	default:
		return nil
	}
}

// Supports reports whether h implements c.
func Supports(h Handler, c Capability) bool {
	return slices.Contains(Capabilities(h), c)
}

// As returns h as the capability interface T, or ErrCapabilityNotSupported.
func As[T any](h Handler, c Capability) (T, error) {
	var zero T
	if !Supports(h, c) {
		return zero, fmt.Errorf("%w: %s does not support %s", common.ErrCapabilityNotSupported, h.ID(), c)
	}
	v, ok := h.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is missing %s", common.ErrCapabilityNotSupported, h.ID(), c)
	}
	return v, nil
}

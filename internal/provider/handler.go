package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/llm"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/prompt"
)

var (
	_ Handler       = (*LocalHandler)(nil)
	_ ExpenseParser = (*LocalHandler)(nil)

	_ Handler                = (*RemoteHandler)(nil)
	_ ExpenseParser          = (*RemoteHandler)(nil)
	_ Reporter               = (*RemoteHandler)(nil)
	_ DataQueryGenerator     = (*RemoteHandler)(nil)
	_ SQLGenerator           = (*RemoteHandler)(nil)
	_ ConversationalReporter = (*RemoteHandler)(nil)
	_ SQLReportSummarizer    = (*RemoteHandler)(nil)
)

// base holds what every handler needs to talk to its completer.
type base struct {
	completer llm.Completer
	id        string
	stop      []string
}

func (b *base) ID() string { return b.id }

func (b *base) sealed() {}

func (b *base) complete(ctx context.Context, messages []model.Message, maxTokens int, cfg map[string]string) (string, error) {
	return b.completer.Complete(ctx, llm.CompletionRequest{
		Config:    cfg,
		Messages:  messages,
		Stop:      b.stop,
		MaxTokens: maxTokens,
	})
}

func (b *base) ask(ctx context.Context, system, user string, maxTokens int, cfg map[string]string) (string, error) {
	return b.complete(ctx, []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: user},
	}, maxTokens, cfg)
}

// Chat continues a conversation. The chat system prompt is added when the
// messages do not start with one.
func (b *base) Chat(ctx context.Context, messages []model.Message, cfg map[string]string) (string, error) {
	if len(messages) == 0 || messages[0].Role != model.RoleSystem {
		messages = append([]model.Message{{Role: model.RoleSystem, Content: prompt.ChatSystem}}, messages...)
	}
	reply, err := b.complete(ctx, messages, prompt.ChatMaxTokens, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// ParseExpense extracts a transaction from message. The result is not
// validated.
func (b *base) ParseExpense(ctx context.Context, message string, cfg map[string]string) (model.TransactionInput, error) {
	reply, err := b.ask(ctx, prompt.ExpenseExtraction, message, prompt.ExpenseMaxTokens, cfg)
	if err != nil {
		return model.TransactionInput{}, err
	}

	var input model.TransactionInput
	if err := llm.DecodeObject(reply, &input); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return model.TransactionInput{}, fmt.Errorf("parse expense: %w: %s must be a %s", common.ErrValidation, typeErr.Field, typeErr.Type)
		}
		return model.TransactionInput{}, fmt.Errorf("parse expense: %w", err)
	}
	return input, nil
}

// LocalHandler serves the on-device model. It stops generation on the chat
// template end markers and supports chat and expense parsing only.
type LocalHandler struct {
	base
}

// NewLocalHandler creates the local handler on top of completer.
func NewLocalHandler(completer llm.Completer) *LocalHandler {
	return &LocalHandler{base: base{
		id:        Local,
		completer: completer,
		stop:      prompt.StopWords,
	}}
}

// RemoteHandler serves a hosted model and supports every capability.
type RemoteHandler struct {
	base
	now func() time.Time
}

// NewRemoteHandler creates a remote handler registered under id.
func NewRemoteHandler(id string, completer llm.Completer) *RemoteHandler {
	return &RemoteHandler{
		base: base{id: id, completer: completer},
		now:  time.Now,
	}
}

// Report asks for per-category totals over txns.
func (h *RemoteHandler) Report(ctx context.Context, question string, txns []model.Transaction, cfg map[string]string) ([]model.CategoryTotal, error) {
	p, err := prompt.CategoryTotals(question, txns)
	if err != nil {
		return nil, err
	}
	reply, err := h.complete(ctx, []model.Message{{Role: model.RoleUser, Content: p}}, prompt.ReportMaxTokens, cfg)
	if err != nil {
		return nil, err
	}

	var totals []model.CategoryTotal
	if err := llm.DecodeArray(reply, &totals); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return totals, nil
}

// GenerateDataQuery asks for a date-range filter answering question.
func (h *RemoteHandler) GenerateDataQuery(ctx context.Context, question string, cfg map[string]string) (model.DataQuery, error) {
	p, err := prompt.DataQuery(question, h.now())
	if err != nil {
		return model.DataQuery{}, err
	}
	reply, err := h.complete(ctx, []model.Message{{Role: model.RoleUser, Content: p}}, prompt.DataQueryMaxTokens, cfg)
	if err != nil {
		return model.DataQuery{}, err
	}

	var q model.DataQuery
	if err := llm.DecodeObject(reply, &q); err != nil {
		return model.DataQuery{}, fmt.Errorf("parse data query: %w", err)
	}
	return q, nil
}

// GenerateSQLQuery asks for a single SELECT statement over schema.
func (h *RemoteHandler) GenerateSQLQuery(ctx context.Context, question, schema string, cfg map[string]string) (string, error) {
	p, err := prompt.SQLQuery(question, schema, h.now())
	if err != nil {
		return "", err
	}
	reply, err := h.complete(ctx, []model.Message{{Role: model.RoleUser, Content: p}}, prompt.SQLMaxTokens, cfg)
	if err != nil {
		return "", err
	}
	return llm.ExtractSQL(reply)
}

// ConversationalReport answers question in prose from txns.
func (h *RemoteHandler) ConversationalReport(ctx context.Context, question string, txns []model.Transaction, cfg map[string]string) (string, error) {
	p, err := prompt.TransactionsReport(question, txns)
	if err != nil {
		return "", err
	}
	return h.prose(ctx, p, cfg)
}

// ConversationalReportFromSQL answers question in prose from query rows.
func (h *RemoteHandler) ConversationalReportFromSQL(ctx context.Context, question, sql string, rows []map[string]any, cfg map[string]string) (string, error) {
	p, err := prompt.SQLReport(question, sql, rows)
	if err != nil {
		return "", err
	}
	return h.prose(ctx, p, cfg)
}

func (h *RemoteHandler) prose(ctx context.Context, p string, cfg map[string]string) (string, error) {
	reply, err := h.complete(ctx, []model.Message{{Role: model.RoleUser, Content: p}}, prompt.ReportMaxTokens, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Package assistant turns a user's chat message into one assistant reply.
//
// A Router runs one turn at a time: it classifies the message as adding a
// transaction or asking for a report, dispatches to the active provider's
// capabilities and records both sides of the exchange in a Conversation.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/prompt"
	"github.com/Veraticus/penny/internal/provider"
	"github.com/Veraticus/penny/internal/service"
)

// Fixed replies for recovered report failures.
const (
	ReplyQueryGenerationFailed = "Sorry, I couldn't generate a query for that question."
	ReplyQueryExecutionFailed  = "Sorry, I failed to execute the query."
	ReplyNoData                = "No data found for your query."
	ReplyReportFailed          = "Sorry, I couldn't generate a report right now."
)

// Replies for provider setup errors.
const (
	HintModelNotLoaded    = "Load a model first: penny model load <file>"
	HintMissingCredential = "Set an API key first: penny provider set <provider> --api-key <key>"
)

// chatHistoryLimit bounds how much transcript is sent with a chat turn.
const chatHistoryLimit = 10

// Resolver looks up provider handlers by id.
type Resolver interface {
	Resolve(id string) (provider.Handler, error)
}

// Store is the persistence a router needs.
type Store interface {
	service.StatusStore
	service.TransactionStore
	service.QueryRunner
}

// Router runs user turns against the active provider.
type Router struct {
	resolver     Resolver
	store        Store
	conversation *Conversation
	observe      func(State)
	userID       *string
}

// Option configures a Router.
type Option func(*Router)

// WithStateObserver calls fn on every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(r *Router) { r.observe = fn }
}

// WithConversation records turns into c instead of a fresh transcript.
func WithConversation(c *Conversation) Option {
	return func(r *Router) { r.conversation = c }
}

// WithUserID tags persisted transactions with a user.
func WithUserID(id string) Option {
	return func(r *Router) { r.userID = &id }
}

// NewRouter creates a router.
func NewRouter(resolver Resolver, store Store, opts ...Option) *Router {
	r := &Router{
		resolver: resolver,
		store:    store,
		observe:  func(State) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.conversation == nil {
		r.conversation = NewConversation()
	}
	return r
}

// Conversation returns the transcript the router records into.
func (r *Router) Conversation() *Conversation {
	return r.conversation
}

// turn carries what every step of one turn needs.
type turn struct {
	handler provider.Handler
	config  map[string]string
	text    string
}

// Turn classifies text and runs the matching flow. The user message and
// exactly one assistant reply are prepended to the transcript. When an error
// is returned the reply recorded is its user-facing text.
func (r *Router) Turn(ctx context.Context, text string) (string, error) {
	return r.run(ctx, text, func(ctx context.Context, t turn) (string, error) {
		intent, err := r.classify(ctx, t)
		if err != nil {
			return "", err
		}

		slog.Debug("Classified message", "intent", intent)
		if intent == IntentReport {
			return r.report(ctx, t)
		}
		return r.add(ctx, t)
	})
}

// Add runs only the add-transaction flow.
func (r *Router) Add(ctx context.Context, text string) (string, error) {
	return r.run(ctx, text, r.add)
}

// Report runs only the report flow.
func (r *Router) Report(ctx context.Context, text string) (string, error) {
	return r.run(ctx, text, r.report)
}

// Chat sends text and recent history to the provider as plain conversation.
func (r *Router) Chat(ctx context.Context, text string) (string, error) {
	return r.run(ctx, text, func(ctx context.Context, t turn) (string, error) {
		r.observe(StateChatting)
		return t.handler.Chat(ctx, r.conversation.History(chatHistoryLimit), t.config)
	})
}

func (r *Router) run(ctx context.Context, text string, flow func(context.Context, turn) (string, error)) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty message", common.ErrValidation)
	}

	r.observe(StateIdle)
	r.conversation.Prepend(model.RoleUser, text)

	reply, err := r.dispatch(ctx, text, flow)
	if err != nil {
		err = withHint(err)
		r.observe(StateErrored)
		r.conversation.Prepend(model.RoleAssistant, common.UserMessage(err))
		return "", err
	}

	r.observe(StateDone)
	r.conversation.Prepend(model.RoleAssistant, reply)
	return reply, nil
}

func (r *Router) dispatch(ctx context.Context, text string, flow func(context.Context, turn) (string, error)) (string, error) {
	status, err := r.store.GetModelStatus(ctx)
	if err != nil {
		return "", err
	}

	handler, err := r.resolver.Resolve(status.Provider)
	if err != nil {
		return "", err
	}

	return flow(ctx, turn{handler: handler, config: status.ProviderConfig, text: text})
}

// withHint tells the user how to recover from a provider setup error.
func withHint(err error) error {
	switch {
	case errors.Is(err, common.ErrModelNotLoaded):
		return common.NewUserError(HintModelNotLoaded, err)
	case errors.Is(err, common.ErrMissingCredential):
		return common.NewUserError(HintMissingCredential, err)
	default:
		return err
	}
}

// classify asks the model for the intent. A reply naming neither intent
// falls back to add.
func (r *Router) classify(ctx context.Context, t turn) (Intent, error) {
	r.observe(StateClassifying)

	reply, err := t.handler.Chat(ctx, []model.Message{
		{Role: model.RoleSystem, Content: prompt.IntentClassification},
		{Role: model.RoleUser, Content: t.text},
	}, t.config)
	if err != nil {
		return "", fmt.Errorf("classify message: %w", err)
	}

	return ParseIntent(reply), nil
}

// ParseIntent maps a classification reply to an intent. "add" is checked
// before "report" and is the fallback.
func ParseIntent(reply string) Intent {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, string(IntentAdd)):
		return IntentAdd
	case strings.Contains(lower, string(IntentReport)):
		return IntentReport
	default:
		return IntentAdd
	}
}

func (r *Router) add(ctx context.Context, t turn) (string, error) {
	r.observe(StateAddingTransaction)

	parser, err := provider.As[provider.ExpenseParser](t.handler, provider.CapabilityParseExpense)
	if err != nil {
		return "", err
	}

	input, err := parser.ParseExpense(ctx, t.text, t.config)
	if err != nil {
		return "", err
	}

	txn, cat, err := r.store.AddTransaction(ctx, input, r.userID)
	if err != nil {
		return "", err
	}

	return FormatAdded(txn, cat), nil
}

// FormatAdded is the reply for a recorded transaction.
func FormatAdded(txn *model.Transaction, cat *model.Category) string {
	return fmt.Sprintf("Transaction added! Amount: $%s | Category: %s", txn.Amount.String(), cat.Name)
}

func (r *Router) report(ctx context.Context, t turn) (string, error) {
	generator, err := provider.As[provider.SQLGenerator](t.handler, provider.CapabilitySQLQuery)
	if err != nil {
		return "", err
	}
	summarizer, err := provider.As[provider.SQLReportSummarizer](t.handler, provider.CapabilityConversationalSQLReply)
	if err != nil {
		return "", err
	}

	r.observe(StateGeneratingQuery)
	schema, err := r.store.DescribeSchema(ctx)
	if err != nil {
		return "", err
	}

	query, err := generator.GenerateSQLQuery(ctx, t.text, schema, t.config)
	if errors.Is(err, common.ErrUnparseableResponse) {
		slog.Warn("Model did not produce a query", "error", err)
		return ReplyQueryGenerationFailed, nil
	}
	if err != nil {
		return "", err
	}

	r.observe(StateExecutingQuery)
	slog.Debug("Running generated query", "sql", query)
	rows, err := r.store.RunQuery(ctx, query)
	if err != nil {
		slog.Warn("Generated query failed", "sql", query, "error", err)
		return ReplyQueryExecutionFailed, nil
	}
	if len(rows) == 0 {
		r.observe(StateNoData)
		return ReplyNoData, nil
	}

	r.observe(StateReporting)
	reply, err := summarizer.ConversationalReportFromSQL(ctx, t.text, query, rows, t.config)
	if err != nil || strings.TrimSpace(reply) == "" {
		slog.Warn("Report summary failed", "error", err)
		return ReplyReportFailed, nil
	}
	return reply, nil
}

package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/llm"
	"github.com/Veraticus/penny/internal/local"
)

func defaultRegistry(t *testing.T, engine llm.LocalEngine) *Registry {
	t.Helper()
	r, err := NewDefaultRegistry(engine, map[string]llm.Config{Gemini: {}, OpenAI: {}})
	require.NoError(t, err)
	return r
}

func TestRegistryResolve(t *testing.T) {
	r := defaultRegistry(t, local.NewEngine(nil, local.DefaultParams()))

	assert.Equal(t, []string{"gemini", "local", "openai"}, r.IDs())

	for _, id := range []string{Local, Gemini, OpenAI} {
		h, err := r.Resolve(id)
		require.NoError(t, err)
		assert.Equal(t, id, h.ID())
	}

	for _, id := range []string{"", "anthropic", "LOCAL", "gemini "} {
		_, err := r.Resolve(id)
		require.ErrorIs(t, err, common.ErrUnsupportedProvider, id)
	}
}

func TestDefaultRegistryRemotes(t *testing.T) {
	engine := local.NewEngine(nil, local.DefaultParams())

	r, err := NewDefaultRegistry(engine, map[string]llm.Config{Gemini: {}})
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini", "local"}, r.IDs())

	_, err = NewDefaultRegistry(engine, map[string]llm.Config{"anthropic": {}})
	require.ErrorIs(t, err, common.ErrUnsupportedProvider)
}

func TestCapabilities(t *testing.T) {
	localHandler := NewLocalHandler(scripted())
	remote := NewRemoteHandler(Gemini, scripted())

	assert.Equal(t, []Capability{CapabilityChat, CapabilityParseExpense}, Capabilities(localHandler))
	assert.Len(t, Capabilities(remote), 7)

	assert.True(t, Supports(localHandler, CapabilityParseExpense))
	assert.False(t, Supports(localHandler, CapabilitySQLQuery))
	assert.True(t, Supports(remote, CapabilitySQLQuery))

	_, err := As[SQLGenerator](localHandler, CapabilitySQLQuery)
	require.ErrorIs(t, err, common.ErrCapabilityNotSupported)

	gen, err := As[SQLGenerator](remote, CapabilitySQLQuery)
	require.NoError(t, err)
	assert.NotNil(t, gen)

	parser, err := As[ExpenseParser](localHandler, CapabilityParseExpense)
	require.NoError(t, err)
	assert.NotNil(t, parser)
}

func TestLocalHandlerWithoutModel(t *testing.T) {
	r := defaultRegistry(t, local.NewEngine(nil, local.DefaultParams()))

	h, err := r.Resolve(Local)
	require.NoError(t, err)

	_, err = h.Chat(context.Background(), nil, nil)
	require.ErrorIs(t, err, common.ErrModelNotLoaded)
}

func TestRemoteHandlerMissingCredential(t *testing.T) {
	r := defaultRegistry(t, local.NewEngine(nil, local.DefaultParams()))
	h, err := r.Resolve(Gemini)
	require.NoError(t, err)

	parser, err := As[ExpenseParser](h, CapabilityParseExpense)
	require.NoError(t, err)

	_, err = parser.ParseExpense(context.Background(), "20 snacks", map[string]string{"apiKey": ""})
	require.ErrorIs(t, err, common.ErrMissingCredential)
}

package provider

import (
	"fmt"
	"sort"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/llm"
)

// Registry maps provider ids to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates a registry holding handlers.
func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// NewDefaultRegistry registers the local handler plus one remote handler per
// entry in remotes, keyed by provider id.
func NewDefaultRegistry(engine llm.LocalEngine, remotes map[string]llm.Config) (*Registry, error) {
	r := NewRegistry(NewLocalHandler(llm.NewLocalCompleter(engine)))
	for id, cfg := range remotes {
		completer, err := llm.NewRemoteCompleter(id, cfg)
		if err != nil {
			return nil, err
		}
		r.Register(NewRemoteHandler(id, completer))
	}
	return r, nil
}

// Register adds h, replacing any handler with the same id.
func (r *Registry) Register(h Handler) {
	r.handlers[h.ID()] = h
}

// Resolve returns the handler for id.
func (r *Registry) Resolve(id string) (Handler, error) {
	h, ok := r.handlers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedProvider, id)
	}
	return h, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

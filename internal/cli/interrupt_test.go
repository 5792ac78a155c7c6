package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		wantMessage string
		nilWriter   bool
	}{
		{name: "custom message", message: "Chat interrupted!", wantMessage: "Chat interrupted!"},
		{name: "default message", wantMessage: "Interrupted"},
		{name: "nil writer", nilWriter: true, message: "x", wantMessage: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w *bytes.Buffer
			if !tt.nilWriter {
				w = &bytes.Buffer{}
			}
			var handler *InterruptHandler
			if w == nil {
				handler = NewInterruptHandler(nil, tt.message)
			} else {
				handler = NewInterruptHandler(w, tt.message)
			}
			assert.NotNil(t, handler.writer)
			assert.Equal(t, tt.wantMessage, handler.message)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestHandleInterrupts_ParentCancelIsNotInterrupt(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Chat interrupted!")

	parent, cancel := context.WithCancel(context.Background())
	ctx := handler.HandleInterrupts(parent)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("derived context should follow its parent")
	}

	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}

func TestInterrupt_MessageShownOnce(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Chat interrupted!")

	handler.interrupt()
	handler.interrupt()

	assert.True(t, handler.WasInterrupted())
	out := output.String()
	assert.Equal(t, 1, strings.Count(out, "Chat interrupted!"))
	assert.Contains(t, out, "See you later!")
}

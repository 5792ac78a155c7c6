package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/penny/internal/common"
)

// Chat loop commands.
const (
	ChatCommand = "/chat"
	QuitCommand = "/quit"
	ExitCommand = "/exit"
)

// Session answers chat messages. Turn routes by intent, Chat is plain conversation.
type Session interface {
	Turn(ctx context.Context, text string) (string, error)
	Chat(ctx context.Context, text string) (string, error)
}

// RunChat reads messages from in until EOF, a quit command, or cancellation,
// and writes each reply to out. Turn errors are shown and the loop continues.
func RunChat(ctx context.Context, session Session, in io.Reader, out io.Writer) error {
	reader := NewLineReader(in)

	if _, err := fmt.Fprintln(out, FormatTitle("penny")+"\n"+SubtleStyle.Render("Tell me what you spent or ask about your spending. /chat <text> to just talk, /quit to leave.")); err != nil {
		return err
	}

	for {
		if _, err := fmt.Fprint(out, FormatPrompt("you")); err != nil {
			return err
		}

		line, err := reader.ReadLine(ctx)
		switch {
		case errors.Is(err, io.EOF):
			_, _ = fmt.Fprintln(out)
			return nil
		case errors.Is(err, ErrInputCancelled):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		if line == "" {
			continue
		}
		if line == QuitCommand || line == ExitCommand {
			return nil
		}

		reply, err := dispatchLine(ctx, session, line)
		if err != nil {
			reply = FormatError(common.UserMessage(err))
		} else {
			reply = FormatReply(reply)
		}
		if _, err := fmt.Fprintln(out, reply); err != nil {
			return err
		}
	}
}

func dispatchLine(ctx context.Context, session Session, line string) (string, error) {
	if text, ok := ChatText(line); ok {
		return session.Chat(ctx, text)
	}
	return session.Turn(ctx, line)
}

// ChatText reports whether line is a /chat command and returns its message.
func ChatText(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, ChatCommand)
	if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

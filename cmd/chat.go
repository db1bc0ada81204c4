package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/asclepius/internal/repository"
)

// Chat commands handled locally instead of being sent to the model.
const (
	cmdReset = "/reset"
	cmdLast  = "/last"
	cmdQuit  = "/quit"
)

// chatAgent is the part of the agent the chat loop talks to.
type chatAgent interface {
	Run(ctx context.Context, sessionID, message string) (string, error)
	LastAnswer(ctx context.Context, sessionID string) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

// runChat reads one message per line from in and writes the agent answers to out.
// It returns nil at end of input.
func runChat(
	ctx context.Context,
	a chatAgent,
	sessionID string,
	in io.Reader,
	out io.Writer,
	logger *slog.Logger,
) error {
	scanner := bufio.NewScanner(in)
	prompt(out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case cmdQuit:
			return nil
		case cmdReset:
			if err := a.Reset(ctx, sessionID); err != nil {
				logger.ErrorContext(ctx, "Failed to reset session", "session", sessionID, "error", err)
			}
			fmt.Fprintln(out, "Session cleared.")
		case cmdLast:
			answer, err := a.LastAnswer(ctx, sessionID)
			switch {
			case errors.Is(err, repository.ErrStateNotFound):
				fmt.Fprintln(out, "No answer yet.")
			case err != nil:
				logger.ErrorContext(ctx, "Failed to load last answer", "session", sessionID, "error", err)
			default:
				fmt.Fprintln(out, answer)
			}
		default:
			answer, err := a.Run(ctx, sessionID, line)
			if err != nil {
				logger.ErrorContext(ctx, "Agent run failed", "session", sessionID, "error", err)
			}
			if answer != "" {
				fmt.Fprintln(out, answer)
			} else if err != nil {
				fmt.Fprintf(out, "Sorry, something went wrong: %v\n", err)
			}
		}

		prompt(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func prompt(out io.Writer) {
	fmt.Fprint(out, "> ")
}

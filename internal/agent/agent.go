// Package agent drives a Gemini conversation that can call the pharmacy tool
// and keeps the final answer of every session in the state store.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/repository"
	"google.golang.org/genai"
)

const (
	Name         = "maps_agent"
	DefaultModel = "gemini-2.5-flash"
	Description  = "Finds nearby pharmacies for a given address."
	OutputKey    = "pharmacies"

	Instruction = `You are a helpful assistant that finds pharmacies near a location.
When the user gives an address, call find_nearby_pharmacies with that address.
Reply with the list the tool returns, one pharmacy per line.
If the tool returns a message instead of pharmacies, pass that message on to the user.`

	defaultMaxSteps = 5
)

var (
	// ErrMaxStepsExceeded is returned when the model keeps calling tools past the step limit.
	ErrMaxStepsExceeded = errors.New("agent exceeded the maximum number of steps")
	// ErrEmptyResponse is returned when the model answers without any candidate content.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Model generates the next turn of a conversation. *genai.Models satisfies it.
type Model interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Tool is a function the model may call.
type Tool interface {
	Name() string
	Declaration() *genai.FunctionDeclaration
	Invoke(ctx context.Context, args map[string]any) []string
}

// Options tune a single agent.
type Options struct {
	Model    string        // Gemini model name, DefaultModel when empty
	MaxSteps int           // Model turns allowed per user message
	Timeout  time.Duration // Deadline for one user message, none when zero
}

type Agent struct {
	model   Model
	opts    Options
	tools   map[string]Tool
	config  *genai.GenerateContentConfig
	store   repository.Interface
	log     *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	history map[string][]*genai.Content
}

// New creates the maps agent with the given tools.
func New(
	model Model,
	opts Options,
	store repository.Interface,
	log *slog.Logger,
	m *metrics.Metrics,
	tools ...Tool,
) *Agent {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}

	byName := make(map[string]Tool, len(tools))
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
		declarations = append(declarations, t.Declaration())
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(Instruction, genai.RoleUser),
	}
	if len(declarations) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	return &Agent{
		model:   model,
		opts:    opts,
		tools:   byName,
		config:  config,
		store:   store,
		log:     log.With("agent", Name),
		metrics: m,
		history: make(map[string][]*genai.Content),
	}
}

// Run answers one user message within the session. Tool calls requested by
// the model are executed and fed back until it replies with text.
// The answer is stored under OutputKey for the session.
func (a *Agent) Run(ctx context.Context, sessionID, message string) (string, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	contents := append(a.loadHistory(sessionID), genai.NewContentFromText(message, genai.RoleUser))

	for step := range a.opts.MaxSteps {
		resp, err := a.model.GenerateContent(ctx, a.opts.Model, contents, a.config)
		if err != nil {
			a.recordTurn("error")
			return "", fmt.Errorf("failed to generate content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			a.recordTurn("error")
			return "", ErrEmptyResponse
		}
		contents = append(contents, resp.Candidates[0].Content)

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			answer := resp.Text()
			a.storeHistory(sessionID, contents)
			a.recordTurn("success")

			if err = a.store.SaveState(ctx, sessionID, OutputKey, answer); err != nil {
				return answer, fmt.Errorf("failed to save agent output: %w", err)
			}

			return answer, nil
		}

		a.log.DebugContext(ctx, "Model requested tool calls", "session", sessionID, "step", step, "calls", len(calls))

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, a.call(ctx, call))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	a.recordTurn("max_steps")
	a.log.WarnContext(ctx, "Agent gave up", "session", sessionID, "max_steps", a.opts.MaxSteps)

	return "", ErrMaxStepsExceeded
}

// LastAnswer returns the answer stored for the session.
func (a *Agent) LastAnswer(ctx context.Context, sessionID string) (string, error) {
	return a.store.LoadState(ctx, sessionID, OutputKey)
}

// Reset forgets the conversation and the stored state of the session.
func (a *Agent) Reset(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	delete(a.history, sessionID)
	a.mu.Unlock()

	return a.store.DeleteSession(ctx, sessionID)
}

func (a *Agent) call(ctx context.Context, call *genai.FunctionCall) *genai.Part {
	if a.metrics != nil {
		a.metrics.ToolCalls.WithLabelValues(call.Name).Inc()
	}

	var response map[string]any
	if t, ok := a.tools[call.Name]; ok {
		response = map[string]any{"result": t.Invoke(ctx, call.Args)}
	} else {
		a.log.WarnContext(ctx, "Model called an unknown tool", "tool", call.Name)
		response = map[string]any{"error": "unknown tool: " + call.Name}
	}

	part := genai.NewPartFromFunctionResponse(call.Name, response)
	part.FunctionResponse.ID = call.ID

	return part
}

func (a *Agent) loadHistory(sessionID string) []*genai.Content {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]*genai.Content(nil), a.history[sessionID]...)
}

func (a *Agent) storeHistory(sessionID string, contents []*genai.Content) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history[sessionID] = contents
}

func (a *Agent) recordTurn(status string) {
	if a.metrics != nil {
		a.metrics.AgentTurns.WithLabelValues(status).Inc()
	}
}

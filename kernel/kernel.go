// Package kernel implements the voice request pipeline: decode the
// utterance, transcribe it, run the tool-using reasoning loop against the
// session history, and synthesize the final reply.
//
// The kernel initializes from configuration via New, creating all subsystems
// internally. Functional options allow test overrides of any subsystem.
//
//	k, err := kernel.New(&cfg)
//	reply, err := k.HandleRequest(ctx, audioBytes, sessionID)
package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/voicedesk/audio"
	"github.com/tailored-agentic-units/voicedesk/core/protocol"
	"github.com/tailored-agentic-units/voicedesk/decision"
	"github.com/tailored-agentic-units/voicedesk/fault"
	"github.com/tailored-agentic-units/voicedesk/issues"
	"github.com/tailored-agentic-units/voicedesk/observability"
	"github.com/tailored-agentic-units/voicedesk/session"
	"github.com/tailored-agentic-units/voicedesk/speech"
	"github.com/tailored-agentic-units/voicedesk/tools"
)

// apologyReply is spoken when the reasoning budget runs out before the
// provider produces a final answer. The turn still succeeds.
const apologyReply = "I'm sorry, I wasn't able to finish working on that. " +
	"Could you rephrase or break the request into smaller steps?"

// Reply holds the outcome of one voice request.
type Reply struct {
	Audio      []byte           // Synthesized speech for the reply text.
	Text       string           // Final reply text.
	Transcript string           // What the caller was heard to say.
	SessionID  string           // Session the turn was recorded under.
	Iterations int              // Number of reasoning cycles completed.
	ToolCalls  []ToolCallRecord // Log of all tool invocations.
}

type ToolCallRecord struct {
	protocol.ToolCall
	Iteration int    // Reasoning cycle in which the call occurred.
	Result    string // Tool execution output.
	IsError   bool   // Whether execution returned an error.
}

// Option configures a Kernel after config-driven initialization.
// Applied by New after cold start, overrides replace config-created defaults.
type Option func(*Kernel)

// WithProvider overrides the config-created decision provider.
func WithProvider(p decision.Provider) Option {
	return func(k *Kernel) { k.provider = p }
}

// WithTranscriber overrides the config-created transcriber.
func WithTranscriber(t speech.Transcriber) Option {
	return func(k *Kernel) { k.transcriber = t }
}

// WithSynthesizer overrides the config-created synthesizer.
func WithSynthesizer(s speech.Synthesizer) Option {
	return func(k *Kernel) { k.synthesizer = s }
}

// WithSessionStore overrides the config-created session store.
func WithSessionStore(s session.Store) Option {
	return func(k *Kernel) { k.sessions = s }
}

// WithIssueStore overrides the config-created issue store.
func WithIssueStore(s issues.Store) Option {
	return func(k *Kernel) { k.issueStore = s }
}

// WithRegistry overrides the kernel's tool registry.
func WithRegistry(r *tools.Registry) Option {
	return func(k *Kernel) { k.registry = r }
}

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// Kernel is the per-process runtime that executes voice request turns.
type Kernel struct {
	sessions    session.Store
	issueStore  issues.Store
	registry    *tools.Registry
	provider    decision.Provider
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	observer    observability.Observer

	maxIterations int
	historyLimit  int
	systemPrompt  string
}

// New creates a Kernel from configuration. Subsystems (session store, issue
// store, speech clients, decision provider) are initialized from their
// respective config sections. Functional options applied after
// initialization can override any subsystem for testing.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	sessions, err := session.NewStore(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	issueStore, err := issues.NewSQLiteStore(&cfg.Issues)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue store: %w", err)
	}

	k := &Kernel{
		sessions:      sessions,
		issueStore:    issueStore,
		registry:      tools.NewRegistry(),
		provider:      decision.NewChatClient(cfg.Decision),
		transcriber:   speech.NewTranscriber(cfg.Speech.Transcription),
		synthesizer:   speech.NewSynthesizer(cfg.Speech.Synthesis),
		observer:      observability.NoOpObserver{},
		maxIterations: cfg.MaxIterations,
		historyLimit:  cfg.HistoryLimit,
		systemPrompt:  cfg.SystemPrompt,
	}

	for _, opt := range opts {
		opt(k)
	}

	return k, nil
}

// Registry returns the kernel's tool registry.
func (k *Kernel) Registry() *tools.Registry {
	return k.registry
}

// Issues returns the kernel's issue store.
func (k *Kernel) Issues() issues.Store {
	return k.issueStore
}

// Close releases subsystem resources.
func (k *Kernel) Close() error {
	return errors.Join(k.sessions.Close(), k.issueStore.Close())
}

// HandleRequest executes one voice turn: decode and transcribe the
// utterance, record it under the resolved session, run the reasoning loop,
// and synthesize the reply. Audio that cannot be decoded or transcribed
// fails before any session state is touched. Tool failures are fed back to
// the provider rather than surfaced; an exhausted iteration budget degrades
// to an apology reply.
func (k *Kernel) HandleRequest(ctx context.Context, rawAudio []byte, sessionID string) (*Reply, error) {
	k.emit(ctx, EventRequestStart, observability.LevelInfo, map[string]any{
		"audio_bytes": len(rawAudio),
		"session_id":  sessionID,
	})

	if len(rawAudio) == 0 {
		return nil, fault.New(fault.KindInput, fault.CodeEmptyAudio, "request carries no audio")
	}

	clip, err := audio.Decode(rawAudio)
	if err != nil {
		return nil, decodeFault(err)
	}

	transcript, err := k.transcriber.Transcribe(ctx, clip)
	if err != nil {
		return nil, fault.Wrap(fault.KindAdapter, fault.CodeTranscriptionFailed, "could not transcribe audio", err)
	}

	k.emit(ctx, EventTranscription, observability.LevelVerbose, map[string]any{
		"text_length": len(transcript.Text),
		"language":    transcript.Language,
		"confidence":  transcript.Confidence,
	})

	id, err := k.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not resolve session", err)
	}

	release, err := k.sessions.Acquire(ctx, id)
	if err != nil {
		return nil, fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not lock session", err)
	}
	defer release()

	if err := k.sessions.Append(ctx, id, protocol.NewMessage(protocol.RoleUser, transcript.Text)); err != nil {
		return nil, fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not record utterance", err)
	}

	reply := &Reply{Transcript: transcript.Text, SessionID: id}

	text, err := k.reason(ctx, id, reply)
	if err != nil {
		return nil, err
	}
	reply.Text = text

	speechBytes, err := k.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, fault.Wrap(fault.KindAdapter, fault.CodeSynthesisFailed, "could not synthesize reply", err)
	}
	reply.Audio = speechBytes

	k.emit(ctx, EventRequestComplete, observability.LevelInfo, map[string]any{
		"session_id":   id,
		"iterations":   reply.Iterations,
		"reply_length": len(text),
	})

	return reply, nil
}

// reason runs the bounded decide/act loop. The final assistant text is
// appended to the session before returning, including the degraded apology
// on budget exhaustion.
func (k *Kernel) reason(ctx context.Context, id string, reply *Reply) (string, error) {
	specs := k.registry.Specs()

	for iteration := 0; iteration < k.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", fault.Wrap(fault.KindInternal, fault.CodeInternal, "request cancelled", err)
		}

		k.emit(ctx, EventIterationStart, observability.LevelVerbose, map[string]any{
			"session_id": id,
			"iteration":  iteration + 1,
		})

		messages, err := k.buildMessages(ctx, id)
		if err != nil {
			return "", fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not load history", err)
		}

		dec, err := k.provider.Decide(ctx, messages, specs)
		if err != nil {
			return "", providerFault(err)
		}

		reply.Iterations = iteration + 1

		if dec.Kind == decision.KindRespond {
			if err := k.sessions.Append(ctx, id, protocol.NewMessage(protocol.RoleAssistant, dec.Reply)); err != nil {
				return "", fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not record reply", err)
			}

			k.emit(ctx, EventResponse, observability.LevelInfo, map[string]any{
				"session_id":   id,
				"iteration":    iteration + 1,
				"reply_length": len(dec.Reply),
			})
			return dec.Reply, nil
		}

		if err := k.sessions.Append(ctx, id, protocol.Message{
			Role:      protocol.RoleAssistant,
			ToolCalls: dec.Calls,
		}); err != nil {
			return "", fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not record tool calls", err)
		}

		if err := k.actOn(ctx, id, dec.Calls, iteration+1, reply); err != nil {
			return "", err
		}
	}

	// Budget exhausted. Close the turn with an apology rather than an
	// error so the caller still hears a reply.
	k.emit(ctx, EventBudgetExhausted, observability.LevelWarning, map[string]any{
		"session_id": id,
		"iterations": k.maxIterations,
	})

	if err := k.sessions.Append(ctx, id, protocol.NewMessage(protocol.RoleAssistant, apologyReply)); err != nil {
		return "", fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not record reply", err)
	}
	return apologyReply, nil
}

// actOn executes the requested tool calls, feeding each outcome back into
// the session as a tool message. Execution failures become error content
// for the provider's next turn, never request failures.
func (k *Kernel) actOn(ctx context.Context, id string, calls []protocol.ToolCall, iteration int, reply *Reply) error {
	for _, call := range calls {
		k.emit(ctx, EventToolCall, observability.LevelVerbose, map[string]any{
			"session_id": id,
			"iteration":  iteration,
			"name":       call.Name,
		})

		record := ToolCallRecord{ToolCall: call, Iteration: iteration}

		result, err := k.registry.Invoke(ctx, call.Name, json.RawMessage(call.Arguments))
		if err != nil {
			record.Result = fmt.Sprintf("error: %s", err)
			record.IsError = true
		} else {
			record.Result = result.Content
			record.IsError = result.IsError
		}

		if err := k.sessions.Append(ctx, id, protocol.Message{
			Role:       protocol.RoleTool,
			Content:    record.Result,
			ToolCallID: call.ID,
		}); err != nil {
			return fault.Wrap(fault.KindInternal, fault.CodeInternal, "could not record tool result", err)
		}

		k.emit(ctx, EventToolComplete, observability.LevelVerbose, map[string]any{
			"session_id": id,
			"iteration":  iteration,
			"name":       call.Name,
			"error":      record.IsError,
		})

		reply.ToolCalls = append(reply.ToolCalls, record)
	}
	return nil
}

func (k *Kernel) buildMessages(ctx context.Context, id string) ([]protocol.Message, error) {
	history, err := k.sessions.History(ctx, id, k.historyLimit)
	if err != nil {
		return nil, err
	}

	if k.systemPrompt == "" {
		return history, nil
	}

	messages := make([]protocol.Message, 0, len(history)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, k.systemPrompt))
	messages = append(messages, history...)
	return messages, nil
}

func (k *Kernel) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	k.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "kernel.HandleRequest",
		Data:      data,
	})
}

func decodeFault(err error) error {
	switch {
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return fault.Wrap(fault.KindInput, fault.CodeUnsupportedFormat, "audio format is not supported", err)
	default:
		return fault.Wrap(fault.KindInput, fault.CodeDecodeError, "audio could not be decoded", err)
	}
}

func providerFault(err error) error {
	if errors.Is(err, decision.ErrTimeout) {
		return fault.Wrap(fault.KindProvider, fault.CodeProviderTimeout, "decision provider timed out", err)
	}
	return fault.Wrap(fault.KindProvider, fault.CodeProviderUnavailable, "decision provider failed", err)
}

// Package tools holds the registry of capabilities the assistant may invoke
// during a conversation. Each tool pairs a JSON Schema contract with a
// handler; arguments are validated against the schema before the handler
// runs.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/voicedesk/core/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments that have
// already passed schema validation.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool execution output that feeds back into the next model
// turn. IsError signals to the model that the tool invocation failed.
type Result struct {
	Content string
	IsError bool
}

type entry struct {
	tool    protocol.Tool
	schema  *gojsonschema.Schema
	handler Handler
}

// Registry holds a set of named tools. Each assistant instance owns its own
// Registry, so two instances can expose different capabilities.
// Thread-safe for concurrent use.
type Registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a new tool. The tool's Parameters must be a valid JSON
// Schema; it is compiled once here and reused for every invocation.
// Returns ErrAlreadyExists if a tool with the same name is already
// registered.
func (r *Registry) Register(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	schema, err := compileSchema(tool.Parameters)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, schema: schema, handler: handler}
	return nil
}

// Replace updates an existing tool's definition and handler.
// Returns ErrNotFound if no tool with the given name is registered.
func (r *Registry) Replace(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	schema, err := compileSchema(tool.Parameters)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, schema: schema, handler: handler}
	return nil
}

// Get retrieves a handler by tool name.
// Returns the handler and true if found, nil and false otherwise.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// Specs returns the definitions of all registered tools sorted by name, the
// order they are advertised to the model.
func (r *Registry) Specs() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]protocol.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		specs = append(specs, e.tool)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Invoke validates args against the tool's schema and dispatches to its
// handler. Returns ErrNotFound if the tool is not registered and
// ErrSchemaMismatch if the arguments fail validation. Handler errors are
// wrapped with the tool name for context.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	if e.schema != nil {
		outcome, err := e.schema.Validate(gojsonschema.NewBytesLoader(args))
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", ErrSchemaMismatch, name, err)
		}
		if !outcome.Valid() {
			return Result{}, fmt.Errorf("%w: %s: %s", ErrSchemaMismatch, name, validationDetail(outcome))
		}
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}

	return result, nil
}

func compileSchema(parameters map[string]any) (*gojsonschema.Schema, error) {
	if parameters == nil {
		return nil, nil
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(parameters))
}

func validationDetail(outcome *gojsonschema.Result) string {
	detail := ""
	for i, e := range outcome.Errors() {
		if i > 0 {
			detail += "; "
		}
		detail += e.String()
	}
	return detail
}

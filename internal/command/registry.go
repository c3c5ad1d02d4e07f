// Package command maps named platform interactions onto workflow
// operations through an explicit registry. Handlers are plain values
// registered at startup; dispatch by name is the only lookup path.
package command

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gabriel-reiss/guildtickets/internal/domain"
	apperrors "github.com/gabriel-reiss/guildtickets/pkg/util"
)

// Request is one invocation of a named command.
type Request struct {
	GuildID   string
	ChannelID string
	Actor     domain.Actor
	// Args carries the command's named options as raw strings.
	Args map[string]string
}

// Arg returns the named option or "".
func (r Request) Arg(name string) string {
	return r.Args[name]
}

// Response is what the gateway relays back to the invoker.
type Response struct {
	Content string
	// Private responses are shown only to the invoker.
	Private bool
}

// Command executes one named interaction.
type Command interface {
	Name() string
	Execute(ctx context.Context, req Request) (Response, error)
}

// Registry holds the command set.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Registering the same name twice is a wiring
// mistake and fails loudly.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := cmd.Name()
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %q registered twice", name)
	}
	r.commands[name] = cmd
	return nil
}

// Dispatch routes the request to the named command.
func (r *Registry) Dispatch(ctx context.Context, name string, req Request) (Response, error) {
	r.mu.RLock()
	cmd, ok := r.commands[name]
	r.mu.RUnlock()
	if !ok {
		return Response{}, apperrors.NewNotFound("command", map[string]any{"name": name})
	}
	return cmd.Execute(ctx, req)
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

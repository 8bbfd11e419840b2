// Package registry maps command names and component prefixes to handlers.
// Each entry carries its own permission requirements and option schema, which
// the dispatcher evaluates the same way for every command.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"cerealbot/bot/common"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrDuplicateCommand is returned when a command name is registered twice
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrCommandNotFound is returned when resolving an unknown command
	ErrCommandNotFound = errors.New("command not found")
	// ErrDuplicateComponent is returned when a component prefix is registered twice
	ErrDuplicateComponent = errors.New("duplicate component handler")
	// ErrComponentNotFound is returned when no handler owns a custom id
	ErrComponentNotFound = errors.New("component handler not found")
)

// ComponentSeparator splits a component custom id into prefix and payload, e.g. "tod:<session>:truth"
const ComponentSeparator = ":"

// Handler runs one command or component interaction
type Handler func(ctx context.Context, inv *common.Invocation) error

// Permissions are the requirements checked before a handler runs
type Permissions struct {
	// User is the permission bitset the invoking member must hold
	User int64
	// Bot is the permission bitset the bot must hold in the channel
	Bot int64
	// OwnerOnly restricts the command to configured bot owners
	OwnerOnly bool
	// GuildOnly rejects invocations from DMs
	GuildOnly bool
}

// Command is one registry entry
type Command struct {
	Definition  *discordgo.ApplicationCommand
	Handler     Handler
	Permissions Permissions
	// NoCooldown exempts the command from the per-user cooldown
	NoCooldown bool
	// Text also accepts the command as a prefixed text message, e.g. "!remind 10m stretch"
	Text bool
	// Aliases are extra text names; slash commands only know the definition name
	Aliases []string
}

func (c *Command) Name() string {
	return c.Definition.Name
}

// Registry is safe for concurrent use; registration normally happens once at startup
type Registry struct {
	mu         sync.RWMutex
	commands   map[string]*Command
	aliases    map[string]string
	order      []string
	components map[string]Handler
}

func New() *Registry {
	return &Registry{
		commands:   make(map[string]*Command),
		aliases:    make(map[string]string),
		components: make(map[string]Handler),
	}
}

// Register adds a command. Commands with user permission requirements also
// advertise them to the platform so the command is hidden from members who lack them.
func (r *Registry) Register(cmd Command) error {
	if cmd.Definition == nil || cmd.Definition.Name == "" {
		return errors.New("command definition requires a name")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %q has no handler", cmd.Definition.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := cmd.Definition.Name
	if r.taken(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	for i, alias := range cmd.Aliases {
		if alias == name || r.taken(alias) || slices.Contains(cmd.Aliases[:i], alias) {
			return fmt.Errorf("%w: alias %s", ErrDuplicateCommand, alias)
		}
	}

	if cmd.Permissions.User != 0 && cmd.Definition.DefaultMemberPermissions == nil {
		perms := cmd.Permissions.User
		cmd.Definition.DefaultMemberPermissions = &perms
	}
	if cmd.Permissions.GuildOnly && cmd.Definition.Contexts == nil {
		contexts := []discordgo.InteractionContextType{discordgo.InteractionContextGuild}
		cmd.Definition.Contexts = &contexts
	}

	c := cmd
	r.commands[name] = &c
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = name
	}
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) taken(name string) bool {
	_, cmd := r.commands[name]
	_, alias := r.aliases[name]
	return cmd || alias
}

// MustRegister registers every command and panics on the first failure.
// Used at startup where a duplicate is a programming error.
func (r *Registry) MustRegister(cmds ...Command) {
	for _, c := range cmds {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Resolve looks a command up by name or alias
func (r *Registry) Resolve(name string) (*Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return cmd, nil
}

// Commands returns the entries in registration order
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Definitions returns the platform definitions in registration order, ready for a bulk overwrite
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	cmds := r.Commands()
	defs := make([]*discordgo.ApplicationCommand, len(cmds))
	for i, c := range cmds {
		defs[i] = c.Definition
	}
	return defs
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// RegisterComponent routes every custom id starting with prefix + ComponentSeparator to h
func (r *Registry) RegisterComponent(prefix string, h Handler) error {
	if prefix == "" || strings.Contains(prefix, ComponentSeparator) {
		return fmt.Errorf("invalid component prefix %q", prefix)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[prefix]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, prefix)
	}
	r.components[prefix] = h
	return nil
}

// ResolveComponent finds the handler owning customID
func (r *Registry) ResolveComponent(customID string) (Handler, error) {
	prefix, _, _ := strings.Cut(customID, ComponentSeparator)

	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.components[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, customID)
	}
	return h, nil
}

// ComponentID joins a prefix and payload parts into a custom id
func ComponentID(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ComponentSeparator)
}

// ComponentParts splits a custom id into its payload parts, dropping the prefix
func ComponentParts(customID string) []string {
	parts := strings.Split(customID, ComponentSeparator)
	return parts[1:]
}

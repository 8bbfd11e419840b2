package registry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// ErrInvalidArguments is the sentinel behind every ValidationError
var ErrInvalidArguments = errors.New("invalid arguments")

// ValidationError names the option that failed and why
type ValidationError struct {
	Option string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid arguments: %s", e.Reason)
	}
	return fmt.Sprintf("invalid arguments: %s %s", e.Option, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArguments
}

func invalid(option, format string, args ...any) error {
	return &ValidationError{Option: option, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the options of an invocation against the command definition:
// subcommand path, unknown options, required options, value types, numeric
// bounds, string lengths and fixed choices.
func Validate(def *discordgo.ApplicationCommand, data discordgo.ApplicationCommandInteractionData) error {
	return validateOptions(def.Options, data.Options)
}

func validateOptions(schema []*discordgo.ApplicationCommandOption, given []*discordgo.ApplicationCommandInteractionDataOption) error {
	byName := make(map[string]*discordgo.ApplicationCommandOption, len(schema))
	hasSubcommands := false
	for _, s := range schema {
		byName[s.Name] = s
		if isSubcommand(s.Type) {
			hasSubcommands = true
		}
	}

	if hasSubcommands {
		if len(given) != 1 || !isSubcommand(given[0].Type) {
			return invalid("", "a subcommand is required")
		}
		s, ok := byName[given[0].Name]
		if !ok || s.Type != given[0].Type {
			return invalid(given[0].Name, "is not a known subcommand")
		}
		return validateOptions(s.Options, given[0].Options)
	}

	seen := make(map[string]bool, len(given))
	for _, g := range given {
		s, ok := byName[g.Name]
		if !ok {
			return invalid(g.Name, "is not a known option")
		}
		if s.Type != g.Type {
			return invalid(g.Name, "has the wrong type")
		}
		if seen[g.Name] {
			return invalid(g.Name, "was given twice")
		}
		seen[g.Name] = true

		if err := validateValue(s, g); err != nil {
			return err
		}
	}

	for _, s := range schema {
		if s.Required && !seen[s.Name] {
			return invalid(s.Name, "is required")
		}
	}
	return nil
}

func isSubcommand(t discordgo.ApplicationCommandOptionType) bool {
	return t == discordgo.ApplicationCommandOptionSubCommand || t == discordgo.ApplicationCommandOptionSubCommandGroup
}

func validateValue(s *discordgo.ApplicationCommandOption, g *discordgo.ApplicationCommandInteractionDataOption) error {
	switch s.Type {
	case discordgo.ApplicationCommandOptionString:
		v, ok := g.Value.(string)
		if !ok {
			return invalid(s.Name, "must be text")
		}
		n := utf8.RuneCountInString(v)
		if s.MinLength != nil && n < *s.MinLength {
			return invalid(s.Name, "must be at least %d characters", *s.MinLength)
		}
		if s.MaxLength > 0 && n > s.MaxLength {
			return invalid(s.Name, "must be at most %d characters", s.MaxLength)
		}
		return checkChoice(s, v)

	case discordgo.ApplicationCommandOptionInteger, discordgo.ApplicationCommandOptionNumber:
		v, ok := g.Value.(float64)
		if !ok {
			return invalid(s.Name, "must be a number")
		}
		if s.Type == discordgo.ApplicationCommandOptionInteger && v != math.Trunc(v) {
			return invalid(s.Name, "must be a whole number")
		}
		if s.MinValue != nil && v < *s.MinValue {
			return invalid(s.Name, "must be at least %s", formatFloat(*s.MinValue))
		}
		// A zero MaxValue is indistinguishable from unset
		if s.MaxValue != 0 && v > s.MaxValue {
			return invalid(s.Name, "must be at most %s", formatFloat(s.MaxValue))
		}
		return checkChoice(s, v)

	case discordgo.ApplicationCommandOptionBoolean:
		if _, ok := g.Value.(bool); !ok {
			return invalid(s.Name, "must be true or false")
		}

	case discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionMentionable:
		v, ok := g.Value.(string)
		if !ok {
			return invalid(s.Name, "must be a mention")
		}
		if _, err := strconv.ParseUint(v, 10, 64); err != nil {
			return invalid(s.Name, "must be a mention")
		}
	}
	return nil
}

func checkChoice(s *discordgo.ApplicationCommandOption, v any) error {
	if len(s.Choices) == 0 {
		return nil
	}
	want := fmt.Sprint(v)
	for _, c := range s.Choices {
		if fmt.Sprint(c.Value) == want {
			return nil
		}
	}
	return invalid(s.Name, "must be one of the listed choices")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

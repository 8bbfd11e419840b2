package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Options indexes the flattened options of one invocation by name. The
// accessors never panic on a missing or mistyped option; they return the
// fallback instead.
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// NewOptions indexes a flat option list
func NewOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) Options {
	m := make(Options, len(opts))
	for _, o := range opts {
		if o != nil {
			m[o.Name] = o
		}
	}
	return m
}

func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

func (o Options) String(name, fallback string) string {
	opt, ok := o[name]
	if !ok {
		return fallback
	}
	if v, ok := opt.Value.(string); ok {
		return v
	}
	return fallback
}

func (o Options) Int(name string, fallback int64) int64 {
	opt, ok := o[name]
	if !ok {
		return fallback
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func (o Options) Bool(name string, fallback bool) bool {
	opt, ok := o[name]
	if !ok {
		return fallback
	}
	if v, ok := opt.Value.(bool); ok {
		return v
	}
	return fallback
}

// Snowflake returns the id carried by a user, channel, role or mentionable option
func (o Options) Snowflake(name string) string {
	return o.String(name, "")
}

// Bound returns a pointer for the MinValue of an option definition
func Bound(v float64) *float64 {
	return &v
}

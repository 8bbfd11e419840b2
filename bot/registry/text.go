package registry

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// SplitTextCommand splits "<prefix>name args" into a lowercased name and the raw
// argument text. ok is false when content does not start with the prefix followed
// directly by a name.
func SplitTextCommand(content, prefix string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := content[len(prefix):]
	if rest == "" || unicode.IsSpace(rune(rest[0])) {
		return "", "", false
	}
	name, args = nextArg(rest)
	return strings.ToLower(name), args, true
}

// ParseText turns the arguments of a text command into interaction options so
// they can go through Validate like a slash command. Arguments fill the options
// in declaration order and may be double quoted. A trailing string option takes
// the rest of the text as written.
func ParseText(def *discordgo.ApplicationCommand, args string) ([]*discordgo.ApplicationCommandInteractionDataOption, error) {
	return parseText(def.Options, strings.TrimSpace(args))
}

func parseText(schema []*discordgo.ApplicationCommandOption, rest string) ([]*discordgo.ApplicationCommandInteractionDataOption, error) {
	if len(schema) > 0 && isSubcommand(schema[0].Type) {
		word, remainder := nextArg(rest)
		if word == "" {
			return nil, invalid("", "a subcommand is required")
		}
		for _, s := range schema {
			if !isSubcommand(s.Type) || !strings.EqualFold(s.Name, word) {
				continue
			}
			opts, err := parseText(s.Options, remainder)
			if err != nil {
				return nil, err
			}
			return []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: s.Name, Type: s.Type, Options: opts},
			}, nil
		}
		return nil, invalid(word, "is not a known subcommand")
	}

	var opts []*discordgo.ApplicationCommandInteractionDataOption
	for i, s := range schema {
		if rest == "" {
			break
		}

		var raw string
		if i == len(schema)-1 && s.Type == discordgo.ApplicationCommandOptionString {
			raw, rest = remainder(rest), ""
		} else {
			raw, rest = nextArg(rest)
		}

		value, err := convertArg(s, raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, &discordgo.ApplicationCommandInteractionDataOption{
			Name:  s.Name,
			Type:  s.Type,
			Value: value,
		})
	}

	if rest != "" {
		return nil, invalid("", "too many arguments")
	}
	return opts, nil
}

// nextArg cuts the first whitespace separated or double quoted word off s
func nextArg(s string) (arg, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", ""
	}

	if s[0] == '"' {
		end := strings.IndexByte(s[1:], '"')
		if end < 0 {
			return s[1:], ""
		}
		return s[1 : end+1], strings.TrimLeftFunc(s[end+2:], unicode.IsSpace)
	}

	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimLeftFunc(s[end:], unicode.IsSpace)
}

// remainder is the rest of the text, unquoted only when it is one quoted word
func remainder(s string) string {
	if strings.HasPrefix(s, `"`) {
		if arg, rest := nextArg(s); rest == "" {
			return arg
		}
	}
	return s
}

func convertArg(s *discordgo.ApplicationCommandOption, raw string) (any, error) {
	switch s.Type {
	case discordgo.ApplicationCommandOptionString:
		return raw, nil

	case discordgo.ApplicationCommandOptionInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, invalid(s.Name, "must be a whole number")
		}
		return float64(n), nil

	case discordgo.ApplicationCommandOptionNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid(s.Name, "must be a number")
		}
		return f, nil

	case discordgo.ApplicationCommandOptionBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "on", "1", "enable":
			return true, nil
		case "false", "no", "n", "off", "0", "disable":
			return false, nil
		}
		return nil, invalid(s.Name, "must be true or false")

	case discordgo.ApplicationCommandOptionUser:
		return mentionID(s, raw, "@!", "@")
	case discordgo.ApplicationCommandOptionChannel:
		return mentionID(s, raw, "#")
	case discordgo.ApplicationCommandOptionRole:
		return mentionID(s, raw, "@&")
	case discordgo.ApplicationCommandOptionMentionable:
		return mentionID(s, raw, "@&", "@!", "@")
	}
	return nil, invalid(s.Name, "cannot be given in a text command")
}

// mentionID accepts a raw id or a <@id>, <#id> or <@&id> style mention
func mentionID(s *discordgo.ApplicationCommandOption, raw string, sigils ...string) (string, error) {
	id := raw
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		inner := raw[1 : len(raw)-1]
		for _, sigil := range sigils {
			if strings.HasPrefix(inner, sigil) {
				id = inner[len(sigil):]
				break
			}
		}
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", invalid(s.Name, "must be a mention")
	}
	return id, nil
}

package common

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// NewEmbed builds an embed with the footer every command uses
func NewEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       Truncate(title, MaxEmbedTitle),
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// SuccessEmbed creates a green embed
func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return NewEmbed("✅ "+title, description, ColorSuccess)
}

// ErrorEmbed creates a red embed
func ErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return NewEmbed("❌ "+title, description, ColorDanger)
}

// AddField appends an embed field
func AddField(embed *discordgo.MessageEmbed, name, value string, inline bool) {
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})
}

// SendDM opens a DM channel and sends content. Callers treat DMs as best-effort.
func SendDM(s Session, userID string, data *discordgo.MessageSend) error {
	ch, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := s.ChannelMessageSendComplex(ch.ID, data); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

// TrySendDM is SendDM with the error logged and swallowed
func TrySendDM(s Session, userID string, data *discordgo.MessageSend) bool {
	if err := SendDM(s, userID, data); err != nil {
		log.WithFields(log.Fields{
			"userID": userID,
			"error":  err,
		}).Debug("Could not DM user")
		return false
	}
	return true
}

// Button builds a single button
func Button(label, customID string, style discordgo.ButtonStyle, emoji string) discordgo.Button {
	b := discordgo.Button{
		Label:    label,
		Style:    style,
		CustomID: customID,
	}
	if emoji != "" {
		b.Emoji = &discordgo.ComponentEmoji{Name: emoji}
	}
	return b
}

// ButtonRows lays buttons out into action rows of at most MaxButtonsPerRow
func ButtonRows(buttons ...discordgo.Button) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons) && len(rows) < MaxActionRows; start += MaxButtonsPerRow {
		end := min(start+MaxButtonsPerRow, len(buttons))
		row := discordgo.ActionsRow{}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, b)
		}
		rows = append(rows, row)
	}
	return rows
}

// DisableComponents returns a copy of the rows with every button and select menu disabled
func DisableComponents(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	disabled := make([]discordgo.MessageComponent, len(components))

	for i, component := range components {
		var row *discordgo.ActionsRow
		switch r := component.(type) {
		case *discordgo.ActionsRow:
			row = r
		case discordgo.ActionsRow:
			row = &r
		default:
			disabled[i] = component
			continue
		}

		newRow := discordgo.ActionsRow{
			Components: make([]discordgo.MessageComponent, len(row.Components)),
		}
		for j, comp := range row.Components {
			switch c := comp.(type) {
			case *discordgo.Button:
				b := *c
				b.Disabled = true
				newRow.Components[j] = b
			case discordgo.Button:
				c.Disabled = true
				newRow.Components[j] = c
			case *discordgo.SelectMenu:
				m := *c
				m.Disabled = true
				newRow.Components[j] = m
			case discordgo.SelectMenu:
				c.Disabled = true
				newRow.Components[j] = c
			default:
				newRow.Components[j] = comp
			}
		}
		disabled[i] = newRow
	}

	return disabled
}

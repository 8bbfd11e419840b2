package common

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrAlreadyResponded is returned when a handler tries to send a second initial response
	ErrAlreadyResponded = errors.New("interaction already responded to")
	// ErrNoResponse is returned when a text command has not sent its reply yet
	ErrNoResponse = errors.New("no response message")
)

// Invocation is one slash command or component interaction as seen by a handler.
// It allows exactly one initial response; edits and followups are unrestricted.
// Text commands arrive as an Invocation too, with responses posted as replies
// to the triggering message.
type Invocation struct {
	Session     Session
	Interaction *discordgo.Interaction

	// Name is the top-level command name, empty for component interactions
	Name string
	// Subcommand is the "group subcommand" or "subcommand" path, empty when the command has none
	Subcommand string
	Options    Options

	// CustomID is set for component interactions
	CustomID string
	// Values holds select menu choices
	Values []string

	// trigger is the message of a text command, nil for interactions
	trigger *discordgo.Message
	sent    atomic.Pointer[discordgo.Message]

	responded atomic.Bool
	deferred  atomic.Bool
}

// NewInvocation flattens subcommand groups and subcommands into Subcommand and Options
func NewInvocation(s Session, i *discordgo.Interaction) *Invocation {
	inv := &Invocation{Session: s, Interaction: i, Options: Options{}}

	switch i.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
		data := i.ApplicationCommandData()
		inv.Name = data.Name
		opts := data.Options
		for len(opts) == 1 && isSubcommand(opts[0].Type) {
			if inv.Subcommand == "" {
				inv.Subcommand = opts[0].Name
			} else {
				inv.Subcommand += " " + opts[0].Name
			}
			opts = opts[0].Options
		}
		inv.Options = NewOptions(opts)
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		inv.CustomID = data.CustomID
		inv.Values = data.Values
	}
	return inv
}

// NewMessageInvocation wraps a text command. i carries the parsed options and the
// author's permissions in the shape of a slash command interaction.
func NewMessageInvocation(s Session, i *discordgo.Interaction, m *discordgo.Message) *Invocation {
	inv := NewInvocation(s, i)
	inv.trigger = m
	return inv
}

// FromMessage reports whether the command was typed as a prefixed text message
func (inv *Invocation) FromMessage() bool {
	return inv.trigger != nil
}

// DeleteTrigger removes the message that invoked a text command; interactions have none
func (inv *Invocation) DeleteTrigger() error {
	if inv.trigger == nil {
		return nil
	}
	return inv.Session.ChannelMessageDelete(inv.trigger.ChannelID, inv.trigger.ID)
}

func isSubcommand(t discordgo.ApplicationCommandOptionType) bool {
	return t == discordgo.ApplicationCommandOptionSubCommand || t == discordgo.ApplicationCommandOptionSubCommandGroup
}

// User returns the invoking user for both guild and DM interactions
func (inv *Invocation) User() *discordgo.User {
	if inv.Interaction.Member != nil && inv.Interaction.Member.User != nil {
		return inv.Interaction.Member.User
	}
	return inv.Interaction.User
}

func (inv *Invocation) UserID() string {
	if u := inv.User(); u != nil {
		return u.ID
	}
	return ""
}

func (inv *Invocation) GuildID() string {
	return inv.Interaction.GuildID
}

func (inv *Invocation) ChannelID() string {
	return inv.Interaction.ChannelID
}

// ResolvedUser returns the user referenced by a user option, falling back to a stub with only the id
func (inv *Invocation) ResolvedUser(option string) *discordgo.User {
	id := inv.Options.Snowflake(option)
	if id == "" {
		return nil
	}
	if inv.Interaction.Type == discordgo.InteractionApplicationCommand {
		if res := inv.Interaction.ApplicationCommandData().Resolved; res != nil {
			if u, ok := res.Users[id]; ok {
				return u
			}
		}
	}
	return &discordgo.User{ID: id}
}

// ResolvedMember returns the guild member behind a user option, or nil outside a guild
func (inv *Invocation) ResolvedMember(option string) *discordgo.Member {
	id := inv.Options.Snowflake(option)
	if id == "" || inv.Interaction.Type != discordgo.InteractionApplicationCommand {
		return nil
	}
	res := inv.Interaction.ApplicationCommandData().Resolved
	if res == nil {
		return nil
	}
	m, ok := res.Members[id]
	if !ok {
		return nil
	}
	if m.User == nil {
		m.User = res.Users[id]
	}
	return m
}

// Responded reports whether an initial response (including a deferral) was sent
func (inv *Invocation) Responded() bool {
	return inv.responded.Load()
}

func (inv *Invocation) respond(resp *discordgo.InteractionResponse) error {
	if !inv.responded.CompareAndSwap(false, true) {
		return ErrAlreadyResponded
	}
	if inv.trigger != nil {
		return inv.reply(resp)
	}
	if err := inv.Session.InteractionRespond(inv.Interaction, resp); err != nil {
		return err
	}
	return nil
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// Respond sends a plain text response
func (inv *Invocation) Respond(content string, ephemeral bool) error {
	return inv.RespondData(&discordgo.InteractionResponseData{Content: content, Flags: flags(ephemeral)})
}

// RespondEmbed sends an embed with optional components
func (inv *Invocation) RespondEmbed(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  flags(ephemeral),
	}
	if len(components) > 0 {
		data.Components = components
	}
	return inv.RespondData(data)
}

func (inv *Invocation) RespondData(data *discordgo.InteractionResponseData) error {
	return inv.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// Defer acknowledges the interaction so the handler has up to 15 minutes to Edit
func (inv *Invocation) Defer(ephemeral bool) error {
	err := inv.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags(ephemeral)},
	})
	if err == nil {
		inv.deferred.Store(true)
	}
	return err
}

// Update replaces the message a component is attached to
func (inv *Invocation) Update(data *discordgo.InteractionResponseData) error {
	return inv.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

// Acknowledge answers a component interaction without changing anything visible
func (inv *Invocation) Acknowledge() error {
	return inv.respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// reply posts a text command's response in the channel. Ephemeral flags have no
// channel equivalent and are dropped; a deferral sends nothing until the first Edit.
func (inv *Invocation) reply(resp *discordgo.InteractionResponse) error {
	switch resp.Type {
	case discordgo.InteractionResponseChannelMessageWithSource:
	case discordgo.InteractionResponseDeferredChannelMessageWithSource:
		return nil
	default:
		return fmt.Errorf("response type %d is not supported for text commands", resp.Type)
	}

	send := &discordgo.MessageSend{Reference: inv.trigger.SoftReference()}
	if data := resp.Data; data != nil {
		send.Content = data.Content
		send.Embeds = data.Embeds
		send.Components = data.Components
		send.AllowedMentions = data.AllowedMentions
	}
	msg, err := inv.Session.ChannelMessageSendComplex(inv.trigger.ChannelID, send)
	if err != nil {
		return err
	}
	inv.sent.Store(msg)
	return nil
}

// Edit changes the original response
func (inv *Invocation) Edit(edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	if inv.trigger != nil {
		return inv.editReply(edit)
	}
	return inv.Session.InteractionResponseEdit(inv.Interaction, edit)
}

// editReply edits the reply of a text command, sending it first after a deferral
func (inv *Invocation) editReply(edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	if sent := inv.sent.Load(); sent != nil {
		msg, err := inv.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:              sent.ID,
			Channel:         sent.ChannelID,
			Content:         edit.Content,
			Embeds:          edit.Embeds,
			Components:      edit.Components,
			AllowedMentions: edit.AllowedMentions,
		})
		if err != nil {
			return nil, err
		}
		inv.sent.Store(msg)
		return msg, nil
	}

	send := &discordgo.MessageSend{
		Reference:       inv.trigger.SoftReference(),
		AllowedMentions: edit.AllowedMentions,
	}
	if edit.Content != nil {
		send.Content = *edit.Content
	}
	if edit.Embeds != nil {
		send.Embeds = *edit.Embeds
	}
	if edit.Components != nil {
		send.Components = *edit.Components
	}
	msg, err := inv.Session.ChannelMessageSendComplex(inv.trigger.ChannelID, send)
	if err != nil {
		return nil, err
	}
	inv.sent.Store(msg)
	return msg, nil
}

// EditContent replaces the text of the original response
func (inv *Invocation) EditContent(content string) error {
	_, err := inv.Edit(&discordgo.WebhookEdit{Content: &content})
	return err
}

// EditEmbed replaces the original response with a single embed
func (inv *Invocation) EditEmbed(embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := inv.Edit(&discordgo.WebhookEdit{Embeds: &embeds})
	return err
}

// ResponseMessage fetches the message created by the initial response
func (inv *Invocation) ResponseMessage() (*discordgo.Message, error) {
	if inv.trigger != nil {
		if msg := inv.sent.Load(); msg != nil {
			return msg, nil
		}
		return nil, ErrNoResponse
	}
	return inv.Session.InteractionResponse(inv.Interaction)
}

// RespondError reports a failure to the user. Before any response it sends an
// ephemeral message and after a deferral it fills in the placeholder. A handler
// that already answered gets ErrAlreadyResponded.
func (inv *Invocation) RespondError(message string) error {
	if !inv.Responded() {
		return inv.Respond(message, true)
	}
	if inv.deferred.Load() {
		return inv.EditContent(message)
	}
	return ErrAlreadyResponded
}

// ParseID converts a snowflake string into the int64 used by the store
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// IDOrZero is ParseID for ids that came from the gateway; malformed ids become 0
func IDOrZero(id string) int64 {
	n, _ := strconv.ParseInt(id, 10, 64)
	return n
}

// FormatID is the inverse of ParseID
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

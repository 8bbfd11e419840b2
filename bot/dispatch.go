package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"cerealbot/bot/common"
	"cerealbot/bot/registry"
	"cerealbot/metrics"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Event classes
const (
	EventCommand   = "command"
	EventComponent = "component"
	EventMessage   = "message"
	EventOther     = "other"
)

// ClassifyInteraction maps an interaction onto the event class used for routing and metrics
func ClassifyInteraction(i *discordgo.Interaction) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return EventCommand
	case discordgo.InteractionMessageComponent:
		return EventComponent
	default:
		return EventOther
	}
}

// ActivityRecorder is told about every user that successfully ran a command
type ActivityRecorder func(ctx context.Context, user *discordgo.User)

// Dispatcher routes interactions through the registry. Checks always finish
// before the handler is called; handler failures and panics are contained here.
type Dispatcher struct {
	registry *registry.Registry
	cooldown *Cooldown
	metrics  *metrics.Metrics
	isOwner  func(userID string) bool
	activity ActivityRecorder

	inflight sync.WaitGroup
}

func NewDispatcher(reg *registry.Registry, cooldown *Cooldown, m *metrics.Metrics, isOwner func(string) bool, activity ActivityRecorder) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		cooldown: cooldown,
		metrics:  m,
		isOwner:  isOwner,
		activity: activity,
	}
}

// Dispatch handles one interaction on the caller's goroutine
func (d *Dispatcher) Dispatch(ctx context.Context, s common.Session, i *discordgo.Interaction) {
	d.inflight.Add(1)
	defer d.inflight.Done()

	class := ClassifyInteraction(i)
	d.metrics.GatewayEvent(class)

	switch class {
	case EventCommand:
		d.dispatchCommand(ctx, s, i)
	case EventComponent:
		d.dispatchComponent(ctx, s, i)
	}
}

// Wait blocks until every in-flight Dispatch call returned
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, s common.Session, i *discordgo.Interaction) {
	inv := common.NewInvocation(s, i)

	cmd, err := d.registry.Resolve(inv.Name)
	if err != nil {
		// Stale registrations from another deployment land here
		log.WithFields(log.Fields{
			"command": inv.Name,
			"guildID": i.GuildID,
		}).Debug("Ignoring unknown command")
		return
	}

	d.runCommand(ctx, inv, cmd, func() error {
		return registry.Validate(cmd.Definition, i.ApplicationCommandData())
	})
}

// MessagePermissions computes the author's and the bot's permissions in the channel a message was sent to
type MessagePermissions func(m *discordgo.Message) (user, bot int64, err error)

// DispatchMessage runs a registered text command written as "<prefix>name args".
// It reports whether the message named one; anything else is left to the other
// message listeners.
func (d *Dispatcher) DispatchMessage(ctx context.Context, s common.Session, m *discordgo.Message, prefix string, perms MessagePermissions) bool {
	name, args, ok := registry.SplitTextCommand(m.Content, prefix)
	if !ok {
		return false
	}
	cmd, err := d.registry.Resolve(name)
	if err != nil || !cmd.Text {
		return false
	}

	d.inflight.Add(1)
	defer d.inflight.Done()

	var userPerms, botPerms int64
	if m.GuildID != "" && perms != nil {
		userPerms, botPerms, err = perms(m)
		if err != nil {
			log.WithFields(log.Fields{
				"command":   cmd.Name(),
				"guildID":   m.GuildID,
				"channelID": m.ChannelID,
				"error":     err,
			}).Warn("Failed to compute permissions for text command")
		}
	}

	opts, parseErr := registry.ParseText(cmd.Definition, args)
	i := textInteraction(m, cmd.Name(), opts, userPerms, botPerms)
	inv := common.NewMessageInvocation(s, i, m)

	d.runCommand(ctx, inv, cmd, func() error {
		if parseErr != nil {
			return parseErr
		}
		return registry.Validate(cmd.Definition, i.ApplicationCommandData())
	})
	return true
}

// textInteraction presents a text command in the shape of a slash command
// interaction so both share the checks and the handlers
func textInteraction(m *discordgo.Message, name string, opts []*discordgo.ApplicationCommandInteractionDataOption, userPerms, botPerms int64) *discordgo.Interaction {
	i := &discordgo.Interaction{
		ID:             m.ID,
		Type:           discordgo.InteractionApplicationCommand,
		GuildID:        m.GuildID,
		ChannelID:      m.ChannelID,
		AppPermissions: botPerms,
		Data:           discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}
	if m.GuildID == "" {
		i.User = m.Author
		return i
	}

	member := &discordgo.Member{}
	if m.Member != nil {
		copied := *m.Member
		member = &copied
	}
	member.GuildID = m.GuildID
	member.User = m.Author
	member.Permissions = userPerms
	i.Member = member
	return i
}

// runCommand checks permissions, arguments and the cooldown in that order and
// only then calls the handler
func (d *Dispatcher) runCommand(ctx context.Context, inv *common.Invocation, cmd *registry.Command, validate func() error) {
	i := inv.Interaction
	fields := log.Fields{
		"command":    cmd.Name(),
		"subcommand": inv.Subcommand,
		"userID":     inv.UserID(),
		"guildID":    i.GuildID,
		"text":       inv.FromMessage(),
	}

	invoker := registry.InvokerFrom(i, d.isOwner)
	if ok, refusal := registry.CheckPermissions(invoker, cmd); !ok {
		log.WithFields(fields).Info("Command refused: missing permissions")
		d.metrics.ObserveCommand(cmd.Name(), metrics.OutcomeDenied, 0)
		d.reply(inv, refusal)
		return
	}

	if err := validate(); err != nil {
		log.WithFields(fields).WithError(err).Info("Command refused: invalid arguments")
		d.metrics.ObserveCommand(cmd.Name(), metrics.OutcomeInvalid, 0)
		d.reply(inv, invalidArgumentsMessage(err))
		return
	}

	if !cmd.NoCooldown && !invoker.Owner {
		if ok, wait := d.cooldown.Allow(inv.UserID()); !ok {
			d.metrics.ObserveCommand(cmd.Name(), metrics.OutcomeCooldown, 0)
			d.reply(inv, fmt.Sprintf("⏳ Slow down! You can use another command in %.1f seconds.", math.Max(wait.Seconds(), 0.1)))
			return
		}
	}

	if d.run(ctx, inv, cmd.Name(), cmd.Handler, fields) && d.activity != nil {
		if u := inv.User(); u != nil {
			go d.activity(context.WithoutCancel(ctx), u)
		}
	}
}

func (d *Dispatcher) dispatchComponent(ctx context.Context, s common.Session, i *discordgo.Interaction) {
	inv := common.NewInvocation(s, i)

	h, err := d.registry.ResolveComponent(inv.CustomID)
	if err != nil {
		log.WithField("customID", inv.CustomID).Debug("Ignoring component without handler")
		return
	}

	d.run(ctx, inv, "component:"+componentPrefix(inv.CustomID), h, log.Fields{
		"customID": inv.CustomID,
		"userID":   inv.UserID(),
		"guildID":  i.GuildID,
	})
}

// run calls the handler with panic isolation and reports whether it succeeded
func (d *Dispatcher) run(ctx context.Context, inv *common.Invocation, name string, h registry.Handler, fields log.Fields) (ok bool) {
	start := time.Now()
	outcome := metrics.OutcomeOK

	defer func() {
		if r := recover(); r != nil {
			ok = false
			outcome = metrics.OutcomePanic
			d.metrics.HandlerPanic()
			log.WithFields(fields).WithFields(log.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Command handler panicked")
			d.fail(inv, common.MsgGenericError)
		}
		d.metrics.ObserveCommand(name, outcome, time.Since(start))
	}()

	err := h(ctx, inv)
	if err == nil {
		return true
	}

	if common.IsUserError(err) {
		outcome = metrics.OutcomeInvalid
		log.WithFields(fields).WithError(err).Debug("Command rejected input")
	} else {
		outcome = metrics.OutcomeError
		log.WithFields(fields).WithError(err).Error("Command failed")
	}
	d.fail(inv, common.UserMessage(err))
	return false
}

// reply sends a refusal as the single response
func (d *Dispatcher) reply(inv *common.Invocation, message string) {
	if err := inv.Respond(message, true); err != nil {
		log.WithError(err).WithField("command", inv.Name).Warn("Failed to send refusal")
	}
}

func (d *Dispatcher) fail(inv *common.Invocation, message string) {
	err := inv.RespondError(message)
	if err != nil && !errors.Is(err, common.ErrAlreadyResponded) {
		log.WithError(err).WithField("command", inv.Name).Warn("Failed to report command error")
	}
}

func invalidArgumentsMessage(err error) string {
	var ve *registry.ValidationError
	if errors.As(err, &ve) {
		if ve.Option == "" {
			return fmt.Sprintf("%s: %s", common.MsgInvalidArgs, ve.Reason)
		}
		return fmt.Sprintf("%s: `%s` %s", common.MsgInvalidArgs, ve.Option, ve.Reason)
	}
	return common.MsgInvalidArgs
}

func componentPrefix(customID string) string {
	prefix, _, _ := strings.Cut(customID, registry.ComponentSeparator)
	return prefix
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cerealbot/afk"
	"cerealbot/bot/common"
	"cerealbot/bot/features/customcommands"
	"cerealbot/bot/features/fun"
	"cerealbot/bot/features/games"
	"cerealbot/bot/features/giveaways"
	"cerealbot/bot/features/moderation"
	"cerealbot/bot/features/settings"
	"cerealbot/bot/features/utility"
	"cerealbot/bot/registry"
	"cerealbot/events"
	"cerealbot/health"
	"cerealbot/metrics"
	"cerealbot/models"
	"cerealbot/scheduler"
	"cerealbot/service"
	"cerealbot/timezone"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token    string
	GuildID  string // commands are synced to this guild only; empty syncs globally
	OwnerIDs []string
	Prefix   string
	Status   string

	CommandCooldown       time.Duration
	ReminderInterval      time.Duration
	GiveawaySweepInterval time.Duration

	AutoModEnabled bool
	MuteDuration   time.Duration
}

// Services are the domain services the feature modules call into
type Services struct {
	Users          service.UserService
	Guilds         service.GuildService
	Warnings       service.WarningService
	CustomCommands service.CustomCommandService
	Giveaways      service.GiveawayService
}

// Bot manages the gateway session and all feature modules
type Bot struct {
	// Core components
	config   Config
	session  *discordgo.Session
	services Services
	eventBus *events.Bus
	metrics  *metrics.Metrics

	registry   *registry.Registry
	dispatcher *Dispatcher
	syncer     atomic.Pointer[CommandSyncer]
	owners     *owners

	// messagePermissions resolves channel permissions for text commands
	messagePermissions MessagePermissions

	// In-memory state shared between commands and listeners
	reminders *scheduler.Store
	runner    *scheduler.Runner
	afk       *afk.Tracker

	customCommands *customcommands.Feature

	ctx       context.Context
	readyOnce sync.Once
	now       func() time.Time
	after     func(d time.Duration, f func())

	// Worker cleanup functions
	workersMu          sync.Mutex
	closed             bool
	stopGiveawayWorker func()
}

type commandProvider interface {
	Commands() []registry.Command
}

type componentProvider interface {
	Components() map[string]registry.Handler
}

// New creates a new bot instance with all features. The gateway connection is opened by Open.
func New(config Config, services Services, contentSource fun.ContentSource, eventBus *events.Bus, m *metrics.Metrics) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	bot := &Bot{
		config:    config,
		session:   dg,
		services:  services,
		eventBus:  eventBus,
		metrics:   m,
		registry:  registry.New(),
		owners:    newOwners(config.OwnerIDs),
		reminders: scheduler.NewStore(),
		afk:       afk.NewTracker(),
		ctx:       context.Background(),
		now:       time.Now,
		after:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}

	bot.runner = scheduler.NewRunner(bot.reminders, utility.ReminderSender(dg),
		scheduler.WithInterval(config.ReminderInterval),
		scheduler.WithMetrics(m),
	)
	bot.customCommands = customcommands.NewFeature(services.CustomCommands)

	// Create feature modules
	zones := timezone.Default()
	err = bot.registerFeatures(
		moderation.NewFeature(services.Warnings, bot.botID),
		games.NewFeature(),
		fun.NewFeature(contentSource),
		utility.NewFeature(bot.reminders, bot.afk, zones, services.Guilds, dg.HeartbeatLatency),
		bot.customCommands,
		giveaways.NewFeature(services.Giveaways),
		settings.NewFeature(services.Guilds, zones),
	)
	if err != nil {
		return nil, err
	}
	if err := bot.registry.Register(bot.helpCommand()); err != nil {
		return nil, fmt.Errorf("failed to register help command: %w", err)
	}

	bot.dispatcher = NewDispatcher(bot.registry, NewCooldown(config.CommandCooldown), m, bot.owners.Has, bot.recordCommandActivity)
	bot.messagePermissions = bot.statePermissions

	// Register handlers
	dg.AddHandler(bot.onReady)
	dg.AddHandler(bot.onInteractionCreate)
	dg.AddHandler(bot.onMessageCreate)
	dg.AddHandler(bot.onGuildCreate)
	dg.AddHandler(bot.onGuildMemberAdd)
	dg.AddHandler(bot.onGuildMemberUpdate)
	dg.AddHandler(bot.onGuildMemberRemove)

	bot.registerSubscriptions()

	log.WithField("commands", bot.registry.Len()).Info("Feature modules registered")
	return bot, nil
}

// registerFeatures adds every feature's commands and component handlers to the registry
func (b *Bot) registerFeatures(features ...commandProvider) error {
	for _, f := range features {
		for _, cmd := range f.Commands() {
			if err := b.registry.Register(cmd); err != nil {
				return fmt.Errorf("failed to register commands: %w", err)
			}
		}

		c, ok := f.(componentProvider)
		if !ok {
			continue
		}
		for prefix, h := range c.Components() {
			if err := b.registry.RegisterComponent(prefix, h); err != nil {
				return fmt.Errorf("failed to register component handler: %w", err)
			}
		}
	}
	return nil
}

// Open connects to the gateway. Handlers run with ctx until Close.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	// Stop background workers
	b.workersMu.Lock()
	b.closed = true
	if b.stopGiveawayWorker != nil {
		b.stopGiveawayWorker()
		b.stopGiveawayWorker = nil
	}
	b.workersMu.Unlock()
	b.runner.Stop()
	log.Info("Background workers stopped")

	err := b.session.Close()
	b.dispatcher.Wait()
	return err
}

// Status reports live gateway state for the health server
func (b *Bot) Status(_ context.Context) (health.BotStatus, error) {
	b.session.RLock()
	ready := b.session.DataReady
	b.session.RUnlock()

	st := b.session.State
	st.RLock()
	defer st.RUnlock()

	if !ready || st.User == nil {
		return health.BotStatus{}, errors.New("bot is not connected to the gateway")
	}

	status := health.BotStatus{
		BotName: st.User.Username,
		Guilds:  len(st.Guilds),
		Latency: b.session.HeartbeatLatency(),
	}
	for _, g := range st.Guilds {
		status.Users += g.MemberCount
	}
	return status, nil
}

// Registry exposes the command registry, mainly for tests and tooling
func (b *Bot) Registry() *registry.Registry {
	return b.registry
}

func (b *Bot) botID() string {
	st := b.session.State
	st.RLock()
	defer st.RUnlock()
	if st.User == nil {
		return ""
	}
	return st.User.ID
}

// statePermissions reads the author's and the bot's channel permissions from the state cache
func (b *Bot) statePermissions(m *discordgo.Message) (int64, int64, error) {
	st := b.session.State
	user, err := st.MessagePermissions(m)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute member permissions: %w", err)
	}
	self, err := st.UserChannelPermissions(b.botID(), m.ChannelID)
	if err != nil {
		return user, 0, fmt.Errorf("failed to compute bot permissions: %w", err)
	}
	return user, self, nil
}

func (b *Bot) guildIDs() []string {
	st := b.session.State
	st.RLock()
	defer st.RUnlock()

	ids := make([]string, 0, len(st.Guilds))
	for _, g := range st.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.String(),
		"botID":  r.User.ID,
		"guilds": len(r.Guilds),
	}).Info("Cereal Bot is now online! 🥣")

	if err := s.UpdateGameStatus(0, b.config.Status); err != nil {
		log.WithError(err).Warn("Failed to set presence")
	}

	// Reconnects fire Ready again; commands are only synced once per process
	b.readyOnce.Do(func() {
		appID := r.User.ID
		if r.Application != nil && r.Application.ID != "" {
			appID = r.Application.ID
		}
		b.syncer.Store(NewCommandSyncer(s, appID, b.registry.Definitions))
		b.addApplicationOwners(s)
		b.syncCommands(r.Guilds)
	})

	b.startWorkers()
}

// syncCommands registers the commands in guild mode when a guild is configured, otherwise globally
func (b *Bot) syncCommands(guilds []*discordgo.Guild) {
	syncer := b.syncer.Load()

	var err error
	if b.config.GuildID != "" {
		_, err = syncer.SyncGuild(b.config.GuildID)
	} else {
		ids := make([]string, 0, len(guilds))
		for _, g := range guilds {
			ids = append(ids, g.ID)
		}
		_, err = syncer.SyncGlobal(ids)
	}
	if err != nil {
		log.WithError(err).Error("Failed to sync slash commands")
	}
}

// addApplicationOwners lets the application owner (or its team) run owner commands
func (b *Bot) addApplicationOwners(s *discordgo.Session) {
	app, err := s.Application("@me")
	if err != nil {
		log.WithError(err).Warn("Failed to look up application owner")
		return
	}
	if app.Owner != nil {
		b.owners.Add(app.Owner.ID)
	}
	if app.Team != nil {
		for _, member := range app.Team.Members {
			if member.User != nil {
				b.owners.Add(member.User.ID)
			}
		}
	}
}

// startWorkers is safe to call on every Ready
func (b *Bot) startWorkers() {
	b.workersMu.Lock()
	defer b.workersMu.Unlock()
	if b.closed {
		return
	}

	b.runner.Start(b.ctx)
	if b.stopGiveawayWorker == nil {
		b.stopGiveawayWorker = b.StartGiveawayExpiryWorker(b.ctx)
		log.Info("Background workers started")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatcher.Dispatch(b.ctx, s, i.Interaction)
}

func (b *Bot) recordCommandActivity(ctx context.Context, user *discordgo.User) {
	b.recordActivity(ctx, user, models.ActivityCommand)
}

func (b *Bot) recordActivity(ctx context.Context, user *discordgo.User, kind models.ActivityKind) {
	err := b.services.Users.RecordActivity(ctx, common.IDOrZero(user.ID), user.Username, user.Bot, kind)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": user.ID,
			"kind":   kind,
			"error":  err,
		}).Warn("Failed to record user activity")
	}
}

// owners is the set of user ids allowed to run owner commands
type owners struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func newOwners(ids []string) *owners {
	o := &owners{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		o.ids[id] = struct{}{}
	}
	return o
}

func (o *owners) Add(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ids[id] = struct{}{}
}

func (o *owners) Has(id string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.ids[id]
	return ok
}

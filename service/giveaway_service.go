package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"cerealbot/events"
	"cerealbot/models"

	log "github.com/sirupsen/logrus"
)

const (
	maxGiveawayWinners  = 20
	minGiveawayDuration = 10 * time.Second
	maxGiveawayDuration = 30 * 24 * time.Hour
)

// giveawayService implements the GiveawayService interface
type giveawayService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// GiveawayOption customises a giveaway service
type GiveawayOption func(*giveawayService)

// WithGiveawayClock overrides the clock
func WithGiveawayClock(now func() time.Time) GiveawayOption {
	return func(s *giveawayService) { s.now = now }
}

// WithGiveawayRand overrides the winner draw source
func WithGiveawayRand(rng *rand.Rand) GiveawayOption {
	return func(s *giveawayService) { s.rng = rng }
}

// NewGiveawayService creates a new giveaway service
func NewGiveawayService(uowFactory UnitOfWorkFactory, opts ...GiveawayOption) GiveawayService {
	s := &giveawayService{
		uowFactory: uowFactory,
		now:        time.Now,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates an active giveaway
func (s *giveawayService) Start(ctx context.Context, params StartGiveawayParams) (*models.Giveaway, error) {
	params.Prize = strings.TrimSpace(params.Prize)
	if params.Prize == "" {
		return nil, fmt.Errorf("prize is required: %w", ErrInvalidGiveaway)
	}
	if params.WinnerCount < 1 || params.WinnerCount > maxGiveawayWinners {
		return nil, fmt.Errorf("winner count must be between 1 and %d: %w", maxGiveawayWinners, ErrInvalidGiveaway)
	}
	if params.Duration < minGiveawayDuration || params.Duration > maxGiveawayDuration {
		return nil, fmt.Errorf("duration must be between %s and %s: %w", minGiveawayDuration, maxGiveawayDuration, ErrInvalidGiveaway)
	}
	if strings.TrimSpace(params.Title) == "" {
		params.Title = "🎉 Giveaway"
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	giveaway, err := uow.GiveawayRepository().Create(ctx, &models.Giveaway{
		GuildID:     params.GuildID,
		ChannelID:   params.ChannelID,
		Title:       params.Title,
		Description: params.Description,
		Prize:       params.Prize,
		WinnerCount: params.WinnerCount,
		CreatedBy:   params.CreatedBy,
		EndsAt:      s.now().UTC().Add(params.Duration),
		Active:      true,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"giveawayID": giveaway.ID,
		"guildID":    giveaway.GuildID,
		"prize":      giveaway.Prize,
		"endsAt":     giveaway.EndsAt,
	}).Info("Giveaway started")

	return giveaway, nil
}

// AttachMessage records the announcement message so the giveaway can be edited later
func (s *giveawayService) AttachMessage(ctx context.Context, giveawayID, messageID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.GiveawayRepository().SetMessageID(ctx, giveawayID, messageID); err != nil {
		return err
	}
	return uow.Commit()
}

// Join enters the user into an active giveaway that has not reached its end time
func (s *giveawayService) Join(ctx context.Context, giveawayID, userID int64) (JoinResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return JoinResultNotActive, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.GiveawayRepository()
	added, err := repo.AddParticipant(ctx, giveawayID, userID)
	if err != nil {
		return JoinResultNotActive, err
	}

	if !added {
		giveaway, err := repo.GetByID(ctx, giveawayID)
		if err != nil {
			return JoinResultNotActive, err
		}
		switch {
		case giveaway == nil:
			return JoinResultNotActive, ErrGiveawayNotFound
		case giveaway.HasParticipant(userID):
			return JoinResultAlreadyJoined, nil
		default:
			// Ended, or past its end time and waiting for the sweeper
			return JoinResultNotActive, nil
		}
	}

	if err := uow.Commit(); err != nil {
		return JoinResultNotActive, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return JoinResultJoined, nil
}

// End closes an active giveaway and draws its winners
func (s *giveawayService) End(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ended, err := s.endInTx(ctx, uow, giveawayID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ended, nil
}

func (s *giveawayService) endInTx(ctx context.Context, uow UnitOfWork, giveawayID int64) (*models.Giveaway, error) {
	repo := uow.GiveawayRepository()

	giveaway, err := repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway == nil {
		return nil, ErrGiveawayNotFound
	}
	if !giveaway.Active {
		return nil, ErrGiveawayNotActive
	}

	winners := s.drawWinners(giveaway.Participants, giveaway.WinnerCount)

	ended, err := repo.End(ctx, giveawayID, winners, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if ended == nil {
		// Another sweep closed it first
		return nil, ErrGiveawayNotActive
	}

	uow.EventBus().Publish(events.GiveawayEndedEvent{
		GiveawayID:       ended.ID,
		GuildID:          ended.GuildID,
		ChannelID:        ended.ChannelID,
		MessageID:        ended.MessageID,
		Prize:            ended.Prize,
		Winners:          ended.Winners,
		ParticipantCount: len(ended.Participants),
	})

	log.WithFields(log.Fields{
		"giveawayID":   ended.ID,
		"participants": len(ended.Participants),
		"winners":      ended.Winners,
	}).Info("Giveaway ended")

	return ended, nil
}

// EndExpired ends every active giveaway whose end time has passed. One failing giveaway
// does not stop the others.
func (s *giveawayService) EndExpired(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	expired, err := uow.GiveawayRepository().GetExpired(ctx, now)
	uow.Rollback()
	if err != nil {
		return nil, err
	}

	var ended []*models.Giveaway
	for _, g := range expired {
		result, err := s.End(ctx, g.ID)
		if err != nil {
			if errors.Is(err, ErrGiveawayNotActive) {
				continue
			}
			log.WithFields(log.Fields{
				"giveawayID": g.ID,
				"error":      err,
			}).Error("Failed to end expired giveaway")
			continue
		}
		ended = append(ended, result)
	}
	return ended, nil
}

// Reroll draws new winners for an ended giveaway, preferring participants who did not win before
func (s *giveawayService) Reroll(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.GiveawayRepository()
	giveaway, err := repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway == nil {
		return nil, ErrGiveawayNotFound
	}
	if giveaway.Active {
		return nil, ErrGiveawayStillActive
	}

	pool := excluding(giveaway.Participants, giveaway.Winners)
	if len(pool) == 0 {
		pool = giveaway.Participants
	}
	winners := s.drawWinners(pool, giveaway.WinnerCount)

	if err := repo.SetWinners(ctx, giveawayID, winners); err != nil {
		return nil, err
	}
	giveaway.Winners = winners

	uow.EventBus().Publish(events.GiveawayEndedEvent{
		GiveawayID:       giveaway.ID,
		GuildID:          giveaway.GuildID,
		ChannelID:        giveaway.ChannelID,
		MessageID:        giveaway.MessageID,
		Prize:            giveaway.Prize,
		Winners:          winners,
		ParticipantCount: len(giveaway.Participants),
		Reroll:           true,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return giveaway, nil
}

// ListActive returns a guild's running giveaways
func (s *giveawayService) ListActive(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.GiveawayRepository().GetActiveByGuild(ctx, guildID)
}

// Get returns a giveaway by id
func (s *giveawayService) Get(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	g, err := uow.GiveawayRepository().GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGiveawayNotFound
	}
	return g, nil
}

// drawWinners picks up to n distinct participants uniformly at random
func (s *giveawayService) drawWinners(participants []int64, n int) []int64 {
	if len(participants) == 0 || n <= 0 {
		return []int64{}
	}

	s.mu.Lock()
	perm := s.rng.Perm(len(participants))
	s.mu.Unlock()

	if n > len(participants) {
		n = len(participants)
	}
	winners := make([]int64, n)
	for i := 0; i < n; i++ {
		winners[i] = participants[perm[i]]
	}
	return winners
}

func excluding(all, remove []int64) []int64 {
	skip := make(map[int64]bool, len(remove))
	for _, id := range remove {
		skip[id] = true
	}
	out := make([]int64, 0, len(all))
	for _, id := range all {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}

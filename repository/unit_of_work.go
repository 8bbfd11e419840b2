package repository

import (
	"context"
	"errors"
	"fmt"

	"cerealbot/database"
	"cerealbot/events"
	"cerealbot/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	userRepo          service.UserRepository
	guildRepo         service.GuildRepository
	guildMemberRepo   service.GuildMemberRepository
	warningRepo       service.WarningRepository
	customCommandRepo service.CustomCommandRepository
	giveawayRepo      service.GiveawayRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepositoryWithTx(tx)
	u.guildRepo = newGuildRepositoryWithTx(tx)
	u.guildMemberRepo = newGuildMemberRepositoryWithTx(tx)
	u.warningRepo = newWarningRepositoryWithTx(tx)
	u.customCommandRepo = newCustomCommandRepositoryWithTx(tx)
	u.giveawayRepo = newGiveawayRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and releases pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and drops pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func notStarted() {
	panic("unit of work not started - call Begin() first")
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		notStarted()
	}
	return u.userRepo
}

// GuildRepository returns the guild repository for this unit of work
func (u *unitOfWork) GuildRepository() service.GuildRepository {
	if u.guildRepo == nil {
		notStarted()
	}
	return u.guildRepo
}

// GuildMemberRepository returns the guild member repository for this unit of work
func (u *unitOfWork) GuildMemberRepository() service.GuildMemberRepository {
	if u.guildMemberRepo == nil {
		notStarted()
	}
	return u.guildMemberRepo
}

// WarningRepository returns the warning repository for this unit of work
func (u *unitOfWork) WarningRepository() service.WarningRepository {
	if u.warningRepo == nil {
		notStarted()
	}
	return u.warningRepo
}

// CustomCommandRepository returns the custom command repository for this unit of work
func (u *unitOfWork) CustomCommandRepository() service.CustomCommandRepository {
	if u.customCommandRepo == nil {
		notStarted()
	}
	return u.customCommandRepo
}

// GiveawayRepository returns the giveaway repository for this unit of work
func (u *unitOfWork) GiveawayRepository() service.GiveawayRepository {
	if u.giveawayRepo == nil {
		notStarted()
	}
	return u.giveawayRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		notStarted()
	}
	return u.transactionalBus
}

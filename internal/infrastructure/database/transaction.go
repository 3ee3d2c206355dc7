package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	domainRepo "github.com/christinepetrosyan/Timebook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txManager struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewTxManager(db *gorm.DB, timeout time.Duration) domainRepo.TxManager {
	return &txManager{db: db, timeout: timeout}
}

// WithinMasterTx takes a transaction-scoped advisory lock keyed by the master id
// before running fn, so the overlap re-check and the write see no interleaving writer.
func (m *txManager) WithinMasterTx(ctx context.Context, masterID uuid.UUID, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", masterID.String()).Error; err != nil {
			return err
		}
		return fn(tx)
	})
	return m.translate(ctx, err)
}

func (m *txManager) Read(ctx context.Context, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	return m.translate(ctx, fn(m.db.WithContext(ctx)))
}

func (m *txManager) translate(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if apperror.KindOf(err) == apperror.KindInternal {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return fmt.Errorf("%w: storage call exceeded %s", apperror.ErrTimeout, m.timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			return fmt.Errorf("%w: request cancelled", apperror.ErrTimeout)
		}
	}
	return TranslateError(err)
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxManager runs store calls with a bounded timeout. WithinMasterTx additionally
// serializes all writers of one master's calendar for the life of the transaction.
type TxManager interface {
	WithinMasterTx(ctx context.Context, masterID uuid.UUID, fn func(tx *gorm.DB) error) error
	Read(ctx context.Context, fn func(db *gorm.DB) error) error
}

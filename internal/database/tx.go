package database

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner opens transactions whose handle is passed explicitly to the
// repositories taking part in them.
type TxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run executes fn in a transaction. A non-nil error from fn rolls back.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

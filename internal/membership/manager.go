package membership

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

var _ Mutator = (*Manager)(nil)

// Manager applies membership mutations to the record store. Each
// mutation runs in its own transaction and commits before returning.
type Manager struct {
	db     *bun.DB
	logger zerolog.Logger
}

// NewManager creates a Manager.
func NewManager(db *bun.DB, logger zerolog.Logger) *Manager {
	return &Manager{
		db:     db,
		logger: logger.With().Str("component", "membership-manager").Logger(),
	}
}

// AddSocietyAdmin records the member as an admin of the society.
// Adding an existing admin again is a no-op at the store level.
func (m *Manager) AddSocietyAdmin(ctx context.Context, member *Member, society *Society) error {
	err := m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&SocietyAdmin{SocietyName: society.Name, CRSID: member.CRSID}).
			Ignore().
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("add %s as admin of %s: %w", member.CRSID, society.Name, err)
	}

	m.logger.Info().
		Str("crsid", member.CRSID).
		Str("society", society.Name).
		Msg("granted society admin")
	return nil
}

// RemoveSocietyAdmin removes the member from the society's admins.
func (m *Manager) RemoveSocietyAdmin(ctx context.Context, member *Member, society *Society) error {
	err := m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*SocietyAdmin)(nil)).
			Where("society = ?", society.Name).
			Where("crsid = ?", member.CRSID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove %s as admin of %s: %w", member.CRSID, society.Name, err)
	}

	m.logger.Info().
		Str("crsid", member.CRSID).
		Str("society", society.Name).
		Msg("revoked society admin")
	return nil
}

// DeleteSociety deletes the society's account and its admin records.
func (m *Manager) DeleteSociety(ctx context.Context, society *Society) error {
	err := m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*SocietyAdmin)(nil)).
			Where("society = ?", society.Name).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*Society)(nil)).
			Where("society = ?", society.Name).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete society %s: %w", society.Name, err)
	}

	m.logger.Info().Str("society", society.Name).Msg("deleted society account")
	return nil
}

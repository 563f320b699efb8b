package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a member or society does not exist in
// the record store.
var ErrNotFound = errors.New("record not found")

// RegisterModels registers the join-table model needed for m2m
// relations. Must be called once on any bun.DB handling these tables;
// db.OpenMemberDB does this.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*SocietyAdmin)(nil))
}

// Store resolves members and societies from the record store.
type Store struct {
	db bun.IDB
}

// NewStore creates a Store over a bun database or transaction.
func NewStore(db bun.IDB) *Store {
	return &Store{db: db}
}

// GetMember looks up a member by CRSid.
func (s *Store) GetMember(ctx context.Context, crsid string) (*Member, error) {
	member := new(Member)
	err := s.db.NewSelect().Model(member).Where("crsid = ?", crsid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, crsid)
		}
		return nil, fmt.Errorf("get member %s: %w", crsid, err)
	}
	return member, nil
}

// GetSociety looks up a society by short name, with its admins loaded.
func (s *Store) GetSociety(ctx context.Context, name string) (*Society, error) {
	society := new(Society)
	err := s.db.NewSelect().Model(society).
		Relation("Admins").
		Where("society = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: society %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("get society %s: %w", name, err)
	}
	return society, nil
}

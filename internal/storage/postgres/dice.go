package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/udice/internal/catalog"
	"github.com/cory-johannsen/udice/internal/dice"
	"github.com/cory-johannsen/udice/internal/storage"
)

// DiceRepository stores die sets in PostgreSQL.
//
// A set is written as its catalog document: one dice_sets row carrying the
// faces as JSONB keyed like the document, one units row per unit with its
// identity, and one dice row per die listing face keys. Reading a set
// rebuilds it through catalog.Build, so units keep their stored identities
// and faces shared by key come back shared.
type DiceRepository struct {
	db     *pgxpool.Pool
	opts   catalog.Options
	logger *zap.Logger
}

var _ storage.Repository = (*DiceRepository)(nil)

// NewDiceRepository creates a DiceRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool; logger must be
// non-nil. opts.Scripts must be set to store or load sets with script units.
func NewDiceRepository(db *pgxpool.Pool, opts catalog.Options, logger *zap.Logger) *DiceRepository {
	return &DiceRepository{db: db, opts: opts, logger: logger}
}

// StoreDice implements storage.Repository.
//
// Postcondition: Returns the new set's id, or an error if the set is invalid
// or could not be rebuilt from its stored form. Nothing is written on error.
func (r *DiceRepository) StoreDice(ctx context.Context, name string, ds []*dice.Die) (storage.SetID, error) {
	start := time.Now()
	if err := storage.CheckSet(name, ds); err != nil {
		return uuid.Nil, err
	}
	doc, err := catalog.Encode(&catalog.Set{Name: name, Units: storage.UnitsOf(ds), Dice: ds})
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding set %q: %w", name, err)
	}
	if err := doc.Validate(); err != nil {
		return uuid.Nil, err
	}
	if _, err := catalog.Build(doc, r.opts); err != nil {
		return uuid.Nil, fmt.Errorf("checking set %q: %w", name, err)
	}

	faces, err := json.Marshal(doc.Faces)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding faces of %q: %w", name, err)
	}

	id := uuid.New()
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO dice_sets (id, name, faces) VALUES ($1, $2, $3)`,
			id, name, faces,
		); err != nil {
			return fmt.Errorf("inserting set: %w", err)
		}
		for i, ud := range doc.Units {
			body, err := json.Marshal(ud)
			if err != nil {
				return fmt.Errorf("encoding unit %q: %w", ud.Name, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO units (set_id, position, unit_id, name, kind, doc)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				id, i, int64(ud.ID), ud.Name, ud.Kind, body,
			); err != nil {
				return fmt.Errorf("inserting unit %q: %w", ud.Name, err)
			}
		}
		for i, dd := range doc.Dice {
			if _, err := tx.Exec(ctx,
				`INSERT INTO dice (set_id, position, name, face_keys, explode_on, explosion_limit)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				id, i, dd.Name, dd.Faces, dd.ExplodeOn, dd.ExplosionLimit,
			); err != nil {
				return fmt.Errorf("inserting die %q: %w", dd.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("storing set %q: %w", name, err)
	}

	r.logger.Info("die set stored",
		zap.String("set", name),
		zap.Stringer("id", id),
		zap.Int("dice", len(doc.Dice)),
		zap.Int("units", len(doc.Units)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return id, nil
}

// Sets implements storage.Repository.
func (r *DiceRepository) Sets(ctx context.Context) ([]storage.SetInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name, (SELECT COUNT(*) FROM dice d WHERE d.set_id = s.id)
		FROM dice_sets s ORDER BY s.seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing sets: %w", err)
	}
	defer rows.Close()

	out := make([]storage.SetInfo, 0)
	for rows.Next() {
		var info storage.SetInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Dice); err != nil {
			return nil, fmt.Errorf("scanning set row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// AllDice implements storage.Repository.
func (r *DiceRepository) AllDice(ctx context.Context) ([]*dice.Die, error) {
	sets, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*dice.Die
	for _, s := range sets {
		out = append(out, s.Dice...)
	}
	return out, nil
}

// SetDice implements storage.Repository.
func (r *DiceRepository) SetDice(ctx context.Context, set storage.SetID) ([]*dice.Die, error) {
	s, err := r.load(ctx, set)
	if err != nil {
		return nil, err
	}
	return s.Dice, nil
}

// Die implements storage.Repository.
func (r *DiceRepository) Die(ctx context.Context, set storage.SetID, name string) (*dice.Die, error) {
	s, err := r.load(ctx, set)
	if err != nil {
		return nil, err
	}
	d, ok := s.Die(name)
	if !ok {
		return nil, fmt.Errorf("set %s: die %q: %w", set, name, storage.ErrDieNotFound)
	}
	return d, nil
}

// AllUnits implements storage.Repository. A unit shared by several sets is
// listed once.
func (r *DiceRepository) AllUnits(ctx context.Context) ([]dice.Unit, error) {
	all, err := r.AllDice(ctx)
	if err != nil {
		return nil, err
	}
	return storage.UnitsOf(all), nil
}

// SetUnits implements storage.Repository.
func (r *DiceRepository) SetUnits(ctx context.Context, set storage.SetID) ([]dice.Unit, error) {
	s, err := r.load(ctx, set)
	if err != nil {
		return nil, err
	}
	return s.Units, nil
}

// Unit implements storage.Repository.
func (r *DiceRepository) Unit(ctx context.Context, set storage.SetID, name string) (dice.Unit, error) {
	s, err := r.load(ctx, set)
	if err != nil {
		return nil, err
	}
	u, ok := s.Unit(name)
	if !ok {
		return nil, fmt.Errorf("set %s: unit %q: %w", set, name, storage.ErrUnitNotFound)
	}
	return u, nil
}

func (r *DiceRepository) loadAll(ctx context.Context) ([]*catalog.Set, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM dice_sets ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing sets: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("scanning set ids: %w", err)
	}
	out := make([]*catalog.Set, 0, len(ids))
	for _, id := range ids {
		s, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// load reads set's rows back into a document and builds it.
func (r *DiceRepository) load(ctx context.Context, set storage.SetID) (*catalog.Set, error) {
	doc := &catalog.Document{}
	var faces []byte
	err := r.db.QueryRow(ctx,
		`SELECT name, faces FROM dice_sets WHERE id = $1`, set,
	).Scan(&doc.Set, &faces)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("set %s: %w", set, storage.ErrSetNotFound)
		}
		return nil, fmt.Errorf("querying set %s: %w", set, err)
	}
	if err := json.Unmarshal(faces, &doc.Faces); err != nil {
		return nil, fmt.Errorf("decoding faces of set %s: %w", set, err)
	}

	units, err := r.db.Query(ctx,
		`SELECT doc FROM units WHERE set_id = $1 ORDER BY position ASC`, set)
	if err != nil {
		return nil, fmt.Errorf("querying units of set %s: %w", set, err)
	}
	bodies, err := pgx.CollectRows(units, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scanning units of set %s: %w", set, err)
	}
	for _, body := range bodies {
		var ud catalog.UnitDoc
		if err := json.Unmarshal(body, &ud); err != nil {
			return nil, fmt.Errorf("decoding unit of set %s: %w", set, err)
		}
		doc.Units = append(doc.Units, ud)
	}

	rows, err := r.db.Query(ctx,
		`SELECT name, face_keys, explode_on, explosion_limit
		 FROM dice WHERE set_id = $1 ORDER BY position ASC`, set)
	if err != nil {
		return nil, fmt.Errorf("querying dice of set %s: %w", set, err)
	}
	defer rows.Close()
	for rows.Next() {
		var dd catalog.DieDoc
		if err := rows.Scan(&dd.Name, &dd.Faces, &dd.ExplodeOn, &dd.ExplosionLimit); err != nil {
			return nil, fmt.Errorf("scanning die row: %w", err)
		}
		doc.Dice = append(doc.Dice, dd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading dice of set %s: %w", set, err)
	}

	s, err := catalog.Build(doc, r.opts)
	if err != nil {
		return nil, fmt.Errorf("rebuilding set %s: %w", set, err)
	}
	return s, nil
}

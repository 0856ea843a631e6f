package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/settings"
	scarcitystore "github.com/xraph/scarcity/store"
	"github.com/xraph/scarcity/summoner"
)

// compile-time interface check
var _ scarcitystore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("scarcity/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("scarcity/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Summoner Store ====================

func (s *Store) NextSummonerID(ctx context.Context) (uint64, error) {
	var next int64
	err := s.sdb.NewRaw(`SELECT COUNT(*) FROM scarcity_summoners`).Scan(ctx, &next)
	if err != nil {
		return 0, fmt.Errorf("scarcity/sqlite: next summoner id: %w", err)
	}
	return uint64(next), nil //nolint:gosec // COUNT is never negative
}

func (s *Store) CreateSummoner(ctx context.Context, sm *summoner.Summoner) error {
	m := toSummonerModel(sm)
	res, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scarcity/sqlite: create summoner: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return scarcity.ErrAlreadyExists
	}
	return nil
}

func (s *Store) GetSummoner(ctx context.Context, summonerID uint64) (*summoner.Summoner, error) {
	m := new(summonerModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(summonerID)). //nolint:gosec // bit-cast, see summonerModel
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, scarcity.ErrSummonerNotFound
		}
		return nil, err
	}
	return fromSummonerModel(m)
}

func (s *Store) ListSummoners(ctx context.Context, opts summoner.ListOpts) ([]*summoner.Summoner, error) {
	var models []summonerModel
	q := s.sdb.NewSelect(&models)

	if opts.Owner != (common.Address{}) {
		q = q.Where("owner = ?", opts.Owner.Hex())
	}
	if opts.Minter != (common.Address{}) {
		q = q.Where("minter = ?", opts.Minter.Hex())
	}
	if opts.Kind != nil {
		q = q.Where("kind = ?", int64(*opts.Kind)) //nolint:gosec // bit-cast
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*summoner.Summoner, len(models))
	for i := range models {
		sm, err := fromSummonerModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sm
	}
	return result, nil
}

func (s *Store) CountByOwner(ctx context.Context, owner common.Address) (uint64, error) {
	var n int64
	err := s.sdb.NewRaw(`SELECT COUNT(*) FROM scarcity_summoners WHERE owner = ?`, owner.Hex()).
		Scan(ctx, &n)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil //nolint:gosec // COUNT is never negative
}

func (s *Store) TransferSummoner(ctx context.Context, summonerID uint64, from, to common.Address) error {
	res, err := s.sdb.NewUpdate((*summonerModel)(nil)).
		Set("owner = ?", to.Hex()).
		Set("approved = ?", "").
		Set("updated_at = ?", now()).
		Where("id = ?", int64(summonerID)). //nolint:gosec // bit-cast, see summonerModel
		Where("owner = ?", from.Hex()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scarcity/sqlite: transfer summoner: %w", err)
	}
	return s.checkOwnerUpdate(ctx, res, summonerID)
}

func (s *Store) SetApproved(ctx context.Context, summonerID uint64, owner, approved common.Address) error {
	res, err := s.sdb.NewUpdate((*summonerModel)(nil)).
		Set("approved = ?", addrString(approved)).
		Set("updated_at = ?", now()).
		Where("id = ?", int64(summonerID)). //nolint:gosec // bit-cast, see summonerModel
		Where("owner = ?", owner.Hex()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scarcity/sqlite: set approved: %w", err)
	}
	return s.checkOwnerUpdate(ctx, res, summonerID)
}

// checkOwnerUpdate maps a zero-row owner-guarded update to not found or
// conflict.
func (s *Store) checkOwnerUpdate(ctx context.Context, res rowsAffecter, summonerID uint64) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	if _, err := s.GetSummoner(ctx, summonerID); err != nil {
		return err
	}
	return scarcity.ErrConflict
}

func (s *Store) SetOperator(ctx context.Context, owner, operator common.Address, approved bool) error {
	if !approved {
		_, err := s.sdb.NewDelete((*operatorModel)(nil)).
			Where("owner = ?", owner.Hex()).
			Where("operator = ?", operator.Hex()).
			Exec(ctx)
		return err
	}

	m := &operatorModel{
		Owner:     owner.Hex(),
		Operator:  operator.Hex(),
		CreatedAt: now(),
	}
	_, err := s.sdb.NewInsert(m).
		OnConflict("(owner, operator) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) IsOperator(ctx context.Context, owner, operator common.Address) (bool, error) {
	var n int64
	err := s.sdb.NewRaw(`
		SELECT COUNT(*) FROM scarcity_operators
		WHERE owner = ? AND operator = ?
	`, owner.Hex(), operator.Hex()).Scan(ctx, &n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	m := new(settingsModel)
	err := s.sdb.NewSelect(m).
		Where("name = ?", settingsRow).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, scarcity.ErrSettingsNotFound
		}
		return nil, err
	}
	return fromSettingsModel(m), nil
}

func (s *Store) SaveSettings(ctx context.Context, cfg *settings.Settings) error {
	m := toSettingsModel(cfg)
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now()
	}
	_, err := s.sdb.NewInsert(m).
		OnConflict("(name) DO UPDATE").
		Set("admin = EXCLUDED.admin").
		Set("base_uri = EXCLUDED.base_uri").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

// rowsAffecter is the part of an exec result the store inspects.
type rowsAffecter interface {
	RowsAffected() (int64, error)
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

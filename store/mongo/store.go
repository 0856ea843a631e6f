package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/settings"
	scarcitystore "github.com/xraph/scarcity/store"
	"github.com/xraph/scarcity/summoner"
)

// Collection name constants.
const (
	colSummoners = "scarcity_summoners"
	colOperators = "scarcity_operators"
	colSettings  = "scarcity_settings"
)

// compile-time interface check
var _ scarcitystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all scarcity collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("scarcity/mongo: migrate %s indexes: %w", col, err)
		}
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
	n, err := s.mdb.Collection(colSummoners).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("scarcity/mongo: next summoner id: %w", err)
	}
	return uint64(n), nil //nolint:gosec // counts are never negative
}

func (s *Store) CreateSummoner(ctx context.Context, sm *summoner.Summoner) error {
	m := toSummonerModel(sm)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return scarcity.ErrAlreadyExists
		}
		return fmt.Errorf("scarcity/mongo: create summoner: %w", err)
	}
	return nil
}

func (s *Store) GetSummoner(ctx context.Context, summonerID uint64) (*summoner.Summoner, error) {
	var m summonerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(summonerID)}). //nolint:gosec // bit-cast, see summonerModel
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, scarcity.ErrSummonerNotFound
		}
		return nil, fmt.Errorf("scarcity/mongo: get summoner: %w", err)
	}
	return fromSummonerModel(&m)
}

func (s *Store) ListSummoners(ctx context.Context, opts summoner.ListOpts) ([]*summoner.Summoner, error) {
	var models []summonerModel

	filter := bson.M{}
	if opts.Owner != (common.Address{}) {
		filter["owner"] = opts.Owner.Hex()
	}
	if opts.Minter != (common.Address{}) {
		filter["minter"] = opts.Minter.Hex()
	}
	if opts.Kind != nil {
		filter["kind"] = int64(*opts.Kind) //nolint:gosec // bit-cast
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scarcity/mongo: list summoners: %w", err)
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
	n, err := s.mdb.Collection(colSummoners).CountDocuments(ctx, bson.M{"owner": owner.Hex()})
	if err != nil {
		return 0, fmt.Errorf("scarcity/mongo: count by owner: %w", err)
	}
	return uint64(n), nil //nolint:gosec // counts are never negative
}

func (s *Store) TransferSummoner(ctx context.Context, summonerID uint64, from, to common.Address) error {
	res, err := s.mdb.NewUpdate((*summonerModel)(nil)).
		Filter(bson.M{"_id": int64(summonerID), "owner": from.Hex()}). //nolint:gosec // bit-cast
		Set("owner", to.Hex()).
		Set("approved", "").
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scarcity/mongo: transfer summoner: %w", err)
	}
	if res.MatchedCount() == 0 {
		return s.missOrConflict(ctx, summonerID)
	}
	return nil
}

func (s *Store) SetApproved(ctx context.Context, summonerID uint64, owner, approved common.Address) error {
	res, err := s.mdb.NewUpdate((*summonerModel)(nil)).
		Filter(bson.M{"_id": int64(summonerID), "owner": owner.Hex()}). //nolint:gosec // bit-cast
		Set("approved", addrString(approved)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scarcity/mongo: set approved: %w", err)
	}
	if res.MatchedCount() == 0 {
		return s.missOrConflict(ctx, summonerID)
	}
	return nil
}

// missOrConflict explains an owner-guarded update that matched nothing.
func (s *Store) missOrConflict(ctx context.Context, summonerID uint64) error {
	if _, err := s.GetSummoner(ctx, summonerID); err != nil {
		return err
	}
	return scarcity.ErrConflict
}

func (s *Store) SetOperator(ctx context.Context, owner, operator common.Address, approved bool) error {
	docID := operatorDocID(owner, operator)
	if !approved {
		_, err := s.mdb.NewDelete((*operatorModel)(nil)).
			Filter(bson.M{"_id": docID}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("scarcity/mongo: revoke operator: %w", err)
		}
		return nil
	}

	_, err := s.mdb.Collection(colOperators).UpdateOne(ctx,
		bson.M{"_id": docID},
		bson.M{"$setOnInsert": bson.M{
			"owner":      owner.Hex(),
			"operator":   operator.Hex(),
			"created_at": now(),
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("scarcity/mongo: grant operator: %w", err)
	}
	return nil
}

func (s *Store) IsOperator(ctx context.Context, owner, operator common.Address) (bool, error) {
	n, err := s.mdb.Collection(colOperators).CountDocuments(ctx, bson.M{"_id": operatorDocID(owner, operator)})
	if err != nil {
		return false, fmt.Errorf("scarcity/mongo: is operator: %w", err)
	}
	return n > 0, nil
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	var m settingsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": settingsDocID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, scarcity.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("scarcity/mongo: get settings: %w", err)
	}
	return fromSettingsModel(&m), nil
}

func (s *Store) SaveSettings(ctx context.Context, cfg *settings.Settings) error {
	updatedAt := cfg.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now()
	}
	_, err := s.mdb.Collection(colSettings).UpdateOne(ctx,
		bson.M{"_id": settingsDocID},
		bson.M{"$set": bson.M{
			"admin":      addrString(cfg.Admin),
			"base_uri":   cfg.BaseURI,
			"updated_at": updatedAt,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("scarcity/mongo: save settings: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks for the mongo no-documents sentinel.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all scarcity collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSummoners: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "minter", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "kind", Value: 1}}},
		},
		colOperators: {
			{
				Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "operator", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}
}

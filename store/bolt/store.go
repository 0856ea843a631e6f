// Package bolt provides an embedded store.Store backed by bbolt.
//
// Summoners are kept in id order under big-endian keys so a cursor walk is
// an id-ordered scan. Every write runs in a single bbolt transaction.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.etcd.io/bbolt"

	"github.com/xraph/scarcity"
	"github.com/xraph/scarcity/settings"
	"github.com/xraph/scarcity/store"
	"github.com/xraph/scarcity/summoner"
)

const (
	summonerBucket = "summoners"
	operatorBucket = "operators"
	settingsBucket = "settings"

	settingsKey = "ledger"
)

var _ store.Store = (*Store)(nil)

// Store provides a BoltDB-backed summoner store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("scarcity/bolt: storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("scarcity/bolt: open storage db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// DB returns the underlying bbolt database.
func (s *Store) DB() *bbolt.DB { return s.db }

// ──────────────────────────────────────────────────
// Summoner Store
// ──────────────────────────────────────────────────

func (s *Store) NextSummonerID(ctx context.Context) (uint64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	var next uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, summonerBucket)
		if err != nil {
			return err
		}
		next, err = nextID(b)
		return err
	})
	return next, err
}

func (s *Store) CreateSummoner(ctx context.Context, sm *summoner.Summoner) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(sm)
	if err != nil {
		return fmt.Errorf("scarcity/bolt: marshal summoner: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, summonerBucket)
		if err != nil {
			return err
		}
		next, err := nextID(b)
		if err != nil {
			return err
		}
		if sm.ID < next {
			return scarcity.ErrAlreadyExists
		}
		if sm.ID != next {
			return scarcity.ErrConflict
		}
		return b.Put(summonerKey(sm.ID), payload)
	})
}

func (s *Store) GetSummoner(ctx context.Context, summonerID uint64) (*summoner.Summoner, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var sm *summoner.Summoner
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, summonerBucket)
		if err != nil {
			return err
		}
		sm, err = getSummoner(b, summonerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sm, nil
}

func (s *Store) ListSummoners(ctx context.Context, opts summoner.ListOpts) ([]*summoner.Summoner, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	result := make([]*summoner.Summoner, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, summonerBucket)
		if err != nil {
			return err
		}

		skipped := 0
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			sm, err := decodeSummoner(v)
			if err != nil {
				return err
			}
			if !opts.Matches(sm) {
				continue
			}
			if skipped < opts.Offset {
				skipped++
				continue
			}
			result = append(result, sm)
			if opts.Limit > 0 && len(result) == opts.Limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CountByOwner(ctx context.Context, owner common.Address) (uint64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	var n uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, summonerBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			sm, err := decodeSummoner(v)
			if err != nil {
				return err
			}
			if sm.Owner == owner {
				n++
			}
			return nil
		})
	})
	return n, err
}

func (s *Store) TransferSummoner(ctx context.Context, summonerID uint64, from, to common.Address) error {
	return s.updateSummoner(ctx, summonerID, from, func(sm *summoner.Summoner) {
		sm.Owner = to
		sm.Approved = common.Address{}
	})
}

func (s *Store) SetApproved(ctx context.Context, summonerID uint64, owner, approved common.Address) error {
	return s.updateSummoner(ctx, summonerID, owner, func(sm *summoner.Summoner) {
		sm.Approved = approved
	})
}

// updateSummoner applies fn when the stored owner equals owner.
func (s *Store) updateSummoner(ctx context.Context, summonerID uint64, owner common.Address, fn func(*summoner.Summoner)) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, summonerBucket)
		if err != nil {
			return err
		}
		sm, err := getSummoner(b, summonerID)
		if err != nil {
			return err
		}
		if sm.Owner != owner {
			return scarcity.ErrConflict
		}

		fn(sm)
		sm.Touch()

		payload, err := json.Marshal(sm)
		if err != nil {
			return fmt.Errorf("scarcity/bolt: marshal summoner: %w", err)
		}
		return b.Put(summonerKey(summonerID), payload)
	})
}

func (s *Store) SetOperator(ctx context.Context, owner, operator common.Address, approved bool) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, operatorBucket)
		if err != nil {
			return err
		}
		if approved {
			return b.Put(operatorKey(owner, operator), []byte{1})
		}
		return b.Delete(operatorKey(owner, operator))
	})
}

func (s *Store) IsOperator(ctx context.Context, owner, operator common.Address) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}

	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, operatorBucket)
		if err != nil {
			return err
		}
		ok = b.Get(operatorKey(owner, operator)) != nil
		return nil
	})
	return ok, err
}

// Operators returns the operators owner has approved, in address order.
func (s *Store) Operators(ctx context.Context, owner common.Address) ([]common.Address, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var out []common.Address
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, operatorBucket)
		if err != nil {
			return err
		}
		prefix := owner.Bytes()
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			out = append(out, common.BytesToAddress(k[common.AddressLength:]))
		}
		return nil
	})
	return out, err
}

// ──────────────────────────────────────────────────
// Settings Store
// ──────────────────────────────────────────────────

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var cfg settings.Settings
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, settingsBucket)
		if err != nil {
			return err
		}
		payload := b.Get([]byte(settingsKey))
		if payload == nil {
			return scarcity.ErrSettingsNotFound
		}
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return fmt.Errorf("scarcity/bolt: unmarshal settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) SaveSettings(ctx context.Context, cfg *settings.Settings) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	c := *cfg
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(&c)
	if err != nil {
		return fmt.Errorf("scarcity/bolt: marshal settings: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, settingsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(settingsKey), payload)
	})
}

// ──────────────────────────────────────────────────
// Core methods
// ──────────────────────────────────────────────────

// Migrate creates any missing buckets.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.ensureBuckets()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.db.View(func(*bbolt.Tx) error { return nil })
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return scarcity.ErrStoreNotReady
	}
	return nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{summonerBucket, operatorBucket, settingsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("scarcity/bolt: create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func bucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("scarcity/bolt: %s bucket is missing", name)
	}
	return b, nil
}

func nextID(b *bbolt.Bucket) (uint64, error) {
	k, _ := b.Cursor().Last()
	if k == nil {
		return 0, nil
	}
	last := binary.BigEndian.Uint64(k)
	if last == math.MaxUint64 {
		return 0, fmt.Errorf("%w: summoner id counter", scarcity.ErrOverflow)
	}
	return last + 1, nil
}

func getSummoner(b *bbolt.Bucket, summonerID uint64) (*summoner.Summoner, error) {
	payload := b.Get(summonerKey(summonerID))
	if payload == nil {
		return nil, scarcity.ErrSummonerNotFound
	}
	return decodeSummoner(payload)
}

func decodeSummoner(payload []byte) (*summoner.Summoner, error) {
	var sm summoner.Summoner
	if err := json.Unmarshal(payload, &sm); err != nil {
		return nil, fmt.Errorf("scarcity/bolt: unmarshal summoner: %w", err)
	}
	return &sm, nil
}

func summonerKey(summonerID uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, summonerID)
	return key
}

func operatorKey(owner, operator common.Address) []byte {
	key := make([]byte, 0, 2*common.AddressLength)
	key = append(key, owner.Bytes()...)
	return append(key, operator.Bytes()...)
}


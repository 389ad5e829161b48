package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var relayedBucket = []byte("relayed")

var errBucketMissing = errors.New("relayed bucket missing")

// boltStore keeps one key per relayed article; the value is its expiry as big-endian unix seconds.
type boltStore struct {
	db    *bolt.DB
	ttl   time.Duration
	now   func() time.Time
	every time.Duration

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(relayedBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:        db,
		ttl:       opts.TTL,
		now:       opts.Now,
		every:     opts.CleanupInterval,
		lastSweep: opts.Now(),
	}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Seen reports whether id was marked and has not expired yet.
func (b *boltStore) Seen(id string) (bool, error) {
	now := b.now()
	if err := b.maybeSweep(now); err != nil {
		return false, err
	}

	var live bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(relayedBucket)
		if bucket == nil {
			return errBucketMissing
		}
		if expiry, ok := decodeExpiry(bucket.Get([]byte(id))); ok {
			live = expiry.After(now)
		}
		return nil
	})
	return live, err
}

// Mark records id as relayed for the configured TTL.
func (b *boltStore) Mark(id string) error {
	now := b.now()
	if err := b.maybeSweep(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(relayedBucket)
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(id), encodeExpiry(now.Add(b.ttl)))
	})
}

// maybeSweep drops expired keys at most once per cleanup interval.
func (b *boltStore) maybeSweep(now time.Time) error {
	b.sweepMu.Lock()
	defer b.sweepMu.Unlock()

	if now.Sub(b.lastSweep) < b.every {
		return nil
	}
	if _, err := b.sweep(now); err != nil {
		return err
	}
	b.lastSweep = now
	return nil
}

func (b *boltStore) sweep(now time.Time) (int, error) {
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(relayedBucket)
		if bucket == nil {
			return errBucketMissing
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if expiry, ok := decodeExpiry(v); ok && expiry.After(now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (b *boltStore) count() (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(relayedBucket)
		if bucket == nil {
			return errBucketMissing
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != 8 {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

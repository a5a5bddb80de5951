package classify

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic key derivation
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketReplies = []byte("replies")

// ReplyCache persists parsed model replies keyed by title so repeated runs
// over overlapping date ranges do not pay for the same title twice. Only
// provider replies are cached; result tables are rebuilt from scratch every
// run. A nil *ReplyCache is a valid no-op cache.
type ReplyCache struct {
	db *bolt.DB
}

type cachedReply struct {
	Category string `json:"category"`
	Synopsis string `json:"synopsis"`
}

// OpenReplyCache opens (or creates) the bolt file at path.
func OpenReplyCache(path string) (*ReplyCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open reply cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReplies)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create reply bucket: %w", err)
	}

	return &ReplyCache{db: db}, nil
}

// Close releases the underlying file.
func (c *ReplyCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached reply for a title, if any.
func (c *ReplyCache) Get(title string) (category, synopsis string, ok bool) {
	if c == nil || c.db == nil {
		return "", "", false
	}

	var cached cachedReply
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketReplies).Get(titleKey(title))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &cached); err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil || !ok {
		return "", "", false
	}
	return cached.Category, cached.Synopsis, true
}

// Put stores a successfully parsed reply. Sentinel outcomes are never stored,
// so transient failures stay retryable on the next run.
func (c *ReplyCache) Put(title, category, synopsis string) error {
	if c == nil || c.db == nil {
		return nil
	}

	raw, err := json.Marshal(cachedReply{Category: category, Synopsis: synopsis})
	if err != nil {
		return fmt.Errorf("marshal cached reply: %w", err)
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReplies).Put(titleKey(title), raw)
	})
}

func titleKey(title string) []byte {
	sum := sha1.Sum([]byte(title))
	return []byte(hex.EncodeToString(sum[:]))
}

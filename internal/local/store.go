// Package local persists per-browser engagement state: the durable guest
// identifier and the list of posts this client currently likes. It is the
// server-side analog of the browser's persistent storage, backed by BoltDB
// with msgpack-encoded values.
package local

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

// Bucket and key names.
const (
	bucketLikes = "likes"
	bucketMeta  = "meta"

	keyLikedPosts = "liked_posts"
	keyGuestID    = "guest_id"
)

// Store is the persistent client-local state store.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketLikes, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// GuestID returns the durable guest identifier, creating and persisting one
// on first use. The id stands in for an authenticated account in like and
// view rows.
func (s *Store) GuestID() (string, error) {
	var id string
	err := s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(bucketMeta))
		if data := meta.Get([]byte(keyGuestID)); data != nil {
			id = string(data)
			return nil
		}
		id = uuid.NewString()
		return meta.Put([]byte(keyGuestID), []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve guest id: %w", err)
	}
	return id, nil
}

// LikedPosts returns the ordered list of post ids this client likes.
// Corrupt stored bytes are treated as an empty list, never an error.
func (s *Store) LikedPosts() []string {
	var out []string
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketLikes)).Get([]byte(keyLikedPosts))
		if data == nil {
			return nil
		}
		if err := msgpack.Unmarshal(data, &out); err != nil {
			out = nil
		}
		return nil
	})
	return out
}

// HasLike reports whether postID is in the liked list.
func (s *Store) HasLike(postID string) bool {
	for _, id := range s.LikedPosts() {
		if id == postID {
			return true
		}
	}
	return false
}

// AddLike appends postID to the liked list if absent.
func (s *Store) AddLike(postID string) error {
	return s.mutateLikes(func(ids []string) []string {
		for _, id := range ids {
			if id == postID {
				return ids
			}
		}
		return append(ids, postID)
	})
}

// RemoveLike removes postID from the liked list.
func (s *Store) RemoveLike(postID string) error {
	return s.mutateLikes(func(ids []string) []string {
		out := ids[:0]
		for _, id := range ids {
			if id != postID {
				out = append(out, id)
			}
		}
		return out
	})
}

func (s *Store) mutateLikes(fn func([]string) []string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketLikes))

		var ids []string
		if data := bucket.Get([]byte(keyLikedPosts)); data != nil {
			if err := msgpack.Unmarshal(data, &ids); err != nil {
				ids = nil
			}
		}

		ids = fn(ids)
		data, err := msgpack.Marshal(ids)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(keyLikedPosts), data)
	})
	if err != nil {
		return fmt.Errorf("failed to update liked posts: %w", err)
	}
	return nil
}

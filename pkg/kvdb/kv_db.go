package kvdb

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var (
	ErrorsKeyNotExists = errors.New("key not exists")
)

const (
	BBOLTDB_SESSION_BUCKET = "sessions"
)

// Token is the part of an oauth2 token kept between requests.
type Token struct {
	AccessToken  string    `msgpack:"access_token"`
	TokenType    string    `msgpack:"token_type"`
	RefreshToken string    `msgpack:"refresh_token"`
	Expiry       time.Time `msgpack:"expiry"`
}

// Session is the server side state behind a session cookie.
type Session struct {
	ID         string    `msgpack:"id"`
	State      string    `msgpack:"state"`
	Token      *Token    `msgpack:"token"`
	Identifier string    `msgpack:"identifier"`
	CreatedAt  time.Time `msgpack:"created_at"`
}

func (s *Session) Authorized() bool {
	return s != nil && s.Token != nil && s.Identifier != ""
}

type KVDB struct {
	db *bbolt.DB
	sync.Mutex
}

func NewKVDB(db *bbolt.DB) (*KVDB, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BBOLTDB_SESSION_BUCKET))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error when creating session bucket: %w", err)
	}
	return &KVDB{db: db}, nil
}

func (db *KVDB) SaveSession(s *Session) error {
	db.Lock()
	defer db.Unlock()

	buf, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("error when encoding session: %w", err)
	}
	return db.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BBOLTDB_SESSION_BUCKET))
		return b.Put([]byte(s.ID), buf)
	})
}

func (db *KVDB) GetSession(id string) (*Session, error) {
	var buf []byte
	err := db.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BBOLTDB_SESSION_BUCKET))
		v := b.Get([]byte(id))
		if v == nil {
			return ErrorsKeyNotExists
		}
		// v is only valid inside the transaction
		buf = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s := &Session{}
	if err := msgpack.Unmarshal(buf, s); err != nil {
		return nil, fmt.Errorf("error when decoding session %s: %w", id, err)
	}
	return s, nil
}

func (db *KVDB) DeleteSession(id string) error {
	db.Lock()
	defer db.Unlock()
	return db.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BBOLTDB_SESSION_BUCKET)).Delete([]byte(id))
	})
}

// DeleteExpired removes sessions created before cutoff and returns how many were removed.
func (db *KVDB) DeleteExpired(cutoff time.Time) (int, error) {
	db.Lock()
	defer db.Unlock()

	removed := 0
	err := db.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BBOLTDB_SESSION_BUCKET))
		stale := [][]byte{}
		err := b.ForEach(func(k, v []byte) error {
			s := Session{}
			if err := msgpack.Unmarshal(v, &s); err != nil || s.CreatedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (db *KVDB) Close() error {
	return db.db.Close()
}

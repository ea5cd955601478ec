package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	namesBucket = []byte("names")

	ErrNotFound  = errors.New("name not found")
	ErrEmptyName = errors.New("name is empty")
)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens (or creates) the registry at dbPath. A non-positive timeout
// falls back to one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{namesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Reserve adds name to the registry. Reserving a held name keeps the
// original reservation and reports created=false.
func (s *Store) Reserve(name string) (res Reservation, created bool, err error) {
	key := NormalizeName(name)
	if key == "" {
		return Reservation{}, false, ErrEmptyName
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(namesBucket)
		if data := b.Get([]byte(key)); data != nil {
			return json.Unmarshal(data, &res)
		}

		res = Reservation{Name: key, CreatedAt: s.now().UTC()}
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		created = true
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return Reservation{}, false, fmt.Errorf("reserving %q: %w", key, err)
	}
	return res, created, nil
}

// Release removes name from the registry.
func (s *Store) Release(name string) error {
	key := NormalizeName(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(namesBucket)
		if b.Get([]byte(key)) == nil {
			return fmt.Errorf("releasing %q: %w", key, ErrNotFound)
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) IsReserved(name string) (bool, error) {
	key := NormalizeName(name)
	if key == "" {
		return false, nil
	}

	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(namesBucket).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// Get returns the reservation for name or ErrNotFound.
func (s *Store) Get(name string) (*Reservation, error) {
	key := NormalizeName(name)
	var res Reservation
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(namesBucket).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Names lists reservations in key order.
func (s *Store) Names() ([]Reservation, error) {
	var names []Reservation
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(namesBucket).ForEach(func(_ []byte, v []byte) error {
			var res Reservation
			if err := json.Unmarshal(v, &res); err != nil {
				return err
			}
			names = append(names, res)
			return nil
		})
	})
	return names, err
}

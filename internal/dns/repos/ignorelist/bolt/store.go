// Package bolt persists ignore rules in a bbolt database so large lists are
// loaded once and shared between runs.
package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist"
)

var (
	bucketExact  = []byte("exact")
	bucketSuffix = []byte("suffix")
	bucketMeta   = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// errCorruptValue is returned when a stored rule value is shorter than its timestamp prefix.
var errCorruptValue = errors.New("corrupt rule value")

// boltStore implements ignorelist.Store using bbolt.
//
// Layout:
//
//	exact/<name>            → addedAt(8) | source
//	suffix/<reversed name>  → addedAt(8) | source
//	meta/version, meta/updated → big-endian uint64
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (ignorelist.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketExact, bucketSuffix, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// GetFirstMatch checks the exact bucket, then walks suffix anchors from the
// full name up to the last label so the most specific suffix rule wins.
func (s *boltStore) GetFirstMatch(name string) (domain.IgnoreRule, bool, error) {
	var (
		rule  domain.IgnoreRule
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketExact).Get([]byte(name)); v != nil {
			r, err := decodeRule(name, domain.IgnoreRuleExact, v)
			if err != nil {
				return err
			}
			rule, found = r, true
			return nil
		}
		b := tx.Bucket(bucketSuffix)
		for anchor := name; anchor != ""; {
			if v := b.Get([]byte(reverse(anchor))); v != nil {
				r, err := decodeRule(anchor, domain.IgnoreRuleSuffix, v)
				if err != nil {
					return err
				}
				rule, found = r, true
				return nil
			}
			i := strings.IndexByte(anchor, '.')
			if i < 0 {
				break
			}
			anchor = anchor[i+1:]
		}
		return nil
	})
	return rule, found, err
}

// RebuildAll drops and recreates the rule buckets in one transaction.
func (s *boltStore) RebuildAll(rules []domain.IgnoreRule, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketExact, bucketSuffix} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
				return err
			}
		}
		exact, err := tx.CreateBucket(bucketExact)
		if err != nil {
			return err
		}
		suffix, err := tx.CreateBucket(bucketSuffix)
		if err != nil {
			return err
		}
		for _, r := range rules {
			switch r.Kind {
			case domain.IgnoreRuleExact:
				err = exact.Put([]byte(r.Name), encodeRule(r))
			case domain.IgnoreRuleSuffix:
				err = suffix.Put([]byte(reverse(r.Name)), encodeRule(r))
			default:
				continue
			}
			if err != nil {
				return fmt.Errorf("store rule %q: %w", r.Name, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyVersion, u64(version)); err != nil {
			return err
		}
		return meta.Put(keyUpdated, u64(uint64(updatedUnix)))
	})
}

func (s *boltStore) Stats() ignorelist.StoreStats {
	st := ignorelist.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		st.ExactCount = uint64(tx.Bucket(bucketExact).Stats().KeyN)
		st.SuffixCount = uint64(tx.Bucket(bucketSuffix).Stats().KeyN)
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keyVersion); len(v) == 8 {
			st.Version = binary.BigEndian.Uint64(v)
		}
		if v := meta.Get(keyUpdated); len(v) == 8 {
			st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return st
}

func encodeRule(r domain.IgnoreRule) []byte {
	buf := make([]byte, 8, 8+len(r.Source))
	binary.BigEndian.PutUint64(buf, uint64(r.AddedAt.Unix()))
	return append(buf, r.Source...)
}

func decodeRule(name string, kind domain.IgnoreRuleKind, v []byte) (domain.IgnoreRule, error) {
	if len(v) < 8 {
		return domain.IgnoreRule{}, fmt.Errorf("%w for %q", errCorruptValue, name)
	}
	return domain.IgnoreRule{
		Name:    name,
		Kind:    kind,
		AddedAt: time.Unix(int64(binary.BigEndian.Uint64(v[:8])), 0),
		Source:  string(v[8:]),
	}, nil
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// reverse mirrors the repository's suffix-anchor reversal.
func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

var _ ignorelist.Store = (*boltStore)(nil)

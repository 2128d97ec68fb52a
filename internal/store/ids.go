package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// NewButtonID returns a fresh "btn-" id not used by any button in db.
func (db *DB) NewButtonID() (string, error) {
	for i := 0; i < 8; i++ {
		id, err := newRandomID("btn")
		if err != nil {
			return "", err
		}
		if _, taken := db.FindButton(id); !taken {
			return id, nil
		}
	}
	return "", errIDExhausted
}

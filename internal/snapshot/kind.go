// Package snapshot holds the typed, shrunk upstream documents the engine caches per game,
// the lifecycle classifier and the canonical encoding used for content hashing.
//
// Each artifact kind has one struct that names only the fields the system consumes.
// Decoding a raw upstream document into that struct is the shrink step: everything
// not named is dropped before the payload is hashed or stored.
package snapshot

import (
	"fmt"
	"strings"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

// Kind identifies a cached artifact type.
type Kind string

const (
	KindBoxScore  Kind = "boxscore"
	KindLineScore Kind = "linescore"
	KindStatus    Kind = "status"
)

// Kinds lists every artifact kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindBoxScore, KindLineScore, KindStatus}
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBoxScore, KindLineScore, KindStatus:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown artifact kind %q", domain.ErrInvalidConfig, s)
}

// Document is a shrunk per-kind payload.
type Document interface {
	Kind() Kind
	// Shrink drops anything the system does not consume. It is idempotent.
	Shrink()
}

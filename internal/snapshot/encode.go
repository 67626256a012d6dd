package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

// Encode shrinks doc and returns its canonical serialization: struct fields in
// declaration order, map keys sorted, no insignificant whitespace. Two documents
// that differ only in upstream key order encode to identical bytes.
func Encode(doc Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("encode: nil document")
	}
	doc.Shrink()
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", doc.Kind(), err)
	}
	return data, nil
}

// ContentHash is the hex SHA-256 of a canonical payload.
func ContentHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func decodeInto(kind Kind, raw []byte, target Document) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty %s document", domain.ErrMalformedPayload, kind)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedPayload, kind, err)
	}
	target.Shrink()
	return nil
}

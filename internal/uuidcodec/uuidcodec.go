package uuidcodec

import (
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ID is a 128-bit entity identifier. Its text form is the canonical
// dashed-hex 8-4-4-4-12 layout; its storage form is the raw 16 bytes.
type ID [16]byte

var (
	// ErrInvalidFormat means the text form is not canonical dashed-hex.
	ErrInvalidFormat = errors.New("invalid identifier format")
	// ErrInvalidLength means the storage form is not exactly 16 bytes.
	ErrInvalidLength = errors.New("invalid identifier length")
)

// dashAt marks the positions of the separators in the canonical form.
var dashAt = map[int]bool{8: true, 13: true, 18: true, 23: true}

// Parse converts canonical dashed-hex text into an ID. Wrong length,
// misplaced dashes, or non-hex characters fail with ErrInvalidFormat.
// Upper and lowercase hex are both accepted; the ID renders lowercase.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != 36 {
		return id, fmt.Errorf("%w: length %d", ErrInvalidFormat, len(s))
	}

	buf := make([]byte, 0, 32)
	for i := 0; i < 36; i++ {
		c := s[i]
		if dashAt[i] {
			if c != '-' {
				return id, fmt.Errorf("%w: expected dash at position %d", ErrInvalidFormat, i)
			}
			continue
		}
		if !isHex(c) {
			return id, fmt.Errorf("%w: non-hex character at position %d", ErrInvalidFormat, i)
		}
		buf = append(buf, c)
	}

	if _, err := hex.Decode(id[:], buf); err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return id, nil
}

// FromBytes converts the raw storage form into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != 16 {
		return id, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// New returns a random identifier.
func New() ID {
	return ID(uuid.New())
}

// String renders the canonical lowercase dashed-hex form.
func (id ID) String() string {
	var out [36]byte
	h := make([]byte, 32)
	hex.Encode(h, id[:])

	j := 0
	for i := 0; i < 36; i++ {
		if dashAt[i] {
			out[i] = '-'
			continue
		}
		out[i] = h[j]
		j++
	}
	return string(out[:])
}

// Bytes returns the raw 16-byte storage form.
func (id ID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	return b
}

// IsZero reports whether the identifier is all zero bytes.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Value implements driver.Valuer so IDs write as 16 raw bytes.
func (id ID) Value() (driver.Value, error) {
	return id.Bytes(), nil
}

// Scan implements sql.Scanner so IDs read back from BYTEA columns.
func (id *ID) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("%w: unsupported source %T", ErrInvalidLength, src)
	}
	parsed, err := FromBytes(b)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText renders the canonical form for JSON payloads.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the canonical form from JSON payloads.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

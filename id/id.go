// Package id defines TypeID-based identity types for all Beatstore entities.
//
// Every entity in Beatstore uses a single ID struct with a prefix that
// identifies the entity type. IDs are K-sortable (UUIDv7-based), globally
// unique, and URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Beatstore entity types.
const (
	PrefixBeat         Prefix = "beat" // Catalog beat
	PrefixGenre        Prefix = "genre"
	PrefixSale         Prefix = "sale" // Ledger sale record
	PrefixCart         Prefix = "cart"
	PrefixPendingOrder Prefix = "po" // Pending provider order
	PrefixAccount      Prefix = "user"
	PrefixVerification Prefix = "vc"  // Email verification code
	PrefixReset        Prefix = "rst" // Password reset token
	PrefixSession      Prefix = "sess"
)

// ID is the primary identifier type for all Beatstore entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "beat_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// BeatID is a type-safe identifier for beats (prefix: "beat").
type BeatID = ID

// GenreID is a type-safe identifier for genres (prefix: "genre").
type GenreID = ID

// SaleID is a type-safe identifier for sale records (prefix: "sale").
type SaleID = ID

// CartID is a type-safe identifier for carts (prefix: "cart").
type CartID = ID

// PendingOrderID is a type-safe identifier for pending provider orders (prefix: "po").
type PendingOrderID = ID

// AccountID is a type-safe identifier for accounts (prefix: "user").
type AccountID = ID

// VerificationID is a type-safe identifier for verification codes (prefix: "vc").
type VerificationID = ID

// ResetID is a type-safe identifier for password reset tokens (prefix: "rst").
type ResetID = ID

// SessionID is a type-safe identifier for login sessions (prefix: "sess").
type SessionID = ID

// ──────────────────────────────────────────────────
// Convenience constructors and parsers
// ──────────────────────────────────────────────────

// NewBeatID generates a new unique beat ID.
func NewBeatID() ID { return New(PrefixBeat) }

// NewGenreID generates a new unique genre ID.
func NewGenreID() ID { return New(PrefixGenre) }

// NewSaleID generates a new unique sale ID.
func NewSaleID() ID { return New(PrefixSale) }

// NewCartID generates a new unique cart ID.
func NewCartID() ID { return New(PrefixCart) }

// NewPendingOrderID generates a new unique pending order ID.
func NewPendingOrderID() ID { return New(PrefixPendingOrder) }

// NewAccountID generates a new unique account ID.
func NewAccountID() ID { return New(PrefixAccount) }

// NewVerificationID generates a new unique verification code ID.
func NewVerificationID() ID { return New(PrefixVerification) }

// NewResetID generates a new unique reset token ID.
func NewResetID() ID { return New(PrefixReset) }

// NewSessionID generates a new unique session ID.
func NewSessionID() ID { return New(PrefixSession) }

// ParseBeatID parses a string and validates the "beat" prefix.
func ParseBeatID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBeat) }

// ParseGenreID parses a string and validates the "genre" prefix.
func ParseGenreID(s string) (ID, error) { return ParseWithPrefix(s, PrefixGenre) }

// ParseSaleID parses a string and validates the "sale" prefix.
func ParseSaleID(s string) (ID, error) { return ParseWithPrefix(s, PrefixSale) }

// ParsePendingOrderID parses a string and validates the "po" prefix.
func ParsePendingOrderID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPendingOrder) }

// ParseAccountID parses a string and validates the "user" prefix.
func ParseAccountID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAccount) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}

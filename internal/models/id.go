package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID is a 128-bit entity identifier. Its external form is always the
// unprefixed 32-character hex rendering, both on the wire and in storage;
// ParseID additionally tolerates the canonical dashed form on input.
type ID uuid.UUID

// NilID is the zero identifier. It never names a persisted entity.
var NilID = ID(uuid.Nil)

// NewID returns a random identifier.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID decodes the hex form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilID, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(u), nil
}

func (id ID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// String renders the 32-character hex form without dashes.
func (id ID) String() string {
	buf := [32]byte{}
	encodeHex(buf[:], uuid.UUID(id))
	return string(buf[:])
}

func encodeHex(dst []byte, u uuid.UUID) {
	const hextable = "0123456789abcdef"
	for i, b := range u {
		dst[i*2] = hextable[b>>4]
		dst[i*2+1] = hextable[b&0x0f]
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value stores the hex text form.
func (id ID) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan accepts the hex text form from the database.
func (id *ID) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseID(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		parsed, err := ParseID(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ID", src)
	}
}

// GormDataType fixes the column type for identifier fields.
func (ID) GormDataType() string {
	return "char(32)"
}

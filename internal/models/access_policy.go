package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Effect is the kind of grant a policy or request item expresses.
type Effect string

const (
	EffectAllow    Effect = "allow"    // permit the named fields
	EffectDeny     Effect = "deny"     // forbid the named fields
	EffectAllowAll Effect = "allowAll" // permit every field, exclusive per table
)

func (e Effect) IsValid() bool {
	switch e {
	case EffectAllow, EffectDeny, EffectAllowAll:
		return true
	}
	return false
}

// FieldList is a set of field names stored as a JSON array. A nil list
// persists as SQL NULL and serializes as JSON null, meaning "not
// field-scoped" — that is distinct from an empty array and clients
// depend on the difference.
type FieldList []string

func (f FieldList) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

func (f *FieldList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into FieldList", value)
	}
}

// AccessPolicy is one standing permission grant for a user on a table.
// The store does not enforce uniqueness per (user, table); conflicts
// between grants are checked at write time, not stored as a constraint.
type AccessPolicy struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index:idx_policies_user_table;not null" json:"userId"`
	SchemaID  int64     `gorm:"index;not null" json:"schemaId"`
	TableID   int64     `gorm:"index:idx_policies_user_table;not null" json:"tableId"`
	Effect    Effect    `gorm:"size:16;not null" json:"effect"`
	Fields    FieldList `gorm:"type:json" json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

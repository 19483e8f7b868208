package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Canonical field names. The identifying and email fields are configurable
// per service instance; these are the defaults and the names the built-in
// stores know how to address directly.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldIsConfirmed = "isConfirmed"
)

// Account is the identity record this package manages. Username is unique
// and immutable after creation. Extra registration fields that do not map
// onto a column live in Metadata.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string         `bun:"email,unique,nullzero" json:"email,omitempty"`
	PasswordHash  string         `bun:"password_hash,notnull" json:"-"`
	IsConfirmed   bool           `bun:"is_confirmed,notnull,default:false" json:"is_confirmed"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// FieldValue resolves a configured field name against the record. Names
// without a dedicated column fall through to Metadata.
func (a *Account) FieldValue(name string) (any, bool) {
	switch name {
	case FieldUsername:
		return a.Username, a.Username != ""
	case FieldEmail:
		return a.Email, a.Email != ""
	case FieldPassword:
		return a.PasswordHash, a.PasswordHash != ""
	case FieldIsConfirmed:
		return a.IsConfirmed, true
	default:
		v, ok := a.Metadata[name]
		return v, ok
	}
}

// SetField assigns a configured field name on the record, falling through
// to Metadata for names without a dedicated column.
func (a *Account) SetField(name string, value any) {
	switch name {
	case FieldUsername:
		a.Username, _ = value.(string)
	case FieldEmail:
		a.Email, _ = value.(string)
	case FieldPassword:
		a.PasswordHash, _ = value.(string)
	case FieldIsConfirmed:
		a.IsConfirmed, _ = value.(bool)
	default:
		if a.Metadata == nil {
			a.Metadata = map[string]any{}
		}
		a.Metadata[name] = value
	}
}

// Clone returns a deep copy, so stores can hand out records without sharing
// the Metadata map with callers.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}

	dup := *a
	if a.Metadata != nil {
		dup.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			dup.Metadata[k] = v
		}
	}

	return &dup
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

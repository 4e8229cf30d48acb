package domain

import (
	"context"
	"time"
)

// Recyclable adds the soft delete lifecycle to a record. DeletedAt and
// DestroyedAt are written only by the explicit Recycle/Restore/Destroy
// repository operations, never by normal updates.
type Recyclable struct {
	DeletedAt   *time.Time
	DestroyedAt *time.Time
}

// Recycled reports whether the record is soft deleted.
func (r *Recyclable) Recycled() bool {
	return r.DeletedAt != nil
}

// Destroyed reports whether the record is permanently removed.
func (r *Recyclable) Destroyed() bool {
	return r.DestroyedAt != nil
}

// Record is implemented by every persistable accounting record.
type Record interface {
	RecordID() string
}

// EntityScoped is implemented by every record that belongs to a tenant
// entity. Entity itself is the only record that is not entity scoped.
type EntityScoped interface {
	Record
	ScopeEntityID() string
}

// AccountLookup resolves accounts visible to the current session. It is
// the only collaborator domain validation needs.
type AccountLookup interface {
	AccountByID(ctx context.Context, id string) (*Account, error)
}

// Validatable is the validation capability. Records that do not implement
// it have no validation step; the session's flush gate dispatches on this
// interface instead of probing attributes at runtime.
type Validatable interface {
	Validate(ctx context.Context, accounts AccountLookup) error
}

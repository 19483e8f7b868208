package account

import "context"

// Store is the persistence capability the account service consumes. It owns
// all durable state; the service keeps none.
type Store interface {
	// FindByField returns the account whose field equals value, or
	// ErrAccountNotFound when absent.
	FindByField(ctx context.Context, field string, value any) (*Account, error)

	// Insert persists a new account. Implementations must reject records
	// whose identifying field is already taken with a duplicate error:
	// the service checks uniqueness before inserting, but the check and
	// the insert are not one atomic step, so the store is the backstop
	// for two concurrent registrations racing past the check.
	Insert(ctx context.Context, record *Account) error

	// SetFieldByIdentity mutates a single field of the account whose
	// identifying field equals identity. A missing account is a silent
	// no-op, not an error.
	SetFieldByIdentity(ctx context.Context, identity any, field string, value any) error
}

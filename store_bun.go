package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// BunStore is a Store backed by a relational table through bun. Field names
// are resolved against a fixed column map, so only fields with a dedicated
// column are addressable; deployments that configure custom field names
// must keep them on the built-in columns.
type BunStore struct {
	db             *bun.DB
	identityColumn string
	columns        map[string]string
}

// BunStoreOption customizes a BunStore.
type BunStoreOption func(*BunStore)

// WithBunIdentityField overrides the field used as the unique identifying
// key for mutations. Defaults to username.
func WithBunIdentityField(name string) BunStoreOption {
	return func(s *BunStore) {
		if col, ok := s.columns[name]; ok {
			s.identityColumn = col
		}
	}
}

// NewBunStore creates a Store over db. The accounts table must exist; see
// CreateTable for bootstrapping embedded databases.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{
		db: db,
		columns: map[string]string{
			FieldUsername:    "username",
			FieldEmail:       "email",
			FieldPassword:    "password_hash",
			FieldIsConfirmed: "is_confirmed",
		},
	}
	s.identityColumn = s.columns[FieldUsername]

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

var _ Store = (*BunStore)(nil)

func (s *BunStore) FindByField(ctx context.Context, field string, value any) (*Account, error) {
	column, err := s.column(field)
	if err != nil {
		return nil, err
	}

	record := &Account{}
	err = s.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	return record, nil
}

func (s *BunStore) Insert(ctx context.Context, record *Account) error {
	prepareAccountDefaults(record)

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return goerrors.Wrap(err, ErrDuplicateIdentity.Category, ErrDuplicateIdentity.Message).
				WithTextCode(ErrDuplicateIdentity.TextCode)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account insert failed")
	}

	return nil
}

func (s *BunStore) SetFieldByIdentity(ctx context.Context, identity any, field string, value any) error {
	column, err := s.column(field)
	if err != nil {
		return err
	}

	// NOTE: raw UPDATE, the ORM path does not reliably persist zero values.
	_, err = s.db.NewRaw(fmt.Sprintf(
		`UPDATE "accounts" SET %q = ?, "updated_at" = ? WHERE %q = ?`,
		column, s.identityColumn,
	), value, time.Now(), identity).Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account update failed")
	}

	return nil
}

// CreateTable creates the accounts table when it does not exist. Meant for
// embedded sqlite deployments and tests; managed databases should migrate
// their own schema.
func (s *BunStore) CreateTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Account)(nil)).
		IfNotExists().
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create accounts table")
	}

	return nil
}

func (s *BunStore) column(field string) (string, error) {
	if column, ok := s.columns[field]; ok {
		return column, nil
	}

	return "", goerrors.New("field is not addressable by this store", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"field": field})
}

package account_test

import (
	"context"
	"database/sql"
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT UNIQUE,
    password_hash TEXT NOT NULL,
    is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
    metadata TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`

func setupBunStore(t *testing.T, opts ...account.BunStoreOption) (*account.BunStore, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateAccounts)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return account.NewBunStore(bunDB, opts...), cleanup
}

func TestBunStoreInsertAndFind(t *testing.T) {
	store, cleanup := setupBunStore(t)
	defer cleanup()

	ctx := context.Background()

	record := &account.Account{
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, store.Insert(ctx, record))
	assert.NotEmpty(t, record.ID)

	t.Run("find by username", func(t *testing.T) {
		found, err := store.FindByField(ctx, account.FieldUsername, "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob", found.Username)
		assert.Equal(t, "bob@example.com", found.Email)
		assert.False(t, found.IsConfirmed)
	})

	t.Run("find by email", func(t *testing.T) {
		found, err := store.FindByField(ctx, account.FieldEmail, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, "bob", found.Username)
	})

	t.Run("absent record", func(t *testing.T) {
		_, err := store.FindByField(ctx, account.FieldUsername, "nobody")
		assert.Equal(t, account.ErrAccountNotFound, err)
	})

	t.Run("unknown field is not addressable", func(t *testing.T) {
		_, err := store.FindByField(ctx, "displayName", "Bob")
		require.Error(t, err)
		assert.NotEqual(t, account.ErrAccountNotFound, err)
	})
}

func TestBunStoreUniqueBackstop(t *testing.T) {
	store, cleanup := setupBunStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &account.Account{Username: "bob", PasswordHash: "x"}))

	err := store.Insert(ctx, &account.Account{Username: "bob", PasswordHash: "y"})
	require.Error(t, err)
	assert.True(t, account.IsDuplicateError(err))
}

func TestBunStoreSetFieldByIdentity(t *testing.T) {
	store, cleanup := setupBunStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &account.Account{Username: "bob", PasswordHash: "old"}))

	t.Run("password mutation", func(t *testing.T) {
		require.NoError(t, store.SetFieldByIdentity(ctx, "bob", account.FieldPassword, "new"))

		found, err := store.FindByField(ctx, account.FieldUsername, "bob")
		require.NoError(t, err)
		assert.Equal(t, "new", found.PasswordHash)
	})

	t.Run("confirmation mutation", func(t *testing.T) {
		require.NoError(t, store.SetFieldByIdentity(ctx, "bob", account.FieldIsConfirmed, true))

		found, err := store.FindByField(ctx, account.FieldUsername, "bob")
		require.NoError(t, err)
		assert.True(t, found.IsConfirmed)
	})

	t.Run("missing identity is a silent no-op", func(t *testing.T) {
		assert.NoError(t, store.SetFieldByIdentity(ctx, "nobody", account.FieldPassword, "x"))
	})
}

func TestBunStoreCustomIdentityField(t *testing.T) {
	store, cleanup := setupBunStore(t, account.WithBunIdentityField(account.FieldEmail))
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &account.Account{
		Username: "bob",
		Email:    "bob@example.com",
	}))

	require.NoError(t, store.SetFieldByIdentity(ctx, "bob@example.com", account.FieldIsConfirmed, true))

	found, err := store.FindByField(ctx, account.FieldEmail, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, found.IsConfirmed)
}

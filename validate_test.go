package account_test

import (
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	schema := account.Schema{
		"username": {account.RuleRequired, account.RuleString},
		"password": {account.RuleRequired, account.RuleString},
		"email":    {account.RuleRequired, account.RuleString, account.RuleEmail},
	}

	t.Run("valid data", func(t *testing.T) {
		err := account.Validate(schema, map[string]any{
			"username": "bob",
			"password": "pw1",
			"email":    "bob@example.com",
		})
		assert.NoError(t, err)
	})

	t.Run("collects every failing field", func(t *testing.T) {
		err := account.Validate(schema, map[string]any{
			"password": 42,
			"email":    "not-an-email",
		})
		require.Error(t, err)

		fields := account.ValidationFields(err)
		assert.Len(t, fields, 3)
		assert.Contains(t, fields, "username")
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "email")
	})

	t.Run("type rules skip absent optional fields", func(t *testing.T) {
		err := account.Validate(account.Schema{
			"nickname": {account.RuleString},
			"age":      {account.RuleNumber},
		}, map[string]any{})
		assert.NoError(t, err)
	})

	t.Run("number rule", func(t *testing.T) {
		err := account.Validate(account.Schema{
			"age": {account.RuleRequired, account.RuleNumber},
		}, map[string]any{"age": 42})
		assert.NoError(t, err)

		err = account.Validate(account.Schema{
			"age": {account.RuleRequired, account.RuleNumber},
		}, map[string]any{"age": "forty-two"})
		require.Error(t, err)
		assert.Equal(t, "must be a number", account.ValidationFields(err)["age"])
	})

	t.Run("any requires presence only", func(t *testing.T) {
		err := account.Validate(account.Schema{
			"content": {account.RuleAny},
		}, map[string]any{"content": map[string]any{"nested": true}})
		assert.NoError(t, err)

		err = account.Validate(account.Schema{
			"content": {account.RuleAny},
		}, map[string]any{})
		require.Error(t, err)
	})

	t.Run("required rejects empty strings", func(t *testing.T) {
		err := account.Validate(account.Schema{
			"username": {account.RuleRequired, account.RuleString},
		}, map[string]any{"username": ""})
		require.Error(t, err)
		assert.Contains(t, account.ValidationFields(err), "username")
	})

	t.Run("unknown rule fails the field", func(t *testing.T) {
		err := account.Validate(account.Schema{
			"username": {"type:banana"},
		}, map[string]any{"username": "bob"})
		require.Error(t, err)
	})
}

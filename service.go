package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Default expiry windows for the three action-token types.
const (
	DefaultLoginTTL         = time.Hour
	DefaultPasswordResetTTL = 5 * time.Minute
	DefaultConfirmationTTL  = 24 * time.Hour
)

// Config holds the construction-time options of a Service. It is copied at
// construction and immutable afterwards.
type Config struct {
	// IdentityField is the account attribute used as primary lookup key.
	// Defaults to username.
	IdentityField string
	// EmailField optionally names the attribute holding an email address.
	// It may equal IdentityField for deployments where usernames are
	// email addresses.
	EmailField string
	// SigningSecret keys every action token issued by this instance.
	SigningSecret string
	// Expiry windows per token type. Zero values take the defaults above.
	LoginTTL         time.Duration
	PasswordResetTTL time.Duration
	ConfirmationTTL  time.Duration
}

// Service orchestrates registration, credential verification, and the three
// token-typed workflows over an injected Store and optional notification
// sinks. It holds no mutable state and is safe for concurrent use; ordering
// guarantees are per call chain only.
type Service struct {
	store            Store
	secret           []byte
	identityField    string
	emailField       string
	hasDistinctEmail bool
	loginTTL         time.Duration
	resetTTL         time.Duration
	confirmationTTL  time.Duration
	resetSink        Sink
	confirmationSink Sink
	logger           Logger
}

// NewService builds a Service over store. The identity/email field variant
// is resolved here, once, rather than re-branched on every call.
func NewService(store Store, cfg Config) (*Service, error) {
	if store == nil {
		return nil, goerrors.New("store is required", goerrors.CategoryBadInput)
	}

	if cfg.SigningSecret == "" {
		return nil, goerrors.New("signing secret is required", goerrors.CategoryBadInput)
	}

	identityField := cfg.IdentityField
	if identityField == "" {
		identityField = FieldUsername
	}

	s := &Service{
		store:            store,
		secret:           []byte(cfg.SigningSecret),
		identityField:    identityField,
		emailField:       cfg.EmailField,
		hasDistinctEmail: cfg.EmailField != "" && cfg.EmailField != identityField,
		loginTTL:         cfg.LoginTTL,
		resetTTL:         cfg.PasswordResetTTL,
		confirmationTTL:  cfg.ConfirmationTTL,
		logger:           defLogger{},
	}

	if s.loginTTL <= 0 {
		s.loginTTL = DefaultLoginTTL
	}
	if s.resetTTL <= 0 {
		s.resetTTL = DefaultPasswordResetTTL
	}
	if s.confirmationTTL <= 0 {
		s.confirmationTTL = DefaultConfirmationTTL
	}

	return s, nil
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithPasswordResetSink enables the password-reset workflow. Without a
// sink, SendPasswordReset fails with ErrCapabilityNotConfigured.
func (s *Service) WithPasswordResetSink(sink Sink) *Service {
	s.resetSink = sink
	return s
}

// WithConfirmationSink enables the confirmation workflow. Without a sink,
// SendConfirmation fails with ErrCapabilityNotConfigured.
func (s *Service) WithConfirmationSink(sink Sink) *Service {
	s.confirmationSink = sink
	return s
}

// registrationSchema builds the validation schema for Register. When the
// email field shares the identity field's name its rules take precedence,
// so an email-as-username deployment validates the value as an email.
func (s *Service) registrationSchema() Schema {
	schema := Schema{
		s.identityField: {RuleRequired, RuleString},
		FieldPassword:   {RuleRequired, RuleString},
	}

	if s.emailField != "" {
		schema[s.emailField] = []string{RuleRequired, RuleString, RuleEmail}
	}

	return schema
}

// Register validates data, enforces uniqueness of the identifying field
// (and the email field when distinct), hashes the password, and inserts the
// account unconfirmed. The duplicate checks and the insert are deliberately
// not one atomic step; the store's own uniqueness enforcement is the
// backstop for concurrent registrations racing past the check.
func (s *Service) Register(ctx context.Context, data map[string]any) (*Account, error) {
	if err := Validate(s.registrationSchema(), data); err != nil {
		return nil, err
	}

	identity := data[s.identityField]
	existing, err := s.lookup(ctx, s.identityField, identity)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateError(s.identityField)
	}

	if s.hasDistinctEmail {
		existing, err = s.lookup(ctx, s.emailField, data[s.emailField])
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, duplicateError(s.emailField)
		}
	}

	password, _ := data[FieldPassword].(string)
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	record := &Account{}
	for field, value := range data {
		if field == FieldPassword {
			continue
		}
		record.SetField(field, value)
	}
	record.SetField(FieldPassword, hash)
	record.IsConfirmed = false

	if err := s.store.Insert(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Authenticate verifies credentials and issues a login token. An unknown
// identity and a wrong password fail with the same generic error; callers
// must not be able to tell which check failed. When a distinct email field
// is configured the identifier is also tried against it.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (string, error) {
	record, err := s.lookup(ctx, s.identityField, identifier)
	if err != nil {
		return "", err
	}

	if record == nil && s.hasDistinctEmail {
		if record, err = s.lookup(ctx, s.emailField, identifier); err != nil {
			return "", err
		}
	}

	if record == nil {
		return "", ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, record.PasswordHash); err != nil {
		if goerrors.Is(err, ErrPasswordMismatch) {
			return "", ErrInvalidCredentials
		}
		s.logger.Error("Authenticate hash comparison failed", "error", err)
		return "", err
	}

	return s.signActionToken(TokenTypeLogin, record, s.loginTTL)
}

// ValidateLoginToken decodes a token and requires its type to be login.
// Returns the decoded claims with bookkeeping fields stripped.
func (s *Service) ValidateLoginToken(tokenString string) (map[string]any, error) {
	claims, err := DecodeToken(s.secret, tokenString)
	if err != nil {
		return nil, err
	}

	if claims[tokenTypeClaim] != TokenTypeLogin {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}

// SendPasswordReset issues a password-reset token for the account and hands
// it to the configured reset sink. Sink errors propagate unmodified.
func (s *Service) SendPasswordReset(ctx context.Context, identifier string) error {
	if s.resetSink == nil {
		return capabilityError("password-reset")
	}

	record, err := s.lookup(ctx, s.identityField, identifier)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrAccountNotFound
	}

	token, err := s.signActionToken(TokenTypePasswordReset, record, s.resetTTL)
	if err != nil {
		return err
	}

	return s.resetSink.Send(ctx, Notification{Token: token, Account: record})
}

// ResetPasswordWithToken consumes a password-reset token and replaces the
// account's password hash. The mutation is by-identity: if the account was
// deleted between issue and consumption the store no-ops silently.
func (s *Service) ResetPasswordWithToken(ctx context.Context, tokenString, newPassword string) error {
	err := Validate(Schema{
		"token":       {RuleRequired, RuleString},
		"newPassword": {RuleRequired, RuleString},
	}, map[string]any{
		"token":       tokenString,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}

	identity, err := s.consumeToken(tokenString, TokenTypePasswordReset)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.store.SetFieldByIdentity(ctx, identity, FieldPassword, hash)
}

// SendConfirmation issues a confirmation token for an unconfirmed account
// and hands it to the configured confirmation sink.
func (s *Service) SendConfirmation(ctx context.Context, identifier string) error {
	if s.confirmationSink == nil {
		return capabilityError("confirmation")
	}

	record, err := s.lookup(ctx, s.identityField, identifier)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrAccountNotFound
	}

	if record.IsConfirmed {
		return ErrAlreadyConfirmed
	}

	token, err := s.signActionToken(TokenTypeConfirmation, record, s.confirmationTTL)
	if err != nil {
		return err
	}

	return s.confirmationSink.Send(ctx, Notification{Token: token, Account: record})
}

// ConfirmWithToken consumes a confirmation token and marks the account
// confirmed. Consumption is idempotent on purpose: replaying a still-valid
// token re-sets the flag and succeeds, unlike SendConfirmation which
// rejects already-confirmed accounts.
func (s *Service) ConfirmWithToken(ctx context.Context, tokenString string) error {
	identity, err := s.consumeToken(tokenString, TokenTypeConfirmation)
	if err != nil {
		return err
	}

	return s.store.SetFieldByIdentity(ctx, identity, FieldIsConfirmed, true)
}

// FindByIdentity looks the account up by the configured identifying field.
func (s *Service) FindByIdentity(ctx context.Context, value any) (*Account, error) {
	return s.store.FindByField(ctx, s.identityField, value)
}

// FindByEmail looks the account up by the configured email field. It fails
// with ErrCapabilityNotConfigured when no email field was configured.
func (s *Service) FindByEmail(ctx context.Context, value any) (*Account, error) {
	if s.emailField == "" {
		return nil, capabilityError("email-field")
	}

	return s.store.FindByField(ctx, s.emailField, value)
}

// lookup translates the store's not-found failure into absence, so
// workflow code reads as presence checks.
func (s *Service) lookup(ctx context.Context, field string, value any) (*Account, error) {
	record, err := s.store.FindByField(ctx, field, value)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	return record, nil
}

// signActionToken issues a typed token whose identity claim is keyed by the
// configured identifying field name, so decoded claims read naturally for
// callers regardless of configuration.
func (s *Service) signActionToken(tokenType string, record *Account, ttl time.Duration) (string, error) {
	identity, ok := record.FieldValue(s.identityField)
	if !ok {
		return "", goerrors.New("account is missing its identifying field", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"field": s.identityField})
	}

	return SignToken(s.secret, ttl, map[string]any{
		tokenTypeClaim:  tokenType,
		s.identityField: identity,
	})
}

// consumeToken decodes a token, gates on its type, and extracts the
// identity claim. Token type is the sole authorization gate: there is no
// revocation or single-use bookkeeping, a leaked token stays valid until
// it expires.
func (s *Service) consumeToken(tokenString, wantType string) (any, error) {
	claims, err := DecodeToken(s.secret, tokenString)
	if err != nil {
		return nil, err
	}

	if claims[tokenTypeClaim] != wantType {
		return nil, ErrInvalidTokenType
	}

	identity, ok := claims[s.identityField]
	if !ok {
		return nil, ErrTokenMalformed
	}

	return identity, nil
}

func duplicateError(field string) error {
	return ErrDuplicateIdentity.Clone().
		WithMetadata(map[string]any{"field": field})
}

func capabilityError(capability string) error {
	return ErrCapabilityNotConfigured.Clone().
		WithMetadata(map[string]any{"capability": capability})
}

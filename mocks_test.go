package booktracker_test

import (
	"context"
	"database/sql"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/booktrackerhq/booktracker"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockUsers implements booktracker.Users for the methods the flows touch.
// The embedded interface panics on anything unexpected.
type MockUsers struct {
	mock.Mock
	booktracker.Users
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*booktracker.User, error) {
	args := m.Called(ctx, identifier)
	if u, ok := args.Get(0).(*booktracker.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *booktracker.User, criteria ...repository.InsertCriteria) (*booktracker.User, error) {
	args := m.Called(ctx, tx, record)
	if u, ok := args.Get(0).(*booktracker.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Activate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) SetLoggedIn(ctx context.Context, id uuid.UUID, loggedIn bool) error {
	args := m.Called(ctx, id, loggedIn)
	return args.Error(0)
}

func (m *MockUsers) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockLibraries implements booktracker.Libraries for the methods the flows
// touch.
type MockLibraries struct {
	mock.Mock
	booktracker.Libraries
}

func (m *MockLibraries) GetByUserID(ctx context.Context, userID uuid.UUID) (*booktracker.Library, error) {
	args := m.Called(ctx, userID)
	if l, ok := args.Get(0).(*booktracker.Library); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLibraries) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*booktracker.Library, error) {
	args := m.Called(ctx, userID)
	if l, ok := args.Get(0).(*booktracker.Library); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLibraries) AddBook(ctx context.Context, userID uuid.UUID, book booktracker.Book) (*booktracker.Library, error) {
	args := m.Called(ctx, userID, book)
	if l, ok := args.Get(0).(*booktracker.Library); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepositoryManager implements booktracker.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Users() booktracker.Users {
	args := m.Called()
	return args.Get(0).(booktracker.Users)
}

func (m *MockRepositoryManager) Libraries() booktracker.Libraries {
	args := m.Called()
	return args.Get(0).(booktracker.Libraries)
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// MockTokenStore implements booktracker.TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Put(ctx context.Context, scope booktracker.TokenScope, hash, userID string, ttl time.Duration) error {
	args := m.Called(ctx, scope, hash, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) Get(ctx context.Context, scope booktracker.TokenScope, hash string) (string, error) {
	args := m.Called(ctx, scope, hash)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStore) Delete(ctx context.Context, scope booktracker.TokenScope, hash string) error {
	args := m.Called(ctx, scope, hash)
	return args.Error(0)
}

// MockMailer implements booktracker.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMailer) SendAccountVerification(to, hash string) error {
	args := m.Called(to, hash)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(to, hash string) error {
	args := m.Called(to, hash)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordChanged(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

// MockCredentialVerifier implements booktracker.CredentialVerifier
type MockCredentialVerifier struct {
	mock.Mock
}

func (m *MockCredentialVerifier) VerifyCredentials(ctx context.Context, identifier, password string) (*booktracker.User, error) {
	args := m.Called(ctx, identifier, password)
	if u, ok := args.Get(0).(*booktracker.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// noopMailer never fails and never records, for flows where email is
// incidental.
type noopMailer struct{}

func (noopMailer) IsEnabled() bool                           { return false }
func (noopMailer) SendAccountVerification(_, _ string) error { return nil }
func (noopMailer) SendPasswordReset(_, _ string) error       { return nil }
func (noopMailer) SendPasswordChanged(_ string) error        { return nil }

package maria

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/hostadmin/internal/result"
)

func newTestManager(conn Conn) *Manager {
	return NewManager(conn, zerolog.Nop())
}

// ---------- CreateUser ----------

func TestManager_CreateUser_New(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, "CREATE USER IF NOT EXISTS ?@'%' IDENTIFIED BY ?", mock.Anything).
		Return(fakeResult{affected: 1}, nil)

	res, err := m.CreateUser(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)
	assert.Len(t, res.Value, 32)
	conn.AssertExpectations(t)
}

func TestManager_CreateUser_AlreadyExists(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(fakeResult{affected: 0}, nil)

	res, err := m.CreateUser(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Unchanged, res.State)
	assert.Empty(t, res.Value)
}

func TestManager_CreateUser_BindsNameAndPassword(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	var bound []any
	conn.On("ExecContext", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { bound = args.Get(2).([]any) }).
		Return(fakeResult{affected: 1}, nil)

	res, err := m.CreateUser(ctx, "spqr")
	require.NoError(t, err)
	require.Len(t, bound, 2)
	assert.Equal(t, "spqr", bound[0])
	assert.Equal(t, string(res.Value), bound[1])
}

func TestManager_CreateUser_ExecError(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("server gone away"))

	_, err := m.CreateUser(ctx, "spqr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create user spqr")
}

// ---------- ResetPassword ----------

func TestManager_ResetPassword_Existing(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, "SET PASSWORD FOR ?@'%' = PASSWORD(?)", mock.Anything).
		Return(fakeResult{affected: 1}, nil)

	res, err := m.ResetPassword(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)
	assert.Len(t, res.Value, 32)
}

func TestManager_ResetPassword_MissingUser(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(fakeResult{affected: 0}, nil)

	_, err := m.ResetPassword(ctx, "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "nobody")
}

func TestManager_ResetPassword_GeneratesFreshSecret(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(fakeResult{affected: 1}, nil)

	first, err := m.ResetPassword(ctx, "spqr")
	require.NoError(t, err)
	second, err := m.ResetPassword(ctx, "spqr")
	require.NoError(t, err)
	assert.NotEqual(t, first.Value, second.Value)
}

// ---------- DropUser ----------

func TestManager_DropUser_Idempotent(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, "DROP USER IF EXISTS ?@'%'", mock.Anything).
		Return(fakeResult{affected: 1}, nil).Once()
	conn.On("ExecContext", ctx, "DROP USER IF EXISTS ?@'%'", mock.Anything).
		Return(fakeResult{affected: 0}, nil).Once()

	res, err := m.DropUser(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)

	res, err = m.DropUser(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Unchanged, res.State)
}

// ---------- Grant / Revoke ----------

func TestManager_GrantThenRevokeTwice(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, "GRANT ALL ON `spqr`.* TO ?@'%'", []any{"spqr"}).
		Return(fakeResult{affected: 1}, nil).Once()
	conn.On("ExecContext", ctx, "REVOKE ALL ON `spqr`.* FROM ?@'%'", []any{"spqr"}).
		Return(fakeResult{affected: 1}, nil).Once()
	conn.On("ExecContext", ctx, "REVOKE ALL ON `spqr`.* FROM ?@'%'", []any{"spqr"}).
		Return(fakeResult{affected: 0}, nil).Once()

	res, err := m.GrantDatabase(ctx, "spqr", "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)

	res, err = m.RevokeDatabase(ctx, "spqr", "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)

	res, err = m.RevokeDatabase(ctx, "spqr", "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Unchanged, res.State)
	conn.AssertExpectations(t)
}

func TestManager_GrantDatabase_QuotesIdentifier(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	// A backtick in the name must not break out of the identifier.
	conn.On("ExecContext", ctx, "GRANT ALL ON `foo``bar`.* TO ?@'%'", []any{"spqr"}).
		Return(fakeResult{affected: 1}, nil)

	_, err := m.GrantDatabase(ctx, "spqr", "foo`bar")
	require.NoError(t, err)
	conn.AssertExpectations(t)
}

// ---------- Databases ----------

func TestManager_CreateDatabase_AlwaysSuccess(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	// Whether or not the database pre-existed, the report is success:
	// the statement has no reliable affected-row signal.
	conn.On("ExecContext", ctx, "CREATE DATABASE IF NOT EXISTS `spqr`", mock.Anything).
		Return(fakeResult{affected: 1}, nil).Once()
	conn.On("ExecContext", ctx, "CREATE DATABASE IF NOT EXISTS `spqr`", mock.Anything).
		Return(fakeResult{affected: 0}, nil).Once()

	res, err := m.CreateDatabase(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)

	res, err = m.CreateDatabase(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)
}

func TestManager_DropDatabase_AlwaysSuccess(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("ExecContext", ctx, "DROP DATABASE IF EXISTS `spqr`", mock.Anything).
		Return(fakeResult{affected: 0}, nil)

	res, err := m.DropDatabase(ctx, "spqr")
	require.NoError(t, err)
	assert.Equal(t, result.Success, res.State)
}

func TestManager_ListDatabases(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	rows := newMockRows(
		func(dest ...any) error { *(dest[0].(*string)) = "spqr"; return nil },
		func(dest ...any) error { *(dest[0].(*string)) = "spqr_wiki"; return nil },
	)
	conn.On("QueryContext", ctx, "SHOW DATABASES LIKE ?", []any{"spqr%"}).Return(rows, nil)

	names, err := m.ListDatabases(ctx, "spqr%")
	require.NoError(t, err)
	assert.Equal(t, []string{"spqr", "spqr_wiki"}, names)
}

func TestManager_ListDatabases_DefaultPattern(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	conn.On("QueryContext", ctx, "SHOW DATABASES LIKE ?", []any{"%"}).Return(newMockRows(), nil)

	names, err := m.ListDatabases(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
	conn.AssertExpectations(t)
}

func TestManager_ListDatabases_IterationError(t *testing.T) {
	conn := &mockConn{}
	m := newTestManager(conn)
	ctx := context.Background()

	rows := newMockRows()
	rows.err = errors.New("connection reset")
	conn.On("QueryContext", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	_, err := m.ListDatabases(ctx, "%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterate databases")
}

// ---------- quoteIdent ----------

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`spqr`", quoteIdent("spqr"))
	assert.Equal(t, "`foo``bar`", quoteIdent("foo`bar"))
	assert.Equal(t, "`a``````b`", quoteIdent("a```b"))
}

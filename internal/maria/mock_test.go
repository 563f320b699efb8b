package maria

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
)

// ---------- Mock Conn ----------

// mockConn implements the Conn interface for testing.
type mockConn struct {
	mock.Mock
}

func (m *mockConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	called := m.Called(ctx, query, args)
	if called.Get(0) == nil {
		return nil, called.Error(1)
	}
	return called.Get(0).(sql.Result), called.Error(1)
}

func (m *mockConn) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	called := m.Called(ctx, query, args)
	if called.Get(0) == nil {
		return nil, called.Error(1)
	}
	return called.Get(0).(Rows), called.Error(1)
}

// ---------- Fake sql.Result ----------

type fakeResult struct {
	affected int64
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

// ---------- Mock Rows ----------

// mockRows implements Rows, yielding one scan function per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error   { return m.err }
func (m *mockRows) Close() error { return nil }

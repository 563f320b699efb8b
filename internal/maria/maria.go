// Package maria implements database account maintenance against a
// MariaDB/MySQL server: user lifecycle, per-database grants, and
// database lifecycle. Every operation is a single statement executed on
// a caller-supplied connection; the package never opens or closes
// connections itself.
package maria

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/hostadmin/internal/result"
	"github.com/edvin/hostadmin/internal/secrets"
)

// ErrUserNotFound is returned when an operation names a user that does
// not exist on the server. Resetting a missing user's password is a
// caller mistake, not a no-op.
var ErrUserNotFound = errors.New("database user not found")

// Rows is the subset of row iteration the manager needs.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Conn is the connection collaborator: parameterized execution with an
// affected-row report, plus row iteration. Wrap adapts *sql.DB.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

type sqlConn struct {
	db *sql.DB
}

func (c sqlConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

func (c sqlConn) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// Wrap adapts a *sql.DB to the Conn collaborator. The DSN must enable
// client-side parameter interpolation so user names and passwords can be
// bound inside DDL statements (db.OpenMaria takes care of this).
func Wrap(db *sql.DB) Conn {
	return sqlConn{db: db}
}

// Manager runs account operations on one connection with a call-scoped
// logger.
type Manager struct {
	conn   Conn
	logger zerolog.Logger
}

// NewManager creates a Manager.
func NewManager(conn Conn, logger zerolog.Logger) *Manager {
	return &Manager{
		conn:   conn,
		logger: logger.With().Str("component", "maria-manager").Logger(),
	}
}

// quoteIdent embeds a database or table name into statement text.
// Backticks are doubled and the result wrapped in backticks. This is the
// sole escape path for identifiers; everything else is a bound
// parameter.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// exec runs one statement and reports whether any rows were affected.
func (m *Manager) exec(ctx context.Context, query string, args ...any) (bool, error) {
	m.logger.Debug().Str("query", query).Msg("executing statement")

	res, err := m.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser creates a user with a freshly generated random password if
// no user with that name exists. The password is carried in the result
// only when the user was actually created.
func (m *Manager) CreateUser(ctx context.Context, name string) (result.Result[secrets.Password], error) {
	passwd := secrets.NewPassword()

	created, err := m.exec(ctx, "CREATE USER IF NOT EXISTS ?@'%' IDENTIFIED BY ?", name, string(passwd))
	if err != nil {
		return result.NoChange[secrets.Password](), fmt.Errorf("create user %s: %w", name, err)
	}
	if !created {
		return result.NoChange[secrets.Password](), nil
	}

	m.logger.Info().
		Str("user", name).
		Str("password_sha256", passwd.Fingerprint()).
		Msg("created database user")
	return result.SuccessfulValue(passwd), nil
}

// ResetPassword sets a freshly generated password for an existing user.
// Returns ErrUserNotFound when no such user exists.
func (m *Manager) ResetPassword(ctx context.Context, name string) (result.Result[secrets.Password], error) {
	passwd := secrets.NewPassword()

	reset, err := m.exec(ctx, "SET PASSWORD FOR ?@'%' = PASSWORD(?)", name, string(passwd))
	if err != nil {
		return result.NoChange[secrets.Password](), fmt.Errorf("reset password for %s: %w", name, err)
	}
	if !reset {
		return result.NoChange[secrets.Password](), fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}

	m.logger.Info().
		Str("user", name).
		Str("password_sha256", passwd.Fingerprint()).
		Msg("reset database user password")
	return result.SuccessfulValue(passwd), nil
}

// DropUser drops a user if present. All of its grants go with it, a
// property of the server's privilege model.
func (m *Manager) DropUser(ctx context.Context, name string) (result.Result[struct{}], error) {
	dropped, err := m.exec(ctx, "DROP USER IF EXISTS ?@'%'", name)
	if err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("drop user %s: %w", name, err)
	}
	if dropped {
		m.logger.Info().Str("user", name).Msg("dropped database user")
	}
	return result.IfChanged[struct{}](dropped), nil
}

// GrantDatabase grants all privileges on the database to the user.
func (m *Manager) GrantDatabase(ctx context.Context, user, db string) (result.Result[struct{}], error) {
	query := fmt.Sprintf("GRANT ALL ON %s.* TO ?@'%%'", quoteIdent(db))
	changed, err := m.exec(ctx, query, user)
	if err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("grant %s on %s: %w", user, db, err)
	}
	if changed {
		m.logger.Info().Str("user", user).Str("database", db).Msg("granted database access")
	}
	return result.IfChanged[struct{}](changed), nil
}

// RevokeDatabase removes the user's privileges on the database.
func (m *Manager) RevokeDatabase(ctx context.Context, user, db string) (result.Result[struct{}], error) {
	query := fmt.Sprintf("REVOKE ALL ON %s.* FROM ?@'%%'", quoteIdent(db))
	changed, err := m.exec(ctx, query, user)
	if err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("revoke %s on %s: %w", user, db, err)
	}
	if changed {
		m.logger.Info().Str("user", user).Str("database", db).Msg("revoked database access")
	}
	return result.IfChanged[struct{}](changed), nil
}

// CreateDatabase creates a database if absent. No privileges are
// granted. Always reports success: CREATE DATABASE IF NOT EXISTS gives
// no usable affected-row signal, so created and pre-existing are not
// distinguished.
func (m *Manager) CreateDatabase(ctx context.Context, name string) (result.Result[struct{}], error) {
	if _, err := m.exec(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(name)); err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("create database %s: %w", name, err)
	}
	m.logger.Info().Str("database", name).Msg("ensured database exists")
	return result.Successful[struct{}](), nil
}

// ListDatabases fetches names of all databases matching the LIKE
// pattern, in server order. The default pattern matches everything.
func (m *Manager) ListDatabases(ctx context.Context, like string) ([]string, error) {
	if like == "" {
		like = "%"
	}

	rows, err := m.conn.QueryContext(ctx, "SHOW DATABASES LIKE ?", like)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan database name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate databases: %w", err)
	}
	return names, nil
}

// DropDatabase drops a database and all of its tables if present.
// Always reports success; DROP DATABASE IF EXISTS reports the number of
// tables dropped, not whether the database existed.
func (m *Manager) DropDatabase(ctx context.Context, name string) (result.Result[struct{}], error) {
	if _, err := m.exec(ctx, "DROP DATABASE IF EXISTS "+quoteIdent(name)); err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("drop database %s: %w", name, err)
	}
	m.logger.Info().Str("database", name).Msg("ensured database is absent")
	return result.Successful[struct{}](), nil
}

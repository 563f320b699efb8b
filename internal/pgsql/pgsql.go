// Package pgsql implements database account maintenance against the
// platform's PostgreSQL service, mirroring the reporting contract of
// internal/maria. Postgres DDL takes no bound parameters, so existence
// is probed through the system catalogs and identifiers and password
// literals are embedded through dedicated quoting helpers.
package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/edvin/hostadmin/internal/result"
	"github.com/edvin/hostadmin/internal/secrets"
)

// ErrUserNotFound is returned when an operation names a role that does
// not exist on the server.
var ErrUserNotFound = errors.New("database role not found")

// DB defines the database operations the manager needs.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Manager runs account operations on one connection pool with a
// call-scoped logger.
type Manager struct {
	db     DB
	logger zerolog.Logger
}

// NewManager creates a Manager.
func NewManager(db DB, logger zerolog.Logger) *Manager {
	return &Manager{
		db:     db,
		logger: logger.With().Str("component", "pgsql-manager").Logger(),
	}
}

// quoteIdent embeds a role or database name into statement text.
// Double quotes are doubled and the result wrapped in double quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral embeds a string literal (only ever the generated
// password, which DDL cannot take as a parameter) into statement text.
func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (m *Manager) roleExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role %s: %w", name, err)
	}
	return exists, nil
}

func (m *Manager) databaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check database %s: %w", name, err)
	}
	return exists, nil
}

// CreateUser creates a login role with a freshly generated random
// password, if no role with that name exists.
func (m *Manager) CreateUser(ctx context.Context, name string) (result.Result[secrets.Password], error) {
	exists, err := m.roleExists(ctx, name)
	if err != nil {
		return result.NoChange[secrets.Password](), err
	}
	if exists {
		return result.NoChange[secrets.Password](), nil
	}

	passwd := secrets.NewPassword()
	stmt := fmt.Sprintf("CREATE ROLE %s LOGIN PASSWORD %s", quoteIdent(name), quoteLiteral(string(passwd)))
	if _, err := m.db.Exec(ctx, stmt); err != nil {
		return result.NoChange[secrets.Password](), fmt.Errorf("create role %s: %w", name, err)
	}

	m.logger.Info().
		Str("role", name).
		Str("password_sha256", passwd.Fingerprint()).
		Msg("created database role")
	return result.SuccessfulValue(passwd), nil
}

// ResetPassword sets a freshly generated password for an existing role.
// Returns ErrUserNotFound when no such role exists.
func (m *Manager) ResetPassword(ctx context.Context, name string) (result.Result[secrets.Password], error) {
	exists, err := m.roleExists(ctx, name)
	if err != nil {
		return result.NoChange[secrets.Password](), err
	}
	if !exists {
		return result.NoChange[secrets.Password](), fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}

	passwd := secrets.NewPassword()
	stmt := fmt.Sprintf("ALTER ROLE %s PASSWORD %s", quoteIdent(name), quoteLiteral(string(passwd)))
	if _, err := m.db.Exec(ctx, stmt); err != nil {
		return result.NoChange[secrets.Password](), fmt.Errorf("reset password for %s: %w", name, err)
	}

	m.logger.Info().
		Str("role", name).
		Str("password_sha256", passwd.Fingerprint()).
		Msg("reset database role password")
	return result.SuccessfulValue(passwd), nil
}

// DropUser drops a role if present. Objects and grants owned by the
// role are dropped with it.
func (m *Manager) DropUser(ctx context.Context, name string) (result.Result[struct{}], error) {
	exists, err := m.roleExists(ctx, name)
	if err != nil {
		return result.NoChange[struct{}](), err
	}
	if !exists {
		return result.NoChange[struct{}](), nil
	}

	if _, err := m.db.Exec(ctx, "DROP OWNED BY "+quoteIdent(name)); err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("drop objects owned by %s: %w", name, err)
	}
	if _, err := m.db.Exec(ctx, "DROP ROLE "+quoteIdent(name)); err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("drop role %s: %w", name, err)
	}

	m.logger.Info().Str("role", name).Msg("dropped database role")
	return result.Successful[struct{}](), nil
}

// hasDatabasePrivilege probes whether the role currently holds CREATE on
// the database. GRANT/REVOKE report no affected rows, so this is the
// change signal for grant and revoke.
func (m *Manager) hasDatabasePrivilege(ctx context.Context, user, db string) (bool, error) {
	var held bool
	err := m.db.QueryRow(ctx,
		"SELECT has_database_privilege($1, $2, 'CREATE')", user, db,
	).Scan(&held)
	if err != nil {
		return false, fmt.Errorf("check privilege of %s on %s: %w", user, db, err)
	}
	return held, nil
}

// GrantDatabase grants all privileges on the database to the role.
func (m *Manager) GrantDatabase(ctx context.Context, user, db string) (result.Result[struct{}], error) {
	held, err := m.hasDatabasePrivilege(ctx, user, db)
	if err != nil {
		return result.NoChange[struct{}](), err
	}
	if held {
		return result.NoChange[struct{}](), nil
	}

	stmt := fmt.Sprintf("GRANT ALL ON DATABASE %s TO %s", quoteIdent(db), quoteIdent(user))
	if _, err := m.db.Exec(ctx, stmt); err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("grant %s on %s: %w", user, db, err)
	}

	m.logger.Info().Str("role", user).Str("database", db).Msg("granted database access")
	return result.Successful[struct{}](), nil
}

// RevokeDatabase removes the role's privileges on the database.
func (m *Manager) RevokeDatabase(ctx context.Context, user, db string) (result.Result[struct{}], error) {
	held, err := m.hasDatabasePrivilege(ctx, user, db)
	if err != nil {
		return result.NoChange[struct{}](), err
	}
	if !held {
		return result.NoChange[struct{}](), nil
	}

	stmt := fmt.Sprintf("REVOKE ALL ON DATABASE %s FROM %s", quoteIdent(db), quoteIdent(user))
	if _, err := m.db.Exec(ctx, stmt); err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("revoke %s on %s: %w", user, db, err)
	}

	m.logger.Info().Str("role", user).Str("database", db).Msg("revoked database access")
	return result.Successful[struct{}](), nil
}

// CreateDatabase creates a database if absent. No privileges are
// granted. Always reports success, matching the maria manager's
// contract for database lifecycle.
func (m *Manager) CreateDatabase(ctx context.Context, name string) (result.Result[struct{}], error) {
	exists, err := m.databaseExists(ctx, name)
	if err != nil {
		return result.NoChange[struct{}](), err
	}
	if !exists {
		if _, err := m.db.Exec(ctx, "CREATE DATABASE "+quoteIdent(name)); err != nil {
			return result.NoChange[struct{}](), fmt.Errorf("create database %s: %w", name, err)
		}
	}

	m.logger.Info().Str("database", name).Msg("ensured database exists")
	return result.Successful[struct{}](), nil
}

// ListDatabases fetches names of all non-template databases matching
// the LIKE pattern, in server order.
func (m *Manager) ListDatabases(ctx context.Context, like string) ([]string, error) {
	if like == "" {
		like = "%"
	}

	rows, err := m.db.Query(ctx,
		"SELECT datname FROM pg_database WHERE NOT datistemplate AND datname LIKE $1", like,
	)
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

// DropDatabase drops a database and everything in it if present.
// Always reports success.
func (m *Manager) DropDatabase(ctx context.Context, name string) (result.Result[struct{}], error) {
	if _, err := m.db.Exec(ctx, "DROP DATABASE IF EXISTS "+quoteIdent(name)); err != nil {
		return result.NoChange[struct{}](), fmt.Errorf("drop database %s: %w", name, err)
	}
	m.logger.Info().Str("database", name).Msg("ensured database is absent")
	return result.Successful[struct{}](), nil
}

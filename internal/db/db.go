// Package db opens the connection collaborators the entry points hand
// to the managers. The entry points own the lifetimes; nothing here is
// closed on the callers' behalf.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"github.com/edvin/hostadmin/internal/membership"
)

// OpenMaria opens an admin connection to the MariaDB/MySQL service.
// Client-side parameter interpolation is forced on: the account manager
// binds user names and passwords inside DDL statements, which
// server-side prepares reject.
func OpenMaria(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse maria dsn: %w", err)
	}
	cfg.InterpolateParams = true
	cfg.MultiStatements = false

	conn, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open maria connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping maria: %w", err)
	}
	return conn, nil
}

// NewAccountPool opens an admin pool to the PostgreSQL service.
func NewAccountPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse pgsql config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgsql pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pgsql: %w", err)
	}

	return pool, nil
}

// OpenMemberDB opens the member record store through bun.
func OpenMemberDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open member db: %w", err)
	}
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping member db: %w", err)
	}

	bdb := bun.NewDB(sqldb, mysqldialect.New())
	membership.RegisterModels(bdb)
	return bdb, nil
}

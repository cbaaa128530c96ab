package db

import (
	"context"
	"database/sql"
)

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
type DBProvider interface {
	DB() *sql.DB
}

// Connector is a DBProvider that can establish its connection on demand.
// DBErr reports why DB is nil when a direct connection is configured.
type Connector interface {
	DBProvider
	EnsureConnected(ctx context.Context) error
	DBErr() error
}

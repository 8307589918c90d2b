package db

import "database/sql"

// DBProvider is an interface for relational clients that expose a sql.DB
// handle. It lets the replication writer target either PostgresClient or
// SupabaseClient without caring which one it got.
type DBProvider interface {
	DB() *sql.DB
}

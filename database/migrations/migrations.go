// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// Importing this package (cmd/b2zi, pkg/testkit) registers the full schema.
package migrations

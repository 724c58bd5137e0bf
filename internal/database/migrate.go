package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
)

// Migrate creates or alters the users, projects and tasks tables to match
// Tables.
func Migrate(ctx context.Context, db *DB) error {
	m, err := schema.NewMigrate(
		db.EntDriver(),
		schema.WithDropIndex(true),
		schema.WithDropColumn(true),
		schema.WithForeignKeys(true),
	)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("run auto migration: %w", err)
	}
	return nil
}

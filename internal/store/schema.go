package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

const pragmaForeignKeys = `PRAGMA foreign_keys = ON`

// Schema DDL. The edge table has no FOREIGN KEY clause; edges may name
// courses that are not in the entity table.
const (
	createCourses = `CREATE TABLE IF NOT EXISTS Courses (
    CourseNumber TEXT PRIMARY KEY NOT NULL,
    Title TEXT NOT NULL,
    Major TEXT,
    Category TEXT
)`

	createPrerequisites = `CREATE TABLE IF NOT EXISTS Prerequisites (
    CourseNumber TEXT NOT NULL,
    PrerequisiteNumber TEXT NOT NULL,
    PRIMARY KEY (CourseNumber, PrerequisiteNumber)
)`
)

// schemaDDL lists the CREATE TABLE statements in execution order.
var schemaDDL = []struct {
	table string
	ddl   string
}{
	{"Courses", createCourses},
	{"Prerequisites", createPrerequisites},
}

// ensureSchema creates any missing table. Failures wrap types.ErrSchema.
func (s *Store) ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("%w: %s table: %v", types.ErrSchema, stmt.table, err)
		}
	}
	return nil
}

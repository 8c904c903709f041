// This file implements bulk import of an in-memory catalog into the store.
package store

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

const (
	upsertCourse = `INSERT INTO Courses (CourseNumber, Title, Major, Category) VALUES (?, ?, ?, ?)
ON CONFLICT (CourseNumber) DO UPDATE SET Title = excluded.Title, Major = excluded.Major, Category = excluded.Category`

	insertPrerequisiteIgnore = `INSERT INTO Prerequisites (CourseNumber, PrerequisiteNumber) VALUES (?, ?)
ON CONFLICT (CourseNumber, PrerequisiteNumber) DO NOTHING`
)

// Import writes every course of c to the store in one transaction. Existing
// courses are overwritten and their outgoing edges replaced by the imported
// prerequisites. Courses absent from c are not touched. It returns the number
// of courses written.
func (s *Store) Import(ctx context.Context, session types.Session, c *types.Catalog) (int, error) {
	if err := s.authorize(session, "import"); err != nil {
		return 0, err
	}

	db, err := s.openWithSchema(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	courseStmt, err := tx.PrepareContext(ctx, s.q(upsertCourse))
	if err != nil {
		return 0, fmt.Errorf("preparing course upsert: %w", err)
	}
	defer courseStmt.Close()

	clearStmt, err := tx.PrepareContext(ctx, s.q(deleteOwnedPrerequisites))
	if err != nil {
		return 0, fmt.Errorf("preparing edge delete: %w", err)
	}
	defer clearStmt.Close()

	edgeStmt, err := tx.PrepareContext(ctx, s.q(insertPrerequisiteIgnore))
	if err != nil {
		return 0, fmt.Errorf("preparing edge insert: %w", err)
	}
	defer edgeStmt.Close()

	courses := c.List()
	for _, course := range courses {
		if _, err := courseStmt.ExecContext(ctx, course.CourseNumber, course.Title, course.Major, course.Category); err != nil {
			return 0, fmt.Errorf("%w: course %s: %v", types.ErrInsertFailed, course.CourseNumber, err)
		}
		if _, err := clearStmt.ExecContext(ctx, course.CourseNumber); err != nil {
			return 0, fmt.Errorf("clearing prerequisites of %s: %w", course.CourseNumber, err)
		}
		for _, p := range course.Prerequisites {
			if _, err := edgeStmt.ExecContext(ctx, course.CourseNumber, p); err != nil {
				return 0, fmt.Errorf("%w: prerequisite %s of %s: %v", types.ErrInsertFailed, p, course.CourseNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}

	s.log.Info().Str("session", session.ID).Int("courses", len(courses)).Msg("catalog imported")
	return len(courses), nil
}

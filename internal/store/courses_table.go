// This file implements the course (entity table) mutations. Values are
// written verbatim; none of these operations touch an in-memory Catalog.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

const (
	insertCourse = `INSERT INTO Courses (CourseNumber, Title, Major, Category) VALUES (?, ?, ?, ?)`
	updateCourse = `UPDATE Courses SET Title = ?, Major = ?, Category = ? WHERE CourseNumber = ?`
	deleteCourse = `DELETE FROM Courses WHERE CourseNumber = ?`

	deleteOwnedPrerequisites = `DELETE FROM Prerequisites WHERE CourseNumber = ?`
)

// CreateCourse inserts one entity row. No edge rows are created. A duplicate
// course number or any store error returns an error wrapping
// types.ErrInsertFailed.
func (s *Store) CreateCourse(ctx context.Context, session types.Session, c *types.Course) error {
	if err := s.authorize(session, "create"); err != nil {
		return err
	}
	if err := c.CheckInput(); err != nil {
		return err
	}

	db, err := s.openWithSchema(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, s.q(insertCourse), c.CourseNumber, c.Title, c.Major, c.Category); err != nil {
		s.log.Debug().Err(err).Str("session", session.ID).Str("course", c.CourseNumber).Msg("insert failed")
		return fmt.Errorf("%w: %v", types.ErrInsertFailed, err)
	}

	s.log.Debug().Str("session", session.ID).Str("course", c.CourseNumber).Msg("course created")
	return nil
}

// UpdateCourse rewrites title, major and category of the course with the
// same number. The number itself and the edge rows are left alone.
// It returns types.ErrNotFound when no row matched.
func (s *Store) UpdateCourse(ctx context.Context, session types.Session, c *types.Course) error {
	if err := s.authorize(session, "update"); err != nil {
		return err
	}

	db, err := s.openWithSchema(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, s.q(updateCourse), c.Title, c.Major, c.Category, c.CourseNumber)
	if err != nil {
		return fmt.Errorf("updating course %s: %w", c.CourseNumber, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}

	s.log.Debug().Str("session", session.ID).Str("course", c.CourseNumber).Msg("course updated")
	return nil
}

// DeleteCourse removes the course's own prerequisite edges and then its
// entity row, in one transaction. It returns types.ErrNotFound when no entity
// row was deleted.
//
// Edges in which this course is the prerequisite of another course are kept,
// so other courses may still list it after a reload.
func (s *Store) DeleteCourse(ctx context.Context, session types.Session, courseNumber string) error {
	if err := s.authorize(session, "delete"); err != nil {
		return err
	}

	db, err := s.openWithSchema(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(deleteOwnedPrerequisites), courseNumber); err != nil {
		return fmt.Errorf("deleting prerequisites of %s: %w", courseNumber, err)
	}

	res, err := tx.ExecContext(ctx, s.q(deleteCourse), courseNumber)
	if err != nil {
		return fmt.Errorf("deleting course %s: %w", courseNumber, err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	if n == 0 {
		return types.ErrNotFound
	}
	s.log.Debug().Str("session", session.ID).Str("course", courseNumber).Msg("course deleted")
	return nil
}

// openWithSchema opens the store for a mutation and makes sure both tables
// exist.
func (s *Store) openWithSchema(ctx context.Context) (*sql.DB, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

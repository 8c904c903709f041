// This file implements the prerequisite (edge table) mutations.
package store

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

const (
	insertPrerequisite = `INSERT INTO Prerequisites (CourseNumber, PrerequisiteNumber) VALUES (?, ?)`
	deletePrerequisite = `DELETE FROM Prerequisites WHERE CourseNumber = ? AND PrerequisiteNumber = ?`
)

// AddPrerequisite records that courseNumber requires prereqNumber. Neither
// course has to exist. An existing pair or any store error wraps
// types.ErrInsertFailed.
func (s *Store) AddPrerequisite(ctx context.Context, session types.Session, courseNumber, prereqNumber string) error {
	if err := s.authorize(session, "add-prerequisite"); err != nil {
		return err
	}
	if courseNumber == "" || prereqNumber == "" {
		return types.ErrInvalidCourse
	}

	db, err := s.openWithSchema(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, s.q(insertPrerequisite), courseNumber, prereqNumber); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInsertFailed, err)
	}

	s.log.Debug().Str("session", session.ID).Str("course", courseNumber).Str("prerequisite", prereqNumber).Msg("prerequisite added")
	return nil
}

// RemovePrerequisite deletes one edge row. It returns types.ErrNotFound when
// the pair was not recorded.
func (s *Store) RemovePrerequisite(ctx context.Context, session types.Session, courseNumber, prereqNumber string) error {
	if err := s.authorize(session, "remove-prerequisite"); err != nil {
		return err
	}

	db, err := s.openWithSchema(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, s.q(deletePrerequisite), courseNumber, prereqNumber)
	if err != nil {
		return fmt.Errorf("deleting prerequisite %s of %s: %w", prereqNumber, courseNumber, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}

	s.log.Debug().Str("session", session.ID).Str("course", courseNumber).Str("prerequisite", prereqNumber).Msg("prerequisite removed")
	return nil
}

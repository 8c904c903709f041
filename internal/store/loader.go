package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

const (
	selectCourses       = `SELECT CourseNumber, Title, Major, Category FROM Courses`
	selectPrerequisites = `SELECT CourseNumber, PrerequisiteNumber FROM Prerequisites`
)

var _ types.Loader = (*Store)(nil)

// Load resets c and rebuilds it from the two tables. Entity rows are taken
// as stored, with no case normalization. Each edge row appends its
// prerequisite to the owning course in row order; edges whose owner is not
// in the entity table are dropped.
//
// A failure aborts the load where it happened and leaves c as far as it got.
func (s *Store) Load(ctx context.Context, c *types.Catalog) error {
	c.Reset()

	db, err := s.open(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot open store")
		return err
	}
	defer db.Close()

	if err := s.ensureSchema(ctx, db); err != nil {
		s.log.Error().Err(err).Msg("cannot create schema")
		return err
	}

	if err := s.loadCourses(ctx, db, c); err != nil {
		s.log.Error().Err(err).Msg("cannot read courses")
		return err
	}

	dropped, err := s.attachPrerequisites(ctx, db, c)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot read prerequisites")
		return err
	}

	s.log.Info().
		Int("courses", c.Len()).
		Int("orphan_edges", dropped).
		Msg("store loaded")
	return nil
}

func (s *Store) loadCourses(ctx context.Context, db *sql.DB, c *types.Catalog) error {
	rows, err := db.QueryContext(ctx, selectCourses)
	if err != nil {
		return fmt.Errorf("%w: fetching courses: %v", types.ErrQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var course types.Course
		var major, category sql.NullString
		if err := rows.Scan(&course.CourseNumber, &course.Title, &major, &category); err != nil {
			return fmt.Errorf("%w: scanning course: %v", types.ErrQuery, err)
		}
		course.Major = major.String
		course.Category = category.String
		c.Put(&course)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating courses: %v", types.ErrQuery, err)
	}
	return nil
}

// attachPrerequisites returns the number of edges dropped for a missing owner.
func (s *Store) attachPrerequisites(ctx context.Context, db *sql.DB, c *types.Catalog) (int, error) {
	rows, err := db.QueryContext(ctx, selectPrerequisites)
	if err != nil {
		return 0, fmt.Errorf("%w: fetching prerequisites: %v", types.ErrQuery, err)
	}
	defer rows.Close()

	dropped := 0
	for rows.Next() {
		var owner, prereq string
		if err := rows.Scan(&owner, &prereq); err != nil {
			return dropped, fmt.Errorf("%w: scanning prerequisite: %v", types.ErrQuery, err)
		}
		course, ok := c.Get(owner)
		if !ok {
			dropped++
			continue
		}
		course.Prerequisites = append(course.Prerequisites, prereq)
	}
	if err := rows.Err(); err != nil {
		return dropped, fmt.Errorf("%w: iterating prerequisites: %v", types.ErrQuery, err)
	}
	return dropped, nil
}

package types

import (
	"fmt"
	"strings"
)

// NoPrerequisites is displayed in place of an empty prerequisite list.
const NoPrerequisites = "None"

// Course is one catalog entry. CourseNumber is the canonical key and is
// stored uppercase; the remaining fields are unconstrained.
type Course struct {
	CourseNumber  string   `json:"course_number" validate:"required"`
	Title         string   `json:"title"`
	Major         string   `json:"major"`
	Category      string   `json:"category"`
	Prerequisites []string `json:"prerequisites"`
}

// NormalizeKey returns the canonical form of a course number: ASCII letters
// uppercased, every other byte kept as is.
func NormalizeKey(courseNumber string) string {
	b := []byte(courseNumber)
	for i, ch := range b {
		if 'a' <= ch && ch <= 'z' {
			b[i] = ch - ('a' - 'A')
		}
	}
	return string(b)
}

// Validate reports ErrInvalidCourse unless CourseNumber is non-empty and
// already in canonical form.
func (c *Course) Validate() error {
	if c.CourseNumber == "" || c.CourseNumber != NormalizeKey(c.CourseNumber) {
		return ErrInvalidCourse
	}
	return nil
}

// CheckInput reports ErrInvalidCourse when the course cannot be written to
// the store. Unlike Validate it does not require canonical case, since store
// mutations keep values verbatim.
func (c *Course) CheckInput() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	return nil
}

// PrerequisiteList joins the prerequisites for display, or returns
// NoPrerequisites when there are none.
func (c *Course) PrerequisiteList() string {
	if len(c.Prerequisites) == 0 {
		return NoPrerequisites
	}
	return strings.Join(c.Prerequisites, ", ")
}

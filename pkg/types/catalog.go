package types

import (
	"context"
	"sort"
	"strings"
)

// Loader populates a Catalog from one source. Implementations reset the
// catalog before filling it, so a load always replaces what was there.
type Loader interface {
	Load(ctx context.Context, c *Catalog) error
}

// Catalog is the in-memory view of whichever source was loaded last.
// Keys are canonical course numbers. It is not safe for concurrent use.
type Catalog struct {
	courses map[string]*Course
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{courses: make(map[string]*Course)}
}

// Reset drops every course.
func (c *Catalog) Reset() {
	c.courses = make(map[string]*Course)
}

// Put stores course under its CourseNumber, replacing any previous entry.
// The caller is responsible for normalizing the key.
func (c *Catalog) Put(course *Course) {
	if c.courses == nil {
		c.courses = make(map[string]*Course)
	}
	c.courses[course.CourseNumber] = course
}

// Get returns the course stored under the exact key.
func (c *Catalog) Get(key string) (*Course, bool) {
	course, ok := c.courses[key]
	return course, ok
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// Empty reports whether no data is loaded.
func (c *Catalog) Empty() bool {
	return len(c.courses) == 0
}

// List returns every course sorted ascending by course number.
func (c *Catalog) List() []*Course {
	out := make([]*Course, 0, len(c.courses))
	for _, course := range c.courses {
		out = append(out, course)
	}
	sortByNumber(out)
	return out
}

// Lookup uppercases input and returns the matching course.
func (c *Catalog) Lookup(input string) (*Course, bool) {
	return c.Get(NormalizeKey(input))
}

// FilterByMajor returns the courses whose major equals major, ignoring case,
// sorted by course number. It returns ErrNoMatches when nothing matches.
func (c *Catalog) FilterByMajor(major string) ([]*Course, error) {
	var out []*Course
	for _, course := range c.courses {
		if strings.EqualFold(course.Major, major) {
			out = append(out, course)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoMatches
	}
	sortByNumber(out)
	return out, nil
}

func sortByNumber(courses []*Course) {
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CourseNumber < courses[j].CourseNumber
	})
}

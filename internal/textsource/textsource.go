// Package textsource loads a Catalog from a line-oriented delimited file.
//
// Each line reads "number, title, major, category, prereq1, prereq2, ...".
// Fields are split naively on the delimiter; there is no quoting. Lines with
// fewer than four fields or an empty course number are skipped without
// error.
package textsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

// minFields is the number of mandatory leading fields on a line.
const minFields = 4

// cutset is stripped from both ends of every field.
const cutset = " \t\r\n"

var _ types.Loader = (*Loader)(nil)

// Summary counts what the last Load saw.
type Summary struct {
	Lines   int
	Skipped int
	Courses int
}

// Loader reads courses from Path.
type Loader struct {
	Path      string
	Delimiter string
	log       zerolog.Logger
	last      Summary
}

// New returns a Loader for path. An empty delimiter means
// types.DefaultDelimiter.
func New(path, delimiter string, log zerolog.Logger) *Loader {
	if delimiter == "" {
		delimiter = types.DefaultDelimiter
	}
	return &Loader{
		Path:      path,
		Delimiter: delimiter,
		log:       log.With().Str("source", types.SourceCSV).Str("path", path).Logger(),
	}
}

// Summary returns the counts from the most recent Load.
func (l *Loader) Summary() Summary {
	return l.last
}

// Load resets c and fills it from the file. A later line with the same
// course number replaces an earlier one. Lines have no length limit. If the
// file cannot be opened or read, c is left empty and the error wraps
// types.ErrSourceUnavailable.
func (l *Loader) Load(ctx context.Context, c *types.Catalog) error {
	c.Reset()
	l.last = Summary{}

	f, err := os.Open(l.Path)
	if err != nil {
		l.log.Error().Err(err).Msg("cannot open course file")
		return fmt.Errorf("%w: opening %s: %v", types.ErrSourceUnavailable, l.Path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		raw, err := r.ReadString('\n')
		if raw != "" {
			l.last.Lines++
			course, ok := l.parseLine(trimEOL(raw))
			if ok {
				c.Put(course)
			} else {
				l.last.Skipped++
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.Reset()
			l.log.Error().Err(err).Int("line", l.last.Lines).Msg("reading course file")
			l.last = Summary{}
			return fmt.Errorf("%w: reading %s: %v", types.ErrSourceUnavailable, l.Path, err)
		}
	}

	l.last.Courses = c.Len()
	l.log.Info().
		Int("lines", l.last.Lines).
		Int("skipped", l.last.Skipped).
		Int("courses", l.last.Courses).
		Msg("course file loaded")
	return nil
}

// trimEOL strips the line terminator, "\n" or "\r\n".
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// parseLine converts one line into a Course. It reports false for lines with
// fewer than minFields fields or an empty course number.
func (l *Loader) parseLine(line string) (*types.Course, bool) {
	fields := Split(line, l.Delimiter)
	if len(fields) < minFields {
		return nil, false
	}

	course := &types.Course{
		CourseNumber: types.NormalizeKey(fields[0]),
		Title:        fields[1],
		Major:        fields[2],
		Category:     fields[3],
	}
	if course.Validate() != nil {
		return nil, false
	}
	for _, p := range fields[minFields:] {
		course.Prerequisites = append(course.Prerequisites, types.NormalizeKey(p))
	}
	return course, true
}

// Split tokenizes line on delim and trims every token. A single trailing
// empty token is dropped, so "a,b," yields two fields, and an empty line
// yields none.
func Split(line, delim string) []string {
	if line == "" {
		return nil
	}
	parts := strings.Split(line, delim)
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.Trim(p, cutset)
	}
	return parts
}

package textsource

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

// Write stores courses at path in the format Load reads, one course per
// line. The file is replaced atomically: records go to a temp file in the
// same directory, which is synced and renamed over path.
//
// Fields containing the delimiter or a line break cannot be represented and
// fail with types.ErrInvalidCourse before anything is written.
func Write(path, delimiter string, courses []*types.Course) error {
	if delimiter == "" {
		delimiter = types.DefaultDelimiter
	}

	lines := make([]string, 0, len(courses))
	for _, c := range courses {
		line, err := formatLine(c, delimiter)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".courses-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return fail("writing record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func formatLine(c *types.Course, delimiter string) (string, error) {
	fields := append([]string{c.CourseNumber, c.Title, c.Major, c.Category}, c.Prerequisites...)
	for _, f := range fields {
		if strings.Contains(f, delimiter) || strings.ContainsAny(f, "\r\n") {
			return "", fmt.Errorf("%w: %s: field %q cannot be written with delimiter %q",
				types.ErrInvalidCourse, c.CourseNumber, f, delimiter)
		}
	}
	// Split drops one trailing empty token; a blank keeps the field.
	if fields[len(fields)-1] == "" {
		fields[len(fields)-1] = " "
	}
	return strings.Join(fields, delimiter), nil
}

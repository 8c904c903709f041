package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/catalog/internal/config"
	"github.com/mesh-intelligence/catalog/pkg/types"
)

const sampleCourses = `CSCI100,Introduction to Computer Science,Computer Science,Core
CSCI200,Data Structures,Computer Science,Core,CSCI100
MATH201,Discrete Mathematics,Mathematics,Core
CSCI300,Introduction to Algorithms,Computer Science,Core,CSCI200,MATH201
`

// testEnv isolates config and data directories for one test.
type testEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
	courses   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(config.EnvAdminPassword, "")

	dir := t.TempDir()
	courses := filepath.Join(dir, "courses.txt")
	require.NoError(t, os.WriteFile(courses, []byte(sampleCourses), 0o644))

	return &testEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
		courses:   courses,
	}
}

// run executes the CLI in process and returns stdout.
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, "catalog %s", strings.Join(args, " "))
	return out
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("version")
	assert.Equal(t, fmt.Sprintf("catalog v%s\nmodule: %s\n", Version, modulePath), out)
	assert.NoDirExists(t, env.configDir, "version does not load config")
}

func TestListFromTextFile(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("list", "--file", env.courses)
	assert.Contains(t, out, scheduleHeading)
	assert.Contains(t, out, "Introduction to Algorithms")

	prev := -1
	for _, number := range []string{"CSCI100", "CSCI200", "CSCI300", "MATH201"} {
		i := strings.Index(out, number)
		require.GreaterOrEqual(t, i, 0, number)
		assert.Greater(t, i, prev, "%s out of order", number)
		prev = i
	}
	assert.FileExists(t, config.Path(env.configDir), "first run writes config.yaml")
}

func TestListJSON(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("--json", "list", "--file", env.courses)

	var courses []*types.Course
	require.NoError(t, json.Unmarshal([]byte(out), &courses))
	require.Len(t, courses, 4)
	assert.Equal(t, "CSCI100", courses[0].CourseNumber)
	assert.Equal(t, []string{"CSCI200", "MATH201"}, courses[2].Prerequisites)
}

func TestListCustomDelimiter(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "courses.psv")
	require.NoError(t, os.WriteFile(path, []byte("csci100|Intro|CS|Core\n"), 0o644))

	out := env.mustRun("list", "--file", path, "--delimiter", "|")
	assert.Contains(t, out, "CSCI100")
	assert.Contains(t, out, "Intro")
}

func TestListWithoutFileIsUsageError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no course file")
	assert.Equal(t, exitUserError, exitCode(err, io.Discard))
}

func TestListMissingFile(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("", "list", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
	assert.Equal(t, "Could not open the course source.\n", out)
	assert.Equal(t, exitSysError, exitCode(err, io.Discard))
}

func TestInvalidSourceFlag(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "list", "--source", "xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
	assert.Equal(t, exitUserError, exitCode(err, io.Discard))
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)

	t.Run("found with lowercase input", func(t *testing.T) {
		out := env.mustRun("show", "csci300", "--file", env.courses)
		assert.Equal(t,
			"CSCI300, Introduction to Algorithms\nMajor: Computer Science\nCategory: Core\nPrerequisites: CSCI200, MATH201\n",
			out)
	})

	t.Run("no prerequisites", func(t *testing.T) {
		out := env.mustRun("show", "MATH201", "--file", env.courses)
		assert.Contains(t, out, "Prerequisites: None")
	})

	t.Run("not found", func(t *testing.T) {
		out := env.mustRun("show", "HIST101", "--file", env.courses)
		assert.Equal(t, "Course not found.\n", out)
	})
}

func TestMajor(t *testing.T) {
	env := newTestEnv(t)

	t.Run("case insensitive multi word", func(t *testing.T) {
		out := env.mustRun("major", "computer", "SCIENCE", "--file", env.courses)
		assert.Contains(t, out, "CSCI100")
		assert.Contains(t, out, "CSCI300")
		assert.NotContains(t, out, "MATH201")
	})

	t.Run("no matches", func(t *testing.T) {
		out := env.mustRun("major", "History", "--file", env.courses)
		assert.Equal(t, "No courses found for that major.\n", out)
	})
}

func TestAdminLifecycle(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvAdminPassword, "CS499")

	assert.Equal(t, "Catalog initialized.\n", env.mustRun("init"))
	assert.FileExists(t, filepath.Join(env.dataDir, types.DefaultDBFile))
	assert.Equal(t, "No courses loaded.\n", env.mustRun("list", "--source", "db"))

	assert.Equal(t, "Course added.\n",
		env.mustRun("add", "CSCI100", "--title", "Intro", "--major", "Computer Science", "--category", "Core"))
	assert.Equal(t, "Insert failed.\n", env.mustRun("add", "CSCI100", "--title", "Again"))
	assert.Equal(t, "Course added.\n", env.mustRun("add", "CSCI200", "--title", "Data Structures"))

	assert.Equal(t, "Prerequisite added.\n", env.mustRun("prereq", "add", "CSCI200", "CSCI100"))
	assert.Equal(t, "Insert failed.\n", env.mustRun("prereq", "add", "CSCI200", "CSCI100"))
	assert.Contains(t, env.mustRun("show", "CSCI200", "--source", "db"), "Prerequisites: CSCI100\n")

	assert.Equal(t, "Course updated.\n", env.mustRun("update", "CSCI200", "--title", "Data Structures II", "--major", "Computer Science"))
	assert.Equal(t, "Course not found.\n", env.mustRun("update", "CSCI999", "--title", "Nothing"))
	assert.Contains(t, env.mustRun("show", "CSCI200", "--source", "db"), "CSCI200, Data Structures II\n")

	// Deleting a course leaves references to it in place.
	assert.Equal(t, "Course deleted.\n", env.mustRun("delete", "CSCI100"))
	assert.Equal(t, "Course not found.\n", env.mustRun("delete", "CSCI100"))
	out := env.mustRun("show", "CSCI200", "--source", "db")
	assert.Contains(t, out, "Prerequisites: CSCI100\n")

	assert.Equal(t, "Prerequisite removed.\n", env.mustRun("prereq", "remove", "CSCI200", "CSCI100"))
	assert.Equal(t, "Course not found.\n", env.mustRun("prereq", "remove", "CSCI200", "CSCI100"))
	assert.Contains(t, env.mustRun("show", "CSCI200", "--source", "db"), "Prerequisites: None\n")
}

func TestAddEmptyCourseNumber(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvAdminPassword, "CS499")

	assert.Equal(t, "Invalid course number.\n", env.mustRun("add", "", "--title", "Blank"))
}

func TestWrongPasswordIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvAdminPassword, "wrong")

	assert.Equal(t, "Unauthorized: administrator login required.\n",
		env.mustRun("add", "CSCI100", "--title", "Intro"))
	assert.Equal(t, "No courses loaded.\n", env.mustRun("list", "--source", "db"))
}

func TestUnknownUserIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvAdminPassword, "CS499")

	assert.Equal(t, "Unauthorized: administrator login required.\n",
		env.mustRun("delete", "CSCI100", "--user", "root"))
}

func TestPasswordFromStdin(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("CS499\n", "add", "CSCI100", "--title", "Intro")
	require.NoError(t, err)
	assert.Equal(t, "Course added.\n", out)

	out, err = env.run("", "add", "CSCI200", "--title", "Data Structures")
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized: administrator login required.\n", out)
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvAdminPassword, "CS499")

	assert.Equal(t, "Imported 4 courses.\n", env.mustRun("import", env.courses))

	out := env.mustRun("list", "--source", "db")
	for _, number := range []string{"CSCI100", "CSCI200", "CSCI300", "MATH201"} {
		assert.Contains(t, out, number)
	}
	assert.Contains(t, env.mustRun("show", "CSCI300", "--source", "db"), "Prerequisites: CSCI200, MATH201\n")

	_, err := env.run("", "import", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
}

func TestExportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(config.EnvAdminPassword, "CS499")
	env.mustRun("import", env.courses)
	env.mustRun("prereq", "add", "MATH201", "CSCI100")

	path := filepath.Join(t.TempDir(), "export.txt")
	assert.Equal(t, "Exported 4 courses.\n", env.mustRun("export", path, "--source", "db"))

	out := env.mustRun("show", "MATH201", "--file", path)
	assert.Contains(t, out, "Prerequisites: CSCI100\n")
}

func TestHashPasswordAndConfiguredHash(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("s3cret\n", "hash-password")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	t.Setenv("CATALOG_ADMIN_PASSWORD_HASH", hash)

	t.Setenv(config.EnvAdminPassword, "CS499")
	assert.Equal(t, "Unauthorized: administrator login required.\n",
		env.mustRun("add", "CSCI100", "--title", "Intro"), "default secret no longer accepted")

	t.Setenv(config.EnvAdminPassword, "s3cret")
	assert.Equal(t, "Course added.\n", env.mustRun("add", "CSCI100", "--title", "Intro"))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("\n", "hash-password")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err, io.Discard))
}

func TestStatusJSON(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("--json", "show", "NOPE", "--file", env.courses)

	var status map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, map[string]string{"status": "failed", "message": "Course not found."}, status)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		wantStderr string
	}{
		{name: "success", err: nil, want: exitSuccess},
		{name: "usage error", err: errors.New("accepts 1 arg(s), received 0"), want: exitUserError, wantStderr: "Error: accepts 1 arg(s), received 0\n"},
		{name: "reported failure", err: &reportedError{err: types.ErrQuery, code: exitSysError}, want: exitSysError},
		{name: "wrapped report", err: fmt.Errorf("list: %w", &reportedError{err: types.ErrSchema, code: exitSysError}), want: exitSysError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, exitCode(tt.err, &stderr))
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		msg  string
		code int
	}{
		{fmt.Errorf("update: %w", types.ErrNotFound), "Course not found.", exitSuccess},
		{types.ErrNoMatches, "No courses found for that major.", exitSuccess},
		{types.ErrUnauthorized, "Unauthorized: administrator login required.", exitSuccess},
		{types.ErrInvalidCredentials, "Invalid credentials.", exitSuccess},
		{fmt.Errorf("%w: UNIQUE constraint failed", types.ErrInsertFailed), "Insert failed.", exitSuccess},
		{fmt.Errorf("%w: open", types.ErrSourceUnavailable), "Could not open the course source.", exitSysError},
		{fmt.Errorf("%w: scan", types.ErrQuery), "Could not read the course store.", exitSysError},
		{errors.New("disk full"), "disk full", exitSysError},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, msg, code := describe(tt.err)
			assert.Equal(t, tt.msg, msg)
			assert.Equal(t, tt.code, code)
		})
	}
}

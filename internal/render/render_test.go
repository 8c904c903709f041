package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

var courses = []*types.Course{
	{CourseNumber: "CSCI100", Title: "Introduction to Computer Science", Major: "Computer Science", Category: "Core"},
	{CourseNumber: "CSCI200", Title: "Data Structures", Major: "Computer Science", Category: "Core", Prerequisites: []string{"CSCI100"}},
}

func TestStatusText(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, false)

	require.NoError(t, r.Status(KindOK, "Course added."))
	require.NoError(t, r.Status(KindFailed, "Insert failed."))

	assert.Equal(t, "Course added.\nInsert failed.\n", buf.String(), "no color codes for a non-terminal writer")
}

func TestStatusJSON(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, true)

	require.NoError(t, r.Status(KindFailed, "Course not found."))

	var got statusJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, statusJSON{Status: KindFailed, Message: "Course not found."}, got)
}

func TestCourseTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).CourseTable("Here is a sample schedule:", courses))

	out := buf.String()
	assert.Contains(t, out, "Here is a sample schedule:")
	assert.Contains(t, out, "COURSE")
	assert.Contains(t, out, "CSCI100")
	assert.Contains(t, out, "Data Structures")
	assert.Contains(t, out, "(2 courses)")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("CSCI100")), bytes.Index(buf.Bytes(), []byte("CSCI200")))
}

func TestCourseTableJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).CourseTable("ignored", courses))

	var got []*types.Course
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, courses, got)
}

func TestCourseDetails(t *testing.T) {
	t.Run("with prerequisites", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, false).CourseDetails(courses[1]))
		assert.Equal(t,
			"CSCI200, Data Structures\nMajor: Computer Science\nCategory: Core\nPrerequisites: CSCI100\n",
			buf.String())
	})

	t.Run("without prerequisites", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(&buf, false).CourseDetails(courses[0]))
		assert.Contains(t, buf.String(), "Prerequisites: None\n")
	})
}

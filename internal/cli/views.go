package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/catalog/internal/render"
	"github.com/mesh-intelligence/catalog/internal/textsource"
	"github.com/mesh-intelligence/catalog/pkg/types"
)

const scheduleHeading = "Here is a sample schedule:"

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all courses sorted by course number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			if c.Empty() {
				return a.out.Status(render.KindInfo, "No courses loaded.")
			}
			return a.out.CourseTable(scheduleHeading, c.List())
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <course>",
		Short: "Display one course with its prerequisites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			course, ok := c.Lookup(args[0])
			if !ok {
				return a.report(types.ErrNotFound)
			}
			return a.out.CourseDetails(course)
		},
	}
}

func newMajorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "major <major...>",
		Short: "List the courses of one major",
		Long:  "List the courses whose major matches the argument, ignoring case.\nMulti-word majors may be passed unquoted.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			major := strings.Join(args, " ")
			courses, err := c.FilterByMajor(major)
			if err != nil {
				return a.report(err)
			}
			return a.out.CourseTable("Courses for "+major+":", courses)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the loaded catalog as a course text file",
		Long:  "Load the catalog from the configured source and write it in the text format read by --file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog(cmd)
			if err != nil {
				return err
			}
			if err := textsource.Write(args[0], a.cfg.Delimiter, c.List()); err != nil {
				return err
			}
			return a.out.Status(render.KindOK, fmt.Sprintf("Exported %d courses.", c.Len()))
		},
	}
}

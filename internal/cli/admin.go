package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mesh-intelligence/catalog/internal/auth"
	"github.com/mesh-intelligence/catalog/internal/config"
	"github.com/mesh-intelligence/catalog/internal/render"
	"github.com/mesh-intelligence/catalog/internal/textsource"
	"github.com/mesh-intelligence/catalog/pkg/types"
)

// courseFlags are the non-key fields accepted by add and update.
type courseFlags struct {
	title    string
	major    string
	category string
}

func (f *courseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "course title")
	cmd.Flags().StringVar(&f.major, "major", "", "major the course belongs to")
	cmd.Flags().StringVar(&f.category, "category", "", "course category")
}

func (f *courseFlags) course(number string) *types.Course {
	return &types.Course{
		CourseNumber: number,
		Title:        f.title,
		Major:        f.major,
		Category:     f.category,
	}
}

// adminCmd registers the --user flag shared by commands that mutate the
// store.
func (a *app) adminCmd(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringVar(&a.flags.user, "user", "", "administrator user (default: admin.user from config)")
	return cmd
}

// session logs the administrator in. A failed login yields the zero
// Session, which the store rejects with types.ErrUnauthorized.
func (a *app) session(cmd *cobra.Command) (types.Session, error) {
	authn, err := auth.New(a.cfg.Admin.User, a.cfg.Admin.PasswordHash)
	if err != nil {
		return types.Session{}, err
	}

	user := a.flags.user
	if user == "" {
		user = a.cfg.Admin.User
	}
	secret, err := readSecret(cmd, "Password for "+user+": ")
	if err != nil {
		return types.Session{}, fmt.Errorf("read password: %w", err)
	}

	session, err := authn.Login(user, secret)
	if err != nil {
		a.log.Warn().Err(err).Str("user", user).Msg("administrator login failed")
		return types.Session{}, nil
	}
	a.log.Debug().Str("session", session.ID).Str("user", user).Msg("administrator logged in")
	return session, nil
}

// readSecret takes the secret from the environment, a terminal prompt, or
// the first line of a non-terminal stdin, in that order.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if v := os.Getenv(config.EnvAdminPassword); v != "" {
		return v, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newAddCmd(a *app) *cobra.Command {
	var f courseFlags
	cmd := &cobra.Command{
		Use:   "add <course>",
		Short: "Add a course to the store (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session(cmd)
			if err != nil {
				return err
			}
			if err := a.store().CreateCourse(cmd.Context(), session, f.course(args[0])); err != nil {
				return a.report(err)
			}
			return a.out.Status(render.KindOK, "Course added.")
		},
	}
	f.bind(cmd)
	return a.adminCmd(cmd)
}

func newUpdateCmd(a *app) *cobra.Command {
	var f courseFlags
	cmd := &cobra.Command{
		Use:   "update <course>",
		Short: "Update a course in the store (administrator)",
		Long:  "Rewrite title, major and category of a stored course. Fields not given are cleared.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session(cmd)
			if err != nil {
				return err
			}
			if err := a.store().UpdateCourse(cmd.Context(), session, f.course(args[0])); err != nil {
				return a.report(err)
			}
			return a.out.Status(render.KindOK, "Course updated.")
		},
	}
	f.bind(cmd)
	return a.adminCmd(cmd)
}

func newDeleteCmd(a *app) *cobra.Command {
	return a.adminCmd(&cobra.Command{
		Use:   "delete <course>",
		Short: "Delete a course and its own prerequisites (administrator)",
		Long: "Delete a course and the prerequisite rows it owns. Other courses that\n" +
			"list it as a prerequisite keep that reference.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session(cmd)
			if err != nil {
				return err
			}
			if err := a.store().DeleteCourse(cmd.Context(), session, args[0]); err != nil {
				return a.report(err)
			}
			return a.out.Status(render.KindOK, "Course deleted.")
		},
	})
}

func newPrereqCmd(a *app) *cobra.Command {
	prereq := &cobra.Command{
		Use:   "prereq",
		Short: "Manage prerequisite links in the store (administrator)",
	}

	prereq.AddCommand(
		a.adminCmd(&cobra.Command{
			Use:   "add <course> <prerequisite>",
			Short: "Add a prerequisite to a course",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				session, err := a.session(cmd)
				if err != nil {
					return err
				}
				if err := a.store().AddPrerequisite(cmd.Context(), session, args[0], args[1]); err != nil {
					return a.report(err)
				}
				return a.out.Status(render.KindOK, "Prerequisite added.")
			},
		}),
		a.adminCmd(&cobra.Command{
			Use:   "remove <course> <prerequisite>",
			Short: "Remove a prerequisite from a course",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				session, err := a.session(cmd)
				if err != nil {
					return err
				}
				if err := a.store().RemovePrerequisite(cmd.Context(), session, args[0], args[1]); err != nil {
					return a.report(err)
				}
				return a.out.Status(render.KindOK, "Prerequisite removed.")
			},
		}),
	)
	return prereq
}

func newImportCmd(a *app) *cobra.Command {
	return a.adminCmd(&cobra.Command{
		Use:   "import <file>",
		Short: "Load a course text file into the store (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session(cmd)
			if err != nil {
				return err
			}

			c := types.NewCatalog()
			if err := textsource.New(args[0], a.cfg.Delimiter, a.log).Load(cmd.Context(), c); err != nil {
				return a.report(err)
			}
			n, err := a.store().Import(cmd.Context(), session, c)
			if err != nil {
				return a.report(err)
			}
			return a.out.Status(render.KindOK, fmt.Sprintf("Imported %d courses.", n))
		},
	})
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "hash-password",
		Short:       "Print a bcrypt hash for admin.password_hash",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if secret == "" {
				return errors.New("empty password")
			}
			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

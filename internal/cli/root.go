// Package cli implements the catalog command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/catalog/internal/config"
	"github.com/mesh-intelligence/catalog/internal/logging"
	"github.com/mesh-intelligence/catalog/internal/paths"
	"github.com/mesh-intelligence/catalog/internal/render"
	"github.com/mesh-intelligence/catalog/internal/store"
	"github.com/mesh-intelligence/catalog/internal/textsource"
	"github.com/mesh-intelligence/catalog/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// skipSetup marks commands that run without loading config.
const skipSetup = "skip-setup"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	source    string
	file      string
	delimiter string
	user      string
}

// app is the state shared by one command invocation.
type app struct {
	flags     rootFlags
	configDir string
	dataDir   string
	cfg       types.Config
	log       zerolog.Logger
	out       *render.Renderer
}

// NewRootCmd creates the top-level "catalog" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Browse and maintain a course catalog",
		Long: "Catalog loads courses from a delimited text file or a relational store,\n" +
			"lists and filters them, and lets an administrator edit the store.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/sqlite)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.source, "source", "", "course source: csv or db (default from config)")
	pf.StringVar(&a.flags.file, "file", "", "course text file for the csv source")
	pf.StringVar(&a.flags.delimiter, "delimiter", "", "field delimiter for the csv source")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newMajorCmd(a),
		newExportCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newPrereqCmd(a),
		newImportCmd(a),
		newHashPasswordCmd(),
	)

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := NewRootCmd().ExecuteContext(context.Background())
	return exitCode(err, os.Stderr)
}

// reportedError is returned once a command has already written the status
// line for err.
type reportedError struct {
	err  error
	code int
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitSuccess
	}
	var reported *reportedError
	if errors.As(err, &reported) {
		return reported.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitUserError
}

// setup resolves directories, loads config, applies flag overrides and
// builds the logger and renderer.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.out = render.New(cmd.OutOrStdout(), a.flags.jsonMode)
	if cmd.Annotations[skipSetup] != "" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	if a.flags.source != "" {
		cfg.Source = a.flags.source
	}
	if a.flags.file != "" {
		cfg.CSVFile = a.flags.file
	}
	if a.flags.delimiter != "" {
		cfg.Delimiter = a.flags.delimiter
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	a.configDir = configDir
	a.dataDir = dataDir
	a.cfg = cfg
	a.log = logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()).
		With().Str("cmd", cmd.CommandPath()).Logger()
	return nil
}

func (a *app) store() *store.Store {
	return store.New(a.cfg.Store, a.dataDir, a.log)
}

// loader returns the Loader for the configured source.
func (a *app) loader() (types.Loader, error) {
	if a.cfg.Source == types.SourceDB {
		return a.store(), nil
	}
	if a.cfg.CSVFile == "" {
		return nil, fmt.Errorf("no course file: pass --file or set csv_file in %s", config.Path(a.configDir))
	}
	return textsource.New(a.cfg.CSVFile, a.cfg.Delimiter, a.log), nil
}

// loadCatalog fills a fresh Catalog from the configured source.
func (a *app) loadCatalog(cmd *cobra.Command) (*types.Catalog, error) {
	l, err := a.loader()
	if err != nil {
		return nil, err
	}
	c := types.NewCatalog()
	if err := l.Load(cmd.Context(), c); err != nil {
		return nil, a.report(err)
	}
	return c, nil
}

// report writes the status line for an operation outcome. Outcomes a user
// can act on exit zero; source and store failures do not.
func (a *app) report(err error) error {
	kind, msg, code := describe(err)
	if code != exitSuccess {
		a.log.Error().Err(err).Msg(msg)
	} else {
		a.log.Debug().Err(err).Msg(msg)
	}
	if werr := a.out.Status(kind, msg); werr != nil {
		return werr
	}
	if code == exitSuccess {
		return nil
	}
	return &reportedError{err: err, code: code}
}

func describe(err error) (render.Kind, string, int) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return render.KindFailed, "Course not found.", exitSuccess
	case errors.Is(err, types.ErrNoMatches):
		return render.KindInfo, "No courses found for that major.", exitSuccess
	case errors.Is(err, types.ErrUnauthorized):
		return render.KindFailed, "Unauthorized: administrator login required.", exitSuccess
	case errors.Is(err, types.ErrInvalidCredentials):
		return render.KindFailed, "Invalid credentials.", exitSuccess
	case errors.Is(err, types.ErrInvalidCourse):
		return render.KindFailed, "Invalid course number.", exitSuccess
	case errors.Is(err, types.ErrInsertFailed):
		return render.KindFailed, "Insert failed.", exitSuccess
	case errors.Is(err, types.ErrSourceUnavailable):
		return render.KindFailed, "Could not open the course source.", exitSysError
	case errors.Is(err, types.ErrSchema), errors.Is(err, types.ErrQuery):
		return render.KindFailed, "Could not read the course store.", exitSysError
	default:
		return render.KindFailed, err.Error(), exitSysError
	}
}

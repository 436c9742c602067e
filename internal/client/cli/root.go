package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jimalvess/diario-cli/internal/client/config"
	"github.com/jimalvess/diario-cli/internal/client/router"
	"github.com/jimalvess/diario-cli/internal/logging"
)

// runner builds the App once flags are parsed and closes it after the
// command ran.
type runner struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	getenv func(string) string

	app *App
}

func (r *runner) open(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString(config.FlagConfig)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path, r.getenv)
	if err != nil {
		return err
	}
	if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewTextLogger(r.errOut, cfg.LogLevel)
	r.app, err = NewApp(cmd.Context(), cfg, r.in, r.out, log)
	return err
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

// Execute runs the diario command line with args. Errors are printed to
// errOut as a one-line message and returned.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	r := &runner{in: in, out: out, errOut: errOut, getenv: os.Getenv}
	defer r.close()

	cmd := newRootCmd(r)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, errorMessage(err))
		return err
	}
	return nil
}

func newRootCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "diario",
		Short:         "Terminal client for the diary service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Start the interactive shell
  diario

  # Scriptable commands
  diario login -u ana
  diario list --sort desc
  diario new --title "Trip" --body "Day one" --file photo.jpg
  diario edit 12 --remove 7 --add notes.pdf
`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			// No subcommand => interactive shell.
			return r.app.Interactive(cmd.Context())
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return r.close()
		},
	}
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newReplCmd(r))
	cmd.AddCommand(newLoginCmd(r))
	cmd.AddCommand(newRegisterCmd(r))
	cmd.AddCommand(newLogoutCmd(r))
	cmd.AddCommand(newForgotPasswordCmd(r))
	cmd.AddCommand(newResetPasswordCmd(r))
	cmd.AddCommand(newListCmd(r))
	cmd.AddCommand(newShowCmd(r))
	cmd.AddCommand(newNewCmd(r))
	cmd.AddCommand(newEditCmd(r))
	cmd.AddCommand(newDeleteCmd(r))
	cmd.AddCommand(newDownloadCmd(r))

	return cmd
}

// Interactive starts the REPL on the App's input. It blocks until the user
// exits or input ends.
func (a *App) Interactive(ctx context.Context) error {
	printlnFn("Diário CLI (type 'help' for commands)")
	if err := a.router.Navigate(ctx, router.PathRoot); err != nil {
		printlnFn(errorMessage(err))
	}
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	open2fa "github.com/cc-d/open2fa"
	"github.com/cc-d/open2fa/pkg/config"
)

var version = "dev"

var (
	flagDir = &cli.StringFlag{
		Name:  "dir",
		Usage: "Base directory holding secrets.json and open2fa.uuid (default ~/.open2fa)",
	}
	flagUUID = &cli.StringFlag{
		Name:  "uuid",
		Usage: "Identity UUID used for remote sync",
	}
	flagAPIURL = &cli.StringFlag{
		Name:  "api-url",
		Usage: "Remote API base URL",
	}
	flagEnvFile = &cli.StringSliceFlag{
		Name:  "env-file",
		Usage: "Dotenv file to read settings from instead of ./.env (repeatable)",
	}
	flagNoColor = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := newApp(stdin, stdout, stderr)
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	env := &cliEnv{in: bufio.NewReader(stdin), out: stdout, errOut: stderr, tty: isTerminal(stdout)}

	return &cli.App{
		Name:            "open2fa",
		Usage:           "TOTP two-factor codes in the terminal, with optional encrypted sync",
		Version:         version,
		Reader:          stdin,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags:           []cli.Flag{flagDir, flagUUID, flagAPIURL, flagEnvFile, flagNoColor},
		Before: func(cCtx *cli.Context) error {
			if cCtx.Bool(flagNoColor.Name) && !color.NoColor {
				color.NoColor = true
			}
			return nil
		},
		// Errors are printed by run.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			addCommand(env),
			deleteCommand(env),
			listCommand(env),
			generateCommand(env),
			qrCommand(env),
			infoCommand(env),
			remoteCommand(env),
		},
	}
}

// cliEnv carries the process streams into command actions.
type cliEnv struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	tty    bool
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// manager loads the configuration, applies the global flags on top of it and
// opens the store.
func (e *cliEnv) manager(cCtx *cli.Context) (*open2fa.Manager, error) {
	var opts []config.Option
	if files := cCtx.StringSlice(flagEnvFile.Name); len(files) > 0 {
		opts = append(opts, config.WithEnvFiles(files...))
	}
	cfg, err := open2fa.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if cCtx.IsSet(flagDir.Name) {
		cfg.Dir = cCtx.String(flagDir.Name)
	}
	if cCtx.IsSet(flagUUID.Name) {
		cfg.UUID = cCtx.String(flagUUID.Name)
	}
	if cCtx.IsSet(flagAPIURL.Name) {
		cfg.APIURL = cCtx.String(flagAPIURL.Name)
	}

	log, err := cfg.NewLogger(e.errOut)
	if err != nil {
		return nil, err
	}
	return open2fa.New(cfg,
		open2fa.WithConfirm(e.confirm),
		open2fa.WithLogger(log),
	)
}

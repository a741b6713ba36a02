package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cc-d/open2fa/pkg/qrcode"
	"github.com/cc-d/open2fa/pkg/store"
	"github.com/cc-d/open2fa/pkg/totp"
)

var (
	errMissingSecret      = errors.New("secret is required (or pass --generate)")
	errSecretWithGenerate = errors.New("pass either SECRET or --generate, not both")
	errTrailingArgs       = errors.New("unexpected arguments after SECRET")
)

// secretArg returns the optional SECRET argument. Flags are only parsed
// before it, so anything that follows is rejected instead of dropped.
func secretArg(cCtx *cli.Context) (string, error) {
	if cCtx.NArg() > 1 {
		return "", fmt.Errorf("%w: %q; put flags before SECRET", errTrailingArgs, strings.Join(cCtx.Args().Tail(), " "))
	}
	return strings.TrimSpace(cCtx.Args().First()), nil
}

func addCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Aliases:   []string{"a"},
		Usage:     "Add a TOTP secret",
		ArgsUsage: "[SECRET]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name of the secret"},
			&cli.BoolFlag{Name: "generate", Aliases: []string{"g"}, Usage: "Generate a new random secret"},
		},
		Action: func(cCtx *cli.Context) error {
			secret, err := secretArg(cCtx)
			if err != nil {
				return err
			}
			if secret != "" && cCtx.Bool("generate") {
				return errSecretWithGenerate
			}

			generated := false
			if secret == "" {
				if !cCtx.Bool("generate") {
					return errMissingSecret
				}
				s, err := totp.GenerateSecretKey()
				if err != nil {
					return err
				}
				secret, generated = s, true
			}

			m, err := env.manager(cCtx)
			if err != nil {
				return err
			}
			sec, err := m.Add(secret, cCtx.String("name"))
			if err != nil {
				return err
			}

			success.Fprintf(env.out, "Added secret: %s %s\n", displayName(sec.Name), store.Truncate(sec.Secret))
			if generated {
				fmt.Fprintf(env.out, "Generated secret: %s\n", sec.Secret)
			}
			return nil
		},
	}
}

func deleteCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"d"},
		Usage:   "Delete local secrets by exact name or secret",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name of the secret to delete"},
			&cli.StringFlag{Name: "secret", Aliases: []string{"s"}, Usage: "The secret to delete"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Do not ask for confirmation"},
		},
		Action: func(cCtx *cli.Context) error {
			sel := store.Selector{Name: cCtx.String("name"), Secret: cCtx.String("secret")}
			if sel.IsEmpty() {
				return store.ErrNoSelector
			}

			m, err := env.manager(cCtx)
			if err != nil {
				return err
			}
			n, err := m.Remove(sel, cCtx.Bool("force"))
			if err != nil {
				return err
			}
			fmt.Fprintf(env.out, "Deleted %d secret(s).\n", n)
			return nil
		},
	}
}

func listCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "List stored secrets",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "secrets", Aliases: []string{"s"}, Usage: "Show full secrets"},
		},
		Action: func(cCtx *cli.Context) error {
			m, err := env.manager(cCtx)
			if err != nil {
				return err
			}
			list := m.Secrets()
			if len(list) == 0 {
				warning.Fprintln(env.out, "No secrets stored.")
				return nil
			}
			renderSecrets(env.out, list, cCtx.Bool("secrets"))
			return nil
		},
	}
}

func generateCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Print current codes, refreshing in place",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Only secrets whose name contains this"},
			&cli.IntFlag{Name: "repeat", Aliases: []string{"r"}, Usage: "Number of refreshes; 0 runs until interrupted"},
			&cli.DurationFlag{Name: "delay", Value: 500 * time.Millisecond, Usage: "Pause between refreshes"},
		},
		Action: func(cCtx *cli.Context) error {
			m, err := env.manager(cCtx)
			if err != nil {
				return err
			}

			ctx := cCtx.Context
			repeat := cCtx.Int("repeat")
			delay := cCtx.Duration("delay")
			prevLines := 0

			for pass := 1; ; pass++ {
				codes, err := m.Store().Codes(cCtx.String("name"))
				if err != nil {
					return err
				}
				if len(codes) == 0 {
					warning.Fprintln(env.out, "No matching secrets.")
					return nil
				}

				var buf bytes.Buffer
				renderCodes(&buf, codes)
				prevLines = redraw(env.out, buf.Bytes(), prevLines, env.tty)

				if repeat > 0 && pass >= repeat {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
			}
		},
	}
}

// redraw writes table over the previous prevLines lines when out is a
// terminal and appends it otherwise. It returns the table's line count.
func redraw(out io.Writer, table []byte, prevLines int, tty bool) int {
	if tty {
		fmt.Fprint(out, strings.Repeat("\033[F", prevLines))
	} else if prevLines > 0 {
		fmt.Fprintln(out)
	}
	_, _ = out.Write(table)
	return bytes.Count(table, []byte("\n"))
}

func qrCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "qr",
		Usage: "Show a secret as a QR code for phone authenticators",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name of the secret"},
			&cli.StringFlag{Name: "secret", Aliases: []string{"s"}, Usage: "The secret"},
			&cli.StringFlag{Name: "issuer", Value: "open2fa", Usage: "Issuer shown in the authenticator"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write a PNG to this path instead of printing"},
			&cli.IntFlag{Name: "size", Value: qrcode.DefaultSize, Usage: "PNG size in pixels"},
		},
		Action: func(cCtx *cli.Context) error {
			sel := store.Selector{Name: cCtx.String("name"), Secret: cCtx.String("secret")}
			if sel.IsEmpty() {
				return store.ErrNoSelector
			}

			m, err := env.manager(cCtx)
			if err != nil {
				return err
			}
			sec, ok := m.Store().Find(sel)
			if !ok {
				return fmt.Errorf("no secret matches %s", selectorString(sel))
			}

			account := sec.Name
			if account == "" {
				account = store.Truncate(sec.Secret)
			}
			uri, err := totp.GetTOTPURI(totp.URIParams{
				Secret:      sec.Secret,
				AccountName: account,
				Issuer:      cCtx.String("issuer"),
				Period:      m.Config().Interval,
			})
			if err != nil {
				return err
			}

			if out := cCtx.String("out"); out != "" {
				if err := qrcode.WriteFile(uri, cCtx.Int("size"), out); err != nil {
					return err
				}
				success.Fprintf(env.out, "QR code written to %s\n", out)
				return nil
			}

			art, err := qrcode.Terminal(uri, false)
			if err != nil {
				return err
			}
			fmt.Fprint(env.out, art)
			return nil
		},
	}
}

func infoCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:    "info",
		Aliases: []string{"i", "status"},
		Usage:   "Show configuration and identity",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "secrets", Aliases: []string{"s"}, Usage: "Show identity values in full"},
		},
		Action: func(cCtx *cli.Context) error {
			m, err := env.manager(cCtx)
			if err != nil {
				return err
			}
			return renderInfo(env.out, m.Info(cCtx.Bool("secrets")))
		},
	}
}

func selectorString(sel store.Selector) string {
	if sel.Name != "" {
		return fmt.Sprintf("name %q", sel.Name)
	}
	return "secret " + store.Truncate(sel.Secret)
}

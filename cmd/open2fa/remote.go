package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	open2fa "github.com/cc-d/open2fa"
	"github.com/cc-d/open2fa/pkg/store"
)

func remoteCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:    "remote",
		Aliases: []string{"r"},
		Usage:   "Encrypted sync with the remote API",
		Subcommands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create or load the identity used for sync",
				Action: env.remoteInit,
			},
			{
				Name:  "push",
				Usage: "Upload local secrets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Only secrets whose name contains this"},
					&cli.StringFlag{Name: "secret", Aliases: []string{"s"}, Usage: "Only secrets containing this"},
				},
				Action: env.remotePush,
			},
			{
				Name:   "pull",
				Usage:  "Download remote secrets and merge new ones",
				Action: env.remotePull,
			},
			{
				Name:      "delete",
				Aliases:   []string{"d"},
				Usage:     "Delete one secret from the remote",
				ArgsUsage: "[SECRET]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name of the secret to delete"},
				},
				Action: env.remoteDelete,
			},
			{
				Name:  "list",
				Usage: "List remote secrets without changing local state",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "secrets", Aliases: []string{"s"}, Usage: "Show full secrets"},
				},
				Action: env.remoteList,
			},
			{
				Name:  "info",
				Usage: "Show configuration and identity",
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
			},
		},
	}
}

func (e *cliEnv) remoteInit(cCtx *cli.Context) error {
	m, err := e.manager(cCtx)
	if err != nil {
		return err
	}

	next, status, err := m.Init()
	if err != nil {
		return err
	}

	switch status {
	case open2fa.InitAlreadyInitialized:
		if m.IdentitySource() == open2fa.SourceConfig {
			fmt.Fprintln(e.out, "Remote identity already set by OPEN2FA_UUID or --uuid.")
		} else {
			fmt.Fprintln(e.out, "Found existing UUID file.")
		}
	case open2fa.InitLoadedFromFile:
		fmt.Fprintln(e.out, "Found existing UUID file.")
	case open2fa.InitCreated:
		success.Fprintf(e.out, "Remote capabilities initialized with UUID: %s\n", next.Identity().UUID())
		fmt.Fprintln(e.out, "Save this UUID somewhere safe; set it as OPEN2FA_UUID on other machines.")
		return renderInfo(e.out, next.Info(false))
	case open2fa.InitDeclined:
		warning.Fprintln(e.out, "Remote initialization cancelled.")
	}
	return nil
}

func (e *cliEnv) remotePush(cCtx *cli.Context) error {
	m, err := e.manager(cCtx)
	if err != nil {
		return err
	}
	stored, err := m.Push(cCtx.Context, open2fa.Filter{
		Name:   cCtx.String("name"),
		Secret: cCtx.String("secret"),
	})
	if err != nil {
		return err
	}
	success.Fprintf(e.out, "Pushed secrets; remote now holds %d secret(s).\n", len(stored))
	return nil
}

func (e *cliEnv) remotePull(cCtx *cli.Context) error {
	m, err := e.manager(cCtx)
	if err != nil {
		return err
	}
	res, err := m.Pull(cCtx.Context, true)
	if err != nil {
		return err
	}
	success.Fprintf(e.out, "Pulled %d secret(s), %d new.\n", len(res.Secrets), len(res.Added))
	if len(res.Added) > 0 {
		renderSecrets(e.out, res.Added, false)
	}
	return nil
}

func (e *cliEnv) remoteDelete(cCtx *cli.Context) error {
	secret, err := secretArg(cCtx)
	if err != nil {
		return err
	}
	sel := store.Selector{Name: cCtx.String("name"), Secret: secret}
	if sel.IsEmpty() {
		return store.ErrNoSelector
	}

	m, err := e.manager(cCtx)
	if err != nil {
		return err
	}
	n, err := m.Delete(cCtx.Context, sel)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Deleted %d secret(s).\n", n)
	return nil
}

func (e *cliEnv) remoteList(cCtx *cli.Context) error {
	m, err := e.manager(cCtx)
	if err != nil {
		return err
	}
	res, err := m.Pull(cCtx.Context, false)
	if err != nil {
		return err
	}
	if len(res.Secrets) == 0 {
		warning.Fprintln(e.out, "No remote secrets.")
		return nil
	}
	renderSecrets(e.out, res.Secrets, cCtx.Bool("secrets"))
	return nil
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/impactd/internal/command"
	"github.com/fyrsmithlabs/impactd/internal/config"
	"github.com/fyrsmithlabs/impactd/internal/registry"
	"github.com/fyrsmithlabs/impactd/internal/storage"
)

func newExecCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command text>",
		Short: "Run one command against the local data file",
		Long: `Run one registry command against the local data file and print the reply.

Examples:
  impactctl exec /list
  impactctl exec "/status 1, In progress"
  impactctl exec --data /srv/impactd/projects.csv "/info 3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openLocal(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			reply, err := svc.Execute(cmd.Context(), opts.chatID, strings.Join(args, " "))
			if errors.Is(err, command.ErrNotCommand) {
				return fmt.Errorf("not a command: commands start with '/', try /start")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		},
	}
}

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session against the local data file",
		Long: `Read commands from stdin, one per line, and print each reply, the way
a chat would. Lines that are not commands get no reply. End with EOF, "exit"
or "quit".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openLocal(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			return runShell(cmd.Context(), svc, opts.chatID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runShell is the stdin transport: one line in, at most one reply out.
func runShell(ctx context.Context, svc *registry.Service, chatID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}

		reply, err := svc.Execute(ctx, chatID, line)
		if errors.Is(err, command.ErrNotCommand) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply.Text)
	}
	return scanner.Err()
}

// openLocal builds a registry over the configured backend, with flags
// overriding IMPACTD_* environment settings.
func openLocal(ctx context.Context, opts *options, logOut io.Writer) (*registry.Service, func(), error) {
	cfg := config.Load()
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}
	if opts.dataPath != "" {
		cfg.Storage.Path = opts.dataPath
	}
	if opts.codec != "" {
		cfg.Storage.Codec = opts.codec
	}
	if opts.locale != "" {
		cfg.Registry.Locale = opts.locale
	}
	if opts.idPolicy != "" {
		cfg.Registry.IDPolicy = opts.idPolicy
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := registry.ParseIDPolicy(cfg.Registry.IDPolicy)
	if err != nil {
		return nil, nil, err
	}
	locale, err := registry.ParseLocale(cfg.Registry.Locale)
	if err != nil {
		return nil, nil, err
	}

	logger := newCLILogger(logOut)

	backend, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, nil, err
	}

	svc := registry.New(nil, backend,
		registry.WithLogger(logger),
		registry.WithLocale(locale),
		registry.WithIDPolicy(policy),
		registry.WithDashboardURL(cfg.Dashboard.URL),
	)
	if err := svc.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, nil, err
	}

	closeFn := func() {
		_ = backend.Close()
		_ = logger.Sync()
	}
	return svc, closeFn, nil
}

// Package main implements impactctl, a CLI for the impactd project registry.
//
// exec and shell run commands directly against the local data file, which is
// handy for administration and for trying the bot without a messenger. send
// and health talk to a running impactd over HTTP.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds the persistent flags shared by all subcommands.
type options struct {
	serverURL string
	chatID    string

	backend  string
	dataPath string
	codec    string
	locale   string
	idPolicy string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "impactctl",
		Short: "CLI for the impactd project registry",
		Long: `impactctl runs registry commands against the local data file or a
running impactd server.

Examples:
  # Register a project in ./projects.csv
  impactctl exec "/add Victory Park, Litter on the paths, A. Ivanov, 2025-05-01"

  # Interactive session
  impactctl shell --locale ru

  # Send through a running server
  impactctl send --server http://127.0.0.1:8080 "/list"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.serverURL, "server", "http://127.0.0.1:8080", "impactd server URL")
	flags.StringVar(&opts.chatID, "chat", "cli", "chat ID to act as")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: file or sqlite (default from IMPACTD_STORAGE_BACKEND)")
	flags.StringVar(&opts.dataPath, "data", "", "data file path (default from IMPACTD_STORAGE_PATH)")
	flags.StringVar(&opts.codec, "codec", "", "file codec: legacy or quoted (default from IMPACTD_STORAGE_CODEC)")
	flags.StringVar(&opts.locale, "locale", "", "reply language: en or ru (default from IMPACTD_REGISTRY_LOCALE)")
	flags.StringVar(&opts.idPolicy, "id-policy", "", "id policy: sequence or legacy (default from IMPACTD_REGISTRY_ID_POLICY)")

	root.AddCommand(
		newExecCmd(opts),
		newShellCmd(opts),
		newSendCmd(opts),
		newHealthCmd(opts),
	)
	return root
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakinah-dev/sakinah/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, noColor := os.LookupEnv("NO_COLOR")
		errors.Print(os.Stderr, err, !noColor)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "sakinah",
		Short: "State, scaling and devtools for the Sakinah app",
		Long: `sakinah inspects and serves the app's global stores.

  • Inspect and reset persisted store state
  • Preview responsive sizes for a device geometry
  • Generate typed store selectors
  • Serve the devtools inspector with live store streams`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ./sakinah.json when present)")

	rootCmd.AddCommand(
		serveCmd(opts),
		scaleCmd(opts),
		genCmd(),
		stateCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

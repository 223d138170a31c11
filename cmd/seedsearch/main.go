// Command seedsearch validates filters and searches the seed space for seeds
// that satisfy them
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	envFiles   []string
	filtersDir string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "seedsearch",
		Short:         "Validate filters and search seeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringArrayVar(&o.envFiles, "env", nil, "dotenv file to load (repeatable, default .env)")
	root.PersistentFlags().StringVar(&o.filtersDir, "filters", "", "filter directory (overrides CORE_FILTERS_DIR)")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		validateCmd(o),
		searchCmd(o),
		resumeCmd(o),
		filtersCmd(o),
		versionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

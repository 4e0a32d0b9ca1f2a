package cmd

import (
	"context"
	"os"
	"os/signal"

	units "github.com/docker/go-units"
	"github.com/oneconcern/crane/pkg/core"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [DIR]",
	Short: "Check out a solution and all its dependencies",
	Long: `Check out a solution and, recursively, all the repositories declared by its .crane file.

DIR defaults to the name of the repository when --url is given, or else to the current directory.

Without --url, DIR must be an existing checkout: its remote gives the URL.
Without --branch or --commit, the branch checked out in DIR is kept, or else the default branch of the remote is used.

Checkouts already completed are left in place when some component fails.
`,
	Example: `# check out a solution in ./platform
crane sync --url git@github.com:oneconcern/platform.git

# update an existing checkout, and its dependencies
crane sync platform

# check out a given commit
crane sync platform --commit 1c4e2f0ea6b1cc3c6a8d0e0f8e4bfa1ac5d1a2b3`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref := core.RootRef{
			URL:    params.sync.url,
			Branch: params.sync.branch,
			Commit: params.sync.commit,
		}
		if len(args) > 0 {
			ref.Dir = args[0]
		}

		dir, err := core.RootDir(ref)
		if err != nil {
			wrapFatalln("invalid directory", err)
			return
		}
		infoLogger.Printf("Sync solution to %s", dir)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		res, err := core.Sync(ctx, ref, coreOptions()...)
		if err != nil {
			flushMetrics()
			wrapFatalln("sync failed", err)
			return
		}
		infoLogger.Printf("Synced %d components in %s", len(res.Visited), units.HumanDuration(res.Elapsed))
	},
}

func init() {
	addURLFlag(syncCmd)
	addBranchFlag(syncCmd)
	addCommitFlag(syncCmd)

	rootCmd.AddCommand(syncCmd)
}

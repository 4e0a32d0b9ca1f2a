package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/oneconcern/crane/pkg/core"
	"github.com/oneconcern/crane/pkg/render"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [DIR]",
	Short: "Show the status of a solution and all its dependencies",
	Long: `Show the working tree status of every checkout in a solution.

Paths which belong to a nested checkout are reported by that checkout only.
DIR defaults to the current directory.
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var dir string
		if len(args) > 0 {
			dir = args[0]
		}

		var opts []render.TreeOption
		if params.status.noColor {
			opts = append(opts, render.WithColor(false))
		}
		renderer, err := render.New(params.status.format, opts...)
		if err != nil {
			wrapFatalln("invalid output format", err)
			return
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		res, err := core.Status(ctx, dir, coreOptions()...)
		if res == nil {
			wrapFatalln("status failed", err)
			return
		}
		// components visited before a failure are still reported
		if rerr := renderer.Render(cmd.OutOrStdout(), res.Arena, res.Root); rerr != nil {
			wrapFatalln("failed to render status", rerr)
			return
		}
		if err != nil {
			wrapFatalln("status failed", err)
			return
		}
	},
}

func init() {
	addStatusFormatFlag(statusCmd)
	addNoColorFlag(statusCmd)

	rootCmd.AddCommand(statusCmd)
}

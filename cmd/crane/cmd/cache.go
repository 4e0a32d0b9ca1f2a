package cmd

import (
	"fmt"

	units "github.com/docker/go-units"
	"github.com/oneconcern/crane/pkg/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Commands to inspect the repository cache",
	Long: `Commands to inspect the repository cache.

The cache holds one bare repository per remote URL. Checkouts borrow objects from there.
`,
}

type cacheEntry struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
	Size string `yaml:"size"`
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the repositories held in the cache",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := core.OpenCache(coreOptions()...)
		if err != nil {
			wrapFatalln("failed to open cache", err)
			return
		}
		entries, err := c.List()
		if err != nil {
			wrapFatalln("failed to list cache", err)
			return
		}

		out := make([]cacheEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, cacheEntry{URL: e.URL, Path: e.Path, Size: units.HumanSize(float64(e.Size))})
		}
		b, err := yaml.Marshal(out)
		if err != nil {
			wrapFatalln("failed to marshal cache entries", err)
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path URL",
	Short: "Print the location of a repository in the cache",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := core.OpenCache(coreOptions()...)
		if err != nil {
			wrapFatalln("failed to open cache", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.RepoPath(args[0]))
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

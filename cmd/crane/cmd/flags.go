package cmd

import (
	"fmt"
	"strings"

	"github.com/oneconcern/crane/pkg/render"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagsT struct {
	root CLIConfig
	sync struct {
		url    string
		branch string
		commit string
	}
	status struct {
		format  render.Format
		noColor bool
	}
}

var params flagsT

func addLogLevelFlag(cmd *cobra.Command) string {
	loglevel := "log-level"
	cmd.PersistentFlags().StringVar(&params.root.LogLevel, loglevel, "", "The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug")
	return loglevel
}

func addCacheDirFlag(cmd *cobra.Command) string {
	c := "cache-dir"
	cmd.PersistentFlags().StringVar(&params.root.CacheDir, c, "", "The directory holding cached repositories (defaults to ~/.crane_cache)")
	return c
}

func addConcurrencyFlag(cmd *cobra.Command) string {
	c := "concurrency"
	cmd.PersistentFlags().IntVar(&params.root.Concurrency, c, 0, "The max number of components processed at once (defaults to 2 x #cpus)")
	return c
}

func addLockTimeoutFlag(cmd *cobra.Command) string {
	c := "lock-timeout"
	cmd.PersistentFlags().DurationVar(&params.root.LockTimeout, c, 0, "The max wait on a component lock")
	return c
}

func addSSHKeyFlag(cmd *cobra.Command) string {
	c := "ssh-key"
	cmd.PersistentFlags().StringVar(&params.root.SSHKey, c, "", "The private key used for ssh remotes (defaults to keys found in ~/.ssh, then the ssh agent)")
	return c
}

func addRemoteFlag(cmd *cobra.Command) string {
	c := "remote"
	cmd.PersistentFlags().StringVar(&params.root.Remote, c, "", "The name of the git remote of checkouts")
	return c
}

func addMetricsFileFlag(cmd *cobra.Command) string {
	c := "metrics-file"
	cmd.PersistentFlags().StringVar(&params.root.MetricsFile, c, "", "Write metrics in the prometheus text format to this file after the run")
	return c
}

func addURLFlag(cmd *cobra.Command) string {
	c := "url"
	cmd.Flags().StringVar(&params.sync.url, c, "", "The URL of the root repository (defaults to the remote of an existing checkout)")
	return c
}

func addBranchFlag(cmd *cobra.Command) string {
	c := "branch"
	cmd.Flags().StringVar(&params.sync.branch, c, "", "The branch to check out at the root")
	return c
}

func addCommitFlag(cmd *cobra.Command) string {
	c := "commit"
	cmd.Flags().StringVar(&params.sync.commit, c, "", "The commit to check out at the root. It takes precedence over --branch")
	return c
}

// formatValue is a flag restricted to the supported output formats
type formatValue struct {
	target *render.Format
}

var _ pflag.Value = formatValue{}

var formats = []render.Format{render.FormatTree, render.FormatYAML, render.FormatJSON}

func (f formatValue) String() string {
	if f.target == nil {
		return ""
	}
	return string(*f.target)
}

func (f formatValue) Set(value string) error {
	for _, format := range formats {
		if value == string(format) {
			*f.target = format
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q", value)
}

func (formatValue) Type() string {
	return "format"
}

func addStatusFormatFlag(cmd *cobra.Command) string {
	c := "format"
	names := make([]string, 0, len(formats))
	for _, format := range formats {
		names = append(names, string(format))
	}
	params.status.format = render.FormatTree
	cmd.Flags().Var(formatValue{target: &params.status.format}, c, "The output format: "+strings.Join(names, ", "))
	return c
}

func addNoColorFlag(cmd *cobra.Command) string {
	c := "no-color"
	cmd.Flags().BoolVar(&params.status.noColor, c, false, "Disable colored output")
	return c
}

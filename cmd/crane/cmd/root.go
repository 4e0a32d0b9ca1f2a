package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/imdario/mergo"
	"github.com/oneconcern/crane/pkg/core"
	"github.com/oneconcern/crane/pkg/dlogger"
	"github.com/oneconcern/crane/pkg/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crane",
	Short: "Crane checks out trees of git repositories",
	Long: `Crane checks out a solution: a git repository which declares, in its .crane file,
further repositories to check out alongside it. Solutions nest: every declared solution
may in turn declare its own dependencies.

Repositories are fetched once in a shared cache and checked out from there, so that
a repository referenced several times in the tree costs a single download.
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupRun()
	},
	// upstream api note:  *PostRun functions aren't called in case of a panic() in Run
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushMetrics()
	},
}

var (
	config    *CLIConfig
	logger    = zap.NewNop()
	collector *metrics.Metrics
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addLogLevelFlag(rootCmd)
	addCacheDirFlag(rootCmd)
	addConcurrencyFlag(rootCmd)
	addLockTimeoutFlag(rootCmd)
	addSSHKeyFlag(rootCmd)
	addRemoteFlag(rootCmd)
	addMetricsFileFlag(rootCmd)
}

// setupRun completes flags with the config, then builds the logger and metrics collector
func setupRun() {
	if config != nil {
		if err := mergo.Merge(&params.root, *config); err != nil {
			wrapFatalln("failed to merge config", err)
			return
		}
	}

	l, err := dlogger.GetLogger(params.root.LogLevel)
	if err != nil {
		wrapFatalln("invalid log level "+params.root.LogLevel, err)
		return
	}
	logger = l

	collector = nil
	if params.root.MetricsFile != "" {
		collector = metrics.New()
	}
}

func coreOptions() []core.Option {
	return []core.Option{
		core.CacheDir(params.root.CacheDir),
		core.Concurrency(params.root.Concurrency),
		core.LockTimeout(params.root.LockTimeout),
		core.Remote(params.root.Remote),
		core.SSHKey(params.root.SSHKey),
		core.Logger(logger),
		core.Metrics(collector),
	}
}

func flushMetrics() {
	if collector == nil {
		return
	}
	if err := collector.WriteTextfile(params.root.MetricsFile); err != nil {
		logger.Warn("could not write metrics", zap.String("file", params.root.MetricsFile), zap.Error(err))
	}
}

package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/dlogger"
	"github.com/oneconcern/crane/pkg/vcs"
	"github.com/spf13/viper"
)

const (
	configEnv  = "CRANE_CONFIG"
	envPrefix  = "crane"
	configName = "crane.yaml"
)

// CLIConfig describes the CLI configuration.
//
// Values come from flags first, then from the environment (CRANE_<KEY>), then from the config file.
type CLIConfig struct {
	CacheDir    string        `mapstructure:"cache_dir" yaml:"cache_dir"`
	LogLevel    string        `mapstructure:"log_level" yaml:"log_level"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`
	SSHKey      string        `mapstructure:"ssh_key" yaml:"ssh_key"`
	Remote      string        `mapstructure:"remote" yaml:"remote"`
	MetricsFile string        `mapstructure:"metrics_file" yaml:"metrics_file"`
}

func configDefaults() map[string]interface{} {
	return map[string]interface{}{
		"cache_dir":    "",
		"log_level":    dlogger.LogLevelInfo,
		"concurrency":  0,
		"lock_timeout": arena.DefaultLockTimeout,
		"ssh_key":      "",
		"remote":       vcs.DefaultRemote,
		"metrics_file": "",
	}
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// configFile locates the config file: $CRANE_CONFIG, else ./crane.yaml, else ~/.crane/config.yaml.
//
// An empty string means that no config file is used.
func configFile() string {
	if file := os.Getenv(configEnv); file != "" {
		return file
	}
	candidates := []string{configName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".crane", "config.yaml"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	for key, value := range configDefaults() {
		viper.SetDefault(key, value)
	}
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	if file := configFile(); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			wrapFatalln("failed to read config file "+file, err)
			return
		}
	}

	var err error
	config, err = newConfig()
	if err != nil {
		wrapFatalln("failed to decode config", err)
		return
	}
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bpineau/autogit/config"
	klog "github.com/bpineau/autogit/pkg/log"
	"github.com/bpineau/autogit/pkg/run"
)

const appName = "autogit"

// runServices is swapped by tests
var runServices = run.Run

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:           appName,
		Short:         "Commit and push directories changes as they happen",
		Long:          "Watch directories, and commit then push their changes to their git remote as they happen",
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			level := viper.GetString("log-level")
			if viper.GetBool("verbose") {
				level = "debug"
			}

			logger, err := klog.New(level, viper.GetString("log-server"), viper.GetString("log-output"))
			if err != nil {
				return fmt.Errorf("failed to initialize the logger: %v", err)
			}

			conf := &config.AgConfig{
				DryRun:         viper.GetBool("dry-run"),
				Logger:         logger,
				Projects:       config.SplitDirs(viper.Get("watch-dirs")),
				IgnoreFile:     viper.GetString("ignore-file"),
				PerProjectLock: viper.GetBool("per-project-lock"),
				NoPush:         viper.GetBool("no-push"),
				CommitPrefix:   viper.GetString("commit-prefix"),
				CommandTimeout: time.Duration(viper.GetInt("command-timeout")) * time.Second,
				HealthPort:     viper.GetInt("healthcheck-port"),
			}

			if err := conf.Init(); err != nil {
				return fmt.Errorf("failed to initialize the configuration: %w", err)
			}

			return runServices(conf)
		},
	}
)

// Execute adds all child commands to the root command and sets their flags.
func Execute() error {
	return RootCmd.Execute()
}

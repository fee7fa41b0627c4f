package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bpineau/autogit/pkg/pipeline"
)

const ignoreFileName = ".ignore"

var (
	cfgFile    string
	watchDirs  []string
	ignoreFile string
	verbose    bool
	dryRun     bool
	noPush     bool
	perProject bool
	commitPfx  string
	cmdTimeout int
	logLevel   string
	logOutput  string
	logServer  string
	healthP    int
)

func bindPFlag(key string, cmd string) {
	if err := viper.BindPFlag(key, RootCmd.PersistentFlags().Lookup(cmd)); err != nil {
		log.Fatal("Failed to bind cli argument:", err)
	}
}

// the ignore rules file lives alongside the program
func defaultIgnoreFile() string {
	exe, err := os.Executable()
	if err != nil {
		return ignoreFileName
	}
	return filepath.Join(filepath.Dir(exe), ignoreFileName)
}

func init() {
	cobra.OnInitialize(loadConfigFile)
	RootCmd.AddCommand(versionCmd)

	defaultCfg := "/etc/autogit/" + appName + ".yaml"
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultCfg, "Configuration file")

	RootCmd.PersistentFlags().StringSliceVarP(&watchDirs, "watch-dirs", "w", nil, "Directories to watch, comma separated (env: WATCH_DIRS)")
	bindPFlag("watch-dirs", "watch-dirs")
	if err := viper.BindEnv("watch-dirs", "WATCH_DIRS"); err != nil {
		log.Fatal("Failed to bind cli argument:", err)
	}

	RootCmd.PersistentFlags().StringVarP(&ignoreFile, "ignore-file", "i", defaultIgnoreFile(), "Ignore rules file, gitignore syntax")
	bindPFlag("ignore-file", "ignore-file")

	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode: log every change and ignored path")
	bindPFlag("verbose", "verbose")

	RootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "Dry-run mode: don't stage, commit or push anything")
	bindPFlag("dry-run", "dry-run")

	RootCmd.PersistentFlags().BoolVarP(&noPush, "no-push", "n", false, "Commit changes, but don't push them")
	bindPFlag("no-push", "no-push")

	RootCmd.PersistentFlags().BoolVarP(&perProject, "per-project-lock", "P", false, "Allow one running commit per directory, instead of a single one for all directories")
	bindPFlag("per-project-lock", "per-project-lock")

	RootCmd.PersistentFlags().StringVarP(&commitPfx, "commit-prefix", "m", pipeline.DefaultCommitPrefix, "Commit message prefix, followed by the UTC time")
	bindPFlag("commit-prefix", "commit-prefix")

	RootCmd.PersistentFlags().IntVarP(&cmdTimeout, "command-timeout", "t", 0, "Git commands timeout in seconds (0 to disable)")
	bindPFlag("command-timeout", "command-timeout")

	RootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level")
	bindPFlag("log-level", "log-level")

	RootCmd.PersistentFlags().StringVarP(&logOutput, "log-output", "o", "stdout", "Log output")
	bindPFlag("log-output", "log-output")

	RootCmd.PersistentFlags().StringVarP(&logServer, "log-server", "r", "", "Log server (if using syslog)")
	bindPFlag("log-server", "log-server")

	RootCmd.PersistentFlags().IntVarP(&healthP, "healthcheck-port", "p", 0, "Port for answering healthchecks on /health url")
	bindPFlag("healthcheck-port", "healthcheck-port")
}

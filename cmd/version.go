package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X github.com/bpineau/autogit/cmd.version=..."
var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("%s version %s (%s, %s/%s)\n", appName, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

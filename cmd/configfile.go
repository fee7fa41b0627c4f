package cmd

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"k8s.io/client-go/util/homedir"
)

// configPaths lists the directories searched for an autogit.yaml, by priority
func configPaths() []string {
	paths := []string{"/etc/" + appName + "/"}
	if home := homedir.HomeDir(); home != "" {
		paths = append(paths, home)
	}
	return append(paths, ".")
}

func loadConfigFile() {
	viper.SetConfigType("yaml")
	viper.SetConfigName(appName)
	for _, path := range configPaths() {
		viper.AddConfigPath(path)
	}

	// an explicit --config wins, when it exists
	if _, err := os.Stat(cfgFile); err == nil {
		viper.SetConfigFile(cfgFile)
	}

	// every option but WATCH_DIRS may come as an AG_ prefixed env variable
	viper.SetEnvPrefix("AG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_DOT_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		RootCmd.PrintErrf("Using config file: %s\n", viper.ConfigFileUsed())
	}
}

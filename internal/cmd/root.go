// Package cmd implements the icon-locator command line.
package cmd

import (
	"strings"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information - set by ldflags during build
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "icon-locator",
	Short: "Locate a desktop icon on screen",
	Long: `icon-locator finds a desktop icon on the screen (or in a screenshot)
by template matching, label verification, visual characteristics and
shape fallbacks, retrying on fresh captures until the icon is found.

It can also serve its detection tools over MCP (stdio) or HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo records build metadata for the version command and the
// server handshake.
func SetVersionInfo(v, built, commit string) {
	version, buildTime, gitCommit = v, built, commit
	server.Version = v
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/icon-locator/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// ICON_LOCATOR_* variables may also come from a .env file
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// e.g., ICON_LOCATOR_RETRY_ATTEMPTS for retry.attempts
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "recorder",
	Short: "Personal hot-dog consumption tracker",
	Long: `RecOrder logs hot-dog consumption events tagged with toppings, keeps a
topping catalog, and derives aggregate statistics over the log.`,
	RunE: runRootDefault,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .recorder.yaml)")
	rootCmd.PersistentFlags().String("db", "", "database path (default ~/.recorder/recorder.db)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".recorder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("RECORDER")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// runRootDefault launches the dashboard when a database already exists.
// First-time users get help instead of an empty screen.
func runRootDefault(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return cmd.Help()
	}
	return runTUI(tuiCmd, nil)
}

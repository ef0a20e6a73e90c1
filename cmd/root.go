package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tightknit/bandsync/constants"
)

var rootCmd = &cobra.Command{
	Use:   "bandsync",
	Short: "Distributed song sync for role-specialized music units",
	Long: `bandsync keeps a set of independent music units (boss, pitch, pattern,
chords, arp) playing a shared song in lockstep over a lossy broadcast link.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig layers an optional bandsync.yaml over built-in defaults and
// BANDSYNC_* environment variables. Read once at startup; units treat it as
// immutable afterwards.
func initConfig() {
	viper.SetDefault("role", "boss")
	viper.SetDefault("boss", false)
	viper.SetDefault("arp_style", "up")
	viper.SetDefault("sync_port", constants.DefaultSyncPort)
	viper.SetDefault("broadcast", "255.255.255.255")
	viper.SetDefault("sync_tolerance", constants.DefaultSyncTolerance)
	viper.SetDefault("song", "demo.bin")
	viper.SetDefault("midi_port", -1)
	viper.SetDefault("midi_channel", 0)
	viper.SetDefault("status_addr", "")

	viper.SetConfigName("bandsync")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("bandsync")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic("Could not read config file: " + err.Error())
		}
	}
}

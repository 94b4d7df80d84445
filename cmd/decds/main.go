// Command decds breaks a data blob into erasure-coded, Merkle-proof
// carrying chunks, verifies their authenticity, and repairs a blob from
// a partial set of chunks.
package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "decds",
	Short: "Decentralized erasure-coded storage engine",
	Long: `decds splits a data blob into fixed-size chunksets, RLNC-encodes
each into redundant fragments, and commits every fragment with a
two-level Merkle tree so any subset of NumOriginal fragments can
reconstruct a chunkset and every fragment can be authenticated
independently of the storage node serving it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "path to a decds.yaml config file")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(breakCmd(), verifyCmd(), repairCmd())
}

func initConfig() error {
	viper.SetEnvPrefix("DECDS")
	viper.AutomaticEnv()

	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return errors.Wrap(err, "reading config file")
		}
	}

	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("decds failed")
		os.Exit(1)
	}
}

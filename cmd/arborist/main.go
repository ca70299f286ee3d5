package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func (rcc *rootCmdConfig) Logf(format string, a ...interface{}) {
	logger(rcc.verbose).Logf(format, a...)
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "arborist",
		Short: "arborist grows and queries random forests",
		Long:  `A tool to train random forests from tabular data, evaluate their out-of-bag error, and use them to predict.`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log progress to stderr")
	rootCmd.AddCommand(versionCmd(), trainCmd(config), predictCmd(config), oobCmd(config))
	return rootCmd
}

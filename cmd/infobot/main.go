// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the infobot CLI: factoid
// knowledge-base operations and the legacy import tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultDatabasePath is the conventional store location.
const defaultDatabasePath = "data/infobot.db"

// rootCmd is the base command for the infobot CLI.
var rootCmd = &cobra.Command{
	Use:   "infobot",
	Short: "Factoid knowledge base tooling for Infobot Reborn",
	Long: `infobot manages the factoid knowledge base inherited from the original
Infobot. The import subcommand ingests legacy botname-is.txt /
botname-are.txt exports with heuristic quality filtering; the kb
subcommands inspect and export the resulting store.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./infobot.yaml or ~/.config/infobot/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("infobot")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "infobot"))
		}
	}

	viper.SetEnvPrefix("INFOBOT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

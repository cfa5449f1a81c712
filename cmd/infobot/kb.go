// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/infobot-reborn/internal/kb"
	"github.com/pdiddy/infobot-reborn/pkg/types"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect and export the factoid knowledge base",
}

func openStore(cmd *cobra.Command) (*kb.Store, error) {
	databasePath, _ := cmd.Flags().GetString("database")
	return kb.NewStore(types.KnowledgeBaseConfig{DatabasePath: databasePath})
}

// --- search subcommand ---

var kbSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search factoids by key substring",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKBSearch,
}

func runKBSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No factoids found.")
		return nil
	}

	fmt.Printf("%-40s  %-4s  %s\n", "KEY", "TYPE", "VALUE")
	fmt.Println(strings.Repeat("-", 100))
	for _, f := range results {
		value := f.Value
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		key := f.Key
		if len(key) > 40 {
			key = key[:37] + "..."
		}
		fmt.Printf("%-40s  %-4s  %s\n", key, f.Type, value)
	}
	fmt.Printf("\n%d factoids\n", len(results))
	return nil
}

// --- count subcommand ---

var kbCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the total number of stored factoids",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

// --- export subcommand ---

var kbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML or JSON",
	RunE:  runKBExport,
}

func runKBExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("output")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if out == "" {
			out = "factoids.yaml"
		}
		if err := store.ExportYAML(context.Background(), out); err != nil {
			return err
		}
	case "json":
		if out == "" {
			out = "factoids.json"
		}
		if err := store.ExportJSON(context.Background(), out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Println("Exported to", out)
	return nil
}

func init() {
	kbCmd.PersistentFlags().String("database", defaultDatabasePath, "path to SQLite database")

	kbSearchCmd.Flags().Int("limit", 10, "maximum number of results")

	kbExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	kbExportCmd.Flags().String("output", "", "output file (default factoids.yaml / factoids.json)")

	kbCmd.AddCommand(kbSearchCmd)
	kbCmd.AddCommand(kbCountCmd)
	kbCmd.AddCommand(kbExportCmd)

	rootCmd.AddCommand(kbCmd)
}

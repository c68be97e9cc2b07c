package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/config"
)

var pathsOpts struct {
	output string
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show config and theme locations",
	Long: `Show where powerpanel reads its configuration, stores the theme
selection and looks for built-in and custom themes.

Drop a folder with main.css, animation.css and ico/{power,restart,sleep}.png
into the custom theme folder to add a theme.`,
	Args: cobra.NoArgs,
	RunE: runPaths,
}

func init() {
	rootCmd.AddCommand(pathsCmd)

	pathsCmd.Flags().StringVarP(&pathsOpts.output, "output", "o", outputPlain,
		"Output format (plain, json, yaml)")
}

// pathEntry is one location printed by the paths command.
type pathEntry struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

func runPaths(cmd *cobra.Command, args []string) error {
	configPath := globalOpts.configPath
	if configPath == "" {
		configPath = config.ConfigPath()
	}

	entries := collectPaths(configPath, config.SelectionPath(), cfg.Themes.BuiltinDir, cfg.Themes.CustomDir)
	return writeOutput(os.Stdout, pathsOpts.output, entries, func(w io.Writer) error {
		return printPaths(w, entries)
	})
}

func collectPaths(configPath, selectionPath, builtinDir, customDir string) []pathEntry {
	entries := []pathEntry{
		{Name: "config", Path: configPath},
		{Name: "selection", Path: selectionPath},
		{Name: "builtin themes", Path: builtinDir},
		{Name: "custom themes", Path: customDir},
	}
	for i := range entries {
		_, err := os.Stat(entries[i].Path)
		entries[i].Exists = err == nil
	}
	return entries
}

func printPaths(w io.Writer, entries []pathEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		suffix := ""
		if !e.Exists {
			suffix = "\t(missing)"
		}
		fmt.Fprintf(tw, "%s:\t%s%s\n", e.Name, e.Path, suffix)
	}
	return tw.Flush()
}

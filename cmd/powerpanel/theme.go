package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/dbus"
)

var themeSetOpts struct {
	force bool
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the active theme",
}

var themeSetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Activate a theme by name",
	Long: `Activate a theme by name. The name is matched exactly against the catalog;
when a built-in and a custom theme share a name the built-in is used.

Unknown names are rejected with suggestions unless --force is given, in
which case the name is stored and presenters keep their current assets.`,
	Args: cobra.ExactArgs(1),
	RunE: runThemeSet,
}

var themeCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the active theme name",
	Args:  cobra.NoArgs,
	RunE:  runThemeCurrent,
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeCurrentCmd)

	themeSetCmd.Flags().BoolVar(&themeSetOpts.force, "force", false,
		"Store the name even if no theme folder matches it")
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		if !themeSetOpts.force {
			snap, err := client.RequestCatalog(ctx)
			if err != nil {
				return err
			}
			if _, ok := snap.Themes.Lookup(name); !ok {
				return unknownThemeError(name, suggestThemes(name, snap.Themes))
			}
		}

		if err := client.SetSelection(ctx, name); err != nil {
			return err
		}
		logger.Info("theme selected", "name", name)
		return nil
	})
}

func unknownThemeError(name string, suggestions []string) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("unknown theme %q (see 'powerpanel themes')", name)
	}
	return fmt.Errorf("unknown theme %q, did you mean: %s", name, strings.Join(suggestions, ", "))
}

func runThemeCurrent(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println(status.Theme)
		return nil
	})
}

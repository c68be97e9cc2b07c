package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/dbus"
	"github.com/jmylchreest/powerpanel/internal/tui"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Launch the interactive settings TUI",
	Long: `Launch the interactive terminal settings for the power panel.

The TUI lists every theme, marks the active one and follows changes made
elsewhere (the panel, other terminals, files added to the theme folders).

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       Use the selected theme
  c           Edit the accent color
  r           Reload the catalog
  /           Filter themes
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	checkCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	client, err := connect(checkCtx)
	cancel()
	if err != nil {
		return err
	}
	defer client.Close()

	return tui.Run(ctx, tui.RunOptions{Backend: client})
}

var _ tui.Backend = (*dbus.Client)(nil)

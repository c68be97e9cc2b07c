package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/dbus"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Show or hide the power panel",
	Long: `Fade the power panel in when hidden, or out when visible.

A toggle that arrives while a fade is running is ignored. Bind this to a
compositor key, e.g. for Hyprland:

  bind = SUPER, Escape, exec, powerpanel toggle`,
	Args: cobra.NoArgs,
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		started, err := client.Toggle(ctx)
		if err != nil {
			return err
		}
		if !started {
			fmt.Fprintln(os.Stderr, "toggle ignored: animation in progress")
		}
		return nil
	})
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/dbus"
)

var colorCmd = &cobra.Command{
	Use:   "color",
	Short: "Show or change the panel accent color",
}

var colorSetCmd = &cobra.Command{
	Use:   "set VALUE",
	Short: "Set the accent color",
	Long: `Set the panel background accent color. VALUE is any CSS color the
toolkit understands, for example "#1e1e2e", "rgba(0,0,0,0.5)" or "teal".`,
	Example: `  powerpanel color set 'rgba(30,30,46,0.8)'`,
	Args:    cobra.ExactArgs(1),
	RunE:    runColorSet,
}

var colorCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the accent color",
	Args:  cobra.NoArgs,
	RunE:  runColorCurrent,
}

func init() {
	rootCmd.AddCommand(colorCmd)
	colorCmd.AddCommand(colorSetCmd)
	colorCmd.AddCommand(colorCurrentCmd)
}

func runColorSet(cmd *cobra.Command, args []string) error {
	color := strings.TrimSpace(args[0])
	if color == "" {
		return fmt.Errorf("color must not be empty")
	}
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		return client.SetAccentColor(ctx, color)
	})
}

func runColorCurrent(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println(status.Color)
		return nil
	})
}

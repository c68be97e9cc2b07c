package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/action"
	"github.com/jmylchreest/powerpanel/internal/dbus"
)

var actionOpts struct {
	dryRun bool
}

var actionCmd = &cobra.Command{
	Use:   "action NAME",
	Short: "Trigger a power action (shutdown, restart, sleep)",
	Long: `Ask powerpaneld to perform a power action, exactly as if the matching
panel button had been pressed.

With --dry-run nothing is sent; the command that would run as a fallback
(or the configured override) is printed instead.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: actionNames(),
	RunE:      runAction,
}

func init() {
	rootCmd.AddCommand(actionCmd)

	actionCmd.Flags().BoolVar(&actionOpts.dryRun, "dry-run", false,
		"Print the command instead of performing the action")
}

func actionNames() []string {
	names := make([]string, len(action.All))
	for i, a := range action.All {
		names[i] = a.String()
	}
	return names
}

func runAction(cmd *cobra.Command, args []string) error {
	a, err := action.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w (want one of: %s)", err, strings.Join(actionNames(), ", "))
	}

	if actionOpts.dryRun {
		argv, ok := action.NewDispatcher(cfg, action.WithLogger(logger)).Command(a)
		if !ok {
			return fmt.Errorf("%s: %w", a, action.ErrUnsupported)
		}
		fmt.Println(strings.Join(argv, " "))
		return nil
	}

	return withClient(func(ctx context.Context, client *dbus.Client) error {
		return client.PerformAction(ctx, a.String())
	})
}

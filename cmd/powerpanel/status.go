package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/config"
	"github.com/jmylchreest/powerpanel/internal/dbus"
)

var statusOpts struct {
	output string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon state",
	Long: `Show the active theme, accent color, panel state and connected
presenters as reported by powerpaneld.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.output, "output", "o", outputPlain,
		"Output format (plain, json, yaml)")
}

// statusReport is the daemon status plus local selection document details.
type statusReport struct {
	dbus.Status `yaml:",inline"`
	SavedAt     *time.Time `json:"saved_at,omitempty" yaml:"saved_at,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}

		report := statusReport{Status: status}
		if info, err := os.Stat(config.SelectionPath()); err == nil {
			saved := info.ModTime()
			report.SavedAt = &saved
		}

		return writeOutput(os.Stdout, statusOpts.output, report, func(w io.Writer) error {
			return printStatus(w, report, time.Now())
		})
	})
}

func printStatus(w io.Writer, r statusReport, now time.Time) error {
	saved := "never"
	if r.SavedAt != nil {
		saved = humanize.RelTime(*r.SavedAt, now, "ago", "from now")
	}

	_, err := fmt.Fprintf(w, `Theme:       %s
Color:       %s
Panel:       %s
Themes:      %d
Presenters:  %d
Theme dir:   %s
Saved:       %s
`, r.Theme, r.Color, r.Panel, r.Themes, r.Presenters, r.ThemeFolder, saved)
	return err
}

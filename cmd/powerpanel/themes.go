package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/theme"
)

var themesOpts struct {
	output string
	check  bool
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Long: `List every theme in the catalog, built-ins first, then custom themes.

The active theme is marked with '*'. When powerpaneld is not running the
catalog is read directly from the theme folders.

With --check each bundle is inspected for its expected asset files
(main.css, animation.css, ico/power.png, ico/restart.png, ico/sleep.png).
Incomplete bundles are still listed and still selectable.`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)

	themesCmd.Flags().StringVarP(&themesOpts.output, "output", "o", outputPlain,
		"Output format (plain, json, yaml)")
	themesCmd.Flags().BoolVar(&themesOpts.check, "check", false,
		"Report missing asset files for each theme")
}

// themeRow is one catalog entry as printed by the themes command.
type themeRow struct {
	Name     string     `json:"name" yaml:"name"`
	Origin   string     `json:"origin" yaml:"origin"`
	Path     string     `json:"path" yaml:"path"`
	Active   bool       `json:"active" yaml:"active"`
	Missing  []string   `json:"missing,omitempty" yaml:"missing,omitempty"`
	Modified *time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
}

func runThemes(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	catalog, active := loadCatalog(ctx)
	rows := buildThemeRows(catalog, active, themesOpts.check)

	return writeOutput(os.Stdout, themesOpts.output, rows, func(w io.Writer) error {
		return printThemeRows(w, rows, themesOpts.check, time.Now())
	})
}

// loadCatalog asks the daemon for the catalog and falls back to scanning
// the local theme folders when it is unreachable.
func loadCatalog(ctx context.Context) (theme.Catalog, string) {
	client, err := connect(ctx)
	if err == nil {
		defer client.Close()
		snap, err := client.RequestCatalog(ctx)
		if err == nil {
			return snap.Themes, snap.ActiveThemeName
		}
		logger.Warn("daemon catalog request failed, scanning locally", "error", err)
	} else {
		logger.Debug("daemon unavailable, scanning locally", "error", err)
	}

	catalog := localStore().Scan()
	return catalog, localSelections().Load().ActiveThemeName
}

// buildThemeRows converts a catalog to rows. Only the first entry named
// active is marked since that is the one the name resolves to.
func buildThemeRows(catalog theme.Catalog, active string, check bool) []themeRow {
	rows := make([]themeRow, 0, len(catalog))
	marked := false
	for _, d := range catalog {
		row := themeRow{
			Name:   d.Name,
			Origin: d.Origin.String(),
			Path:   d.Root,
		}
		if !marked && d.Name == active {
			row.Active = true
			marked = true
		}
		if check {
			row.Missing = d.Check()
			if info, err := os.Stat(d.Root); err == nil {
				mod := info.ModTime()
				row.Modified = &mod
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func printThemeRows(w io.Writer, rows []themeRow, check bool, now time.Time) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No themes found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		mark := " "
		if r.Active {
			mark = "*"
		}
		line := fmt.Sprintf("%s %s\t%s\t%s", mark, r.Name, r.Origin, r.Path)
		if check {
			line += "\t" + checkSummary(r, now)
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func checkSummary(r themeRow, now time.Time) string {
	var status string
	if len(r.Missing) == 0 {
		status = "ok"
	} else {
		status = "missing " + strings.Join(r.Missing, ", ")
	}
	if r.Modified != nil {
		status += " (updated " + humanize.RelTime(*r.Modified, now, "ago", "from now") + ")"
	}
	return status
}

// suggestThemes returns catalog names close to name, best match first.
func suggestThemes(name string, catalog theme.Catalog) []string {
	seen := make(map[string]bool)
	var names []string
	for _, n := range catalog.Names() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	matches := fuzzy.Find(strings.ToLower(name), lowerAll(names))
	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, names[m.Index])
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

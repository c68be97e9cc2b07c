// Package theme discovers theme bundles for the power panel.
//
// A theme bundle is a directory containing main.css, animation.css and an
// ico/ directory with power.png, restart.png and sleep.png. Bundles are found
// in two roots: the built-in root shipped with the application and a per-user
// custom root (~/.config/powerpanel/custom_theme by default). Built-ins always
// come first in a catalog, so a built-in shadows a custom bundle of the same
// name.
//
// The Dark and Light bundles are embedded in the binary and installed into the
// built-in root on first run. A CatalogWatcher reports additions, removals and
// edits under either root so presenters can refresh without restarting.
package theme

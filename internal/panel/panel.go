package panel

import (
	"log/slog"
	"sync"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/powerpanel/internal/action"
	"github.com/jmylchreest/powerpanel/internal/config"
	"github.com/jmylchreest/powerpanel/internal/theme"
	"github.com/jmylchreest/powerpanel/internal/visibility"
)

// toggleTimeout bounds how long Toggle waits for the main loop.
const toggleTimeout = time.Second

// Provider priorities. The accent rule overrides the theme's background.
const (
	priorityMain      = gtk.STYLE_PROVIDER_PRIORITY_APPLICATION
	priorityAnimation = gtk.STYLE_PROVIDER_PRIORITY_APPLICATION + 1
	priorityAccent    = gtk.STYLE_PROVIDER_PRIORITY_APPLICATION + 2
)

// Panel is the power panel window.
type Panel struct {
	logger *slog.Logger
	config *config.Config

	window  *gtk.Window
	box     *gtk.Box
	buttons map[action.Action]*gtk.Button
	images  map[string]*gtk.Image

	mainCSS   *gtk.CSSProvider
	animCSS   *gtk.CSSProvider
	accentCSS *gtk.CSSProvider

	machine *visibility.Machine

	mu       sync.RWMutex
	onAction func(id string)
}

// New builds the panel window hidden. Must be called on the GTK main loop.
func New(app *gtk.Application, cfg *config.Config, guard *visibility.Guard, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	p := &Panel{
		logger:    logger,
		config:    cfg,
		buttons:   make(map[action.Action]*gtk.Button),
		images:    make(map[string]*gtk.Image),
		mainCSS:   gtk.NewCSSProvider(),
		animCSS:   gtk.NewCSSProvider(),
		accentCSS: gtk.NewCSSProvider(),
	}

	p.window = gtk.NewWindow()
	p.window.SetApplication(app)
	p.window.SetDecorated(false)
	p.window.SetResizable(false)
	p.window.SetDefaultSize(cfg.Panel.Width, cfg.Panel.Height)
	p.window.SetTitle("Power")

	// No anchors: the compositor centers the surface
	layershell.InitForWindow(p.window)
	layershell.SetLayer(p.window, layerFor(cfg.Panel.Layer))
	layershell.SetExclusiveZone(p.window, 0)
	layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeOnDemand)
	layershell.SetNamespace(p.window, config.AppName)

	p.buildUI()
	p.connectSignals()
	p.installProviders()
	applyColorScheme(cfg.Appearance.ColorScheme)

	p.machine = visibility.NewMachine(gtkWindow{w: p.window}, GLibScheduler{}, guard,
		visibility.WithStep(cfg.Panel.FadeStep),
		visibility.WithTick(cfg.Panel.FadeTick.Duration()),
		visibility.WithLogger(logger),
	)
	p.machine.OnChange(func(s visibility.State) {
		p.logger.Debug("panel state changed", "state", s)
	})

	p.window.SetOpacity(0)
	p.window.SetVisible(false)
	return p
}

// buildUI creates the button row.
func (p *Panel) buildUI() {
	p.box = gtk.NewBox(gtk.OrientationHorizontal, 12)
	p.box.AddCSSClass("panel")
	p.box.SetHAlign(gtk.AlignCenter)
	p.box.SetVAlign(gtk.AlignCenter)
	p.box.SetHExpand(true)
	p.box.SetVExpand(true)

	for _, a := range action.All {
		p.box.Append(p.buildButton(a))
	}

	p.window.SetChild(p.box)
}

// buildButton creates one action button with its icon and caption.
func (p *Panel) buildButton(a action.Action) gtk.Widgetter {
	content := gtk.NewBox(gtk.OrientationVertical, 6)

	image := gtk.NewImage()
	image.AddCSSClass("panel-icon")
	image.SetPixelSize(64)
	p.images[iconFor(a)] = image
	content.Append(image)

	label := gtk.NewLabel(a.Label())
	label.AddCSSClass("panel-label")
	content.Append(label)

	btn := gtk.NewButton()
	btn.AddCSSClass("panel-button")
	btn.AddCSSClass(buttonClass(a))
	btn.SetChild(content)
	btn.SetTooltipText(a.Label())

	id := string(a)
	btn.ConnectClicked(func() {
		p.logger.Debug("button clicked", "action", id)
		p.machine.Hide()

		p.mu.RLock()
		handler := p.onAction
		p.mu.RUnlock()
		if handler != nil {
			go handler(id)
		}
	})

	p.buttons[a] = btn
	return btn
}

// connectSignals wires keyboard handling.
func (p *Panel) connectSignals() {
	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, _ uint, _ gdk.ModifierType) bool {
		if keyval == gdk.KEY_Escape {
			p.machine.Hide()
			return true
		}
		return false
	})
	p.window.AddController(keys)

	p.window.ConnectCloseRequest(func() bool {
		// Closing hides; the daemon owns the window's lifetime
		p.machine.Hide()
		return true
	})
}

// installProviders registers the three CSS providers on the display.
func (p *Panel) installProviders() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		p.logger.Warn("no display available, cannot apply theme")
		return
	}
	gtk.StyleContextAddProviderForDisplay(display, p.mainCSS, priorityMain)
	gtk.StyleContextAddProviderForDisplay(display, p.animCSS, priorityAnimation)
	gtk.StyleContextAddProviderForDisplay(display, p.accentCSS, priorityAccent)
}

// applyColorScheme forces libadwaita's scheme when the config overrides it.
func applyColorScheme(scheme string) {
	manager := adw.StyleManagerGetDefault()
	switch config.ColorScheme(scheme) {
	case config.ColorSchemeDark:
		manager.SetColorScheme(adw.ColorSchemeForceDark)
	case config.ColorSchemeLight:
		manager.SetColorScheme(adw.ColorSchemeForceLight)
	default:
		manager.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// SetActionHandler sets the function run, off the main loop, when a button
// is pressed.
func (p *Panel) SetActionHandler(fn func(id string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onAction = fn
}

// Toggle fades the panel in or out. Safe to call from any goroutine.
func (p *Panel) Toggle() bool {
	result := make(chan bool, 1)
	post(func() { result <- p.machine.Toggle() })

	select {
	case accepted := <-result:
		return accepted
	case <-time.After(toggleTimeout):
		p.logger.Warn("toggle timed out waiting for the main loop")
		return false
	}
}

// State returns the visibility state name.
func (p *Panel) State() string {
	return p.machine.State().String()
}

// ApplyAssets swaps in a theme's stylesheets and icons. Files are read on the
// calling goroutine; widgets are updated on the main loop.
func (p *Panel) ApplyAssets(assets theme.Assets) {
	mainCSS := readStyleSheet(assets.MainStyleSheet, p.logger)
	animCSS := readStyleSheet(assets.AnimationStyleSheet, p.logger)

	post(func() {
		p.mainCSS.LoadFromString(mainCSS)
		p.animCSS.LoadFromString(animCSS)
		for name, path := range assets.Icons {
			if image, ok := p.images[name]; ok {
				image.SetFromFile(path)
			}
		}
		p.logger.Info("theme applied", "theme", assets.Theme)
	})
}

// ApplyAccentColor sets the panel background color.
func (p *Panel) ApplyAccentColor(color string) {
	css := accentCSS(color)

	post(func() {
		p.accentCSS.LoadFromString(css)
		p.logger.Debug("accent color applied", "color", color)
	})
}

// Close stops any fade and destroys the window. Must be called on the main loop.
func (p *Panel) Close() {
	p.machine.Stop()
	p.window.Destroy()
}

// Package tui provides the BubbleTea-based settings presenter.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/powerpanel/internal/dbus"
	"github.com/jmylchreest/powerpanel/internal/theme"
	"github.com/jmylchreest/powerpanel/internal/themesync"
)

// requestTimeout bounds every call to the backend.
const requestTimeout = 5 * time.Second

// Backend is the daemon surface the settings presenter talks to.
// *dbus.Client satisfies it.
type Backend interface {
	RequestCatalog(ctx context.Context) (themesync.CatalogSnapshot, error)
	SetSelection(ctx context.Context, name string) error
	SetAccentColor(ctx context.Context, color string) error
	Subscribe(ctx context.Context) (<-chan themesync.Message, error)
	Status(ctx context.Context) (dbus.Status, error)
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeColor
	ModeHelp
)

// Model is the main TUI model.
type Model struct {
	ctx     context.Context
	backend Backend

	// Current mode
	mode Mode

	// Components
	list       list.Model
	colorInput textinput.Model
	help       help.Model

	// State mirrored from the daemon
	catalog theme.Catalog
	active  string
	color   string

	width  int
	height int
	ready  bool

	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool

	// Broadcast subscription, nil until subscribed
	events <-chan themesync.Message
}

// themeItem wraps a catalog entry for the list component.
type themeItem struct {
	descriptor theme.Descriptor
	active     bool
}

func (i themeItem) Title() string {
	return i.descriptor.Name
}

func (i themeItem) Description() string {
	return i.descriptor.Origin.String()
}

func (i themeItem) FilterValue() string {
	return i.descriptor.Name + " " + i.descriptor.Origin.String()
}

// themeDelegate marks the active theme in the list.
type themeDelegate struct {
	list.DefaultDelegate
}

func newThemeDelegate() themeDelegate {
	return themeDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item, prefixing and coloring the active theme.
func (d themeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(themeItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	var titleStyle, descStyle lipgloss.Style
	if index == m.Index() {
		titleStyle = d.Styles.SelectedTitle
		descStyle = d.Styles.SelectedDesc
	} else {
		titleStyle = d.Styles.NormalTitle
		descStyle = d.Styles.NormalDesc
	}

	title := "  " + ti.Title()
	if ti.active {
		title = "● " + ti.Title()
		titleStyle = titleStyle.Foreground(lipgloss.Color("10"))
	}

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render("  "+ti.Description()))
}

// New creates a new TUI model over backend. ctx bounds the subscription.
func New(ctx context.Context, backend Backend) Model {
	l := list.New(nil, newThemeDelegate(), 0, 0)
	l.Title = "Themes"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	colorInput := textinput.New()
	colorInput.Placeholder = "#RRGGBB, rgb(...), or a color name"
	colorInput.CharLimit = 64

	return Model{
		ctx:        ctx,
		backend:    backend,
		mode:       ModeList,
		list:       l,
		colorInput: colorInput,
		help:       help.New(),
		keys:       DefaultKeyMap(),
	}
}

// Init loads the catalog and subscribes to broadcasts.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCatalog,
		m.subscribe,
	)
}

type catalogMsg struct {
	snapshot themesync.CatalogSnapshot
	color    string
	err      error
}

type subscribedMsg struct {
	events <-chan themesync.Message
	err    error
}

type eventMsg struct {
	msg themesync.Message
}

type eventsClosedMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// loadCatalog fetches a snapshot addressed to this presenter.
func (m Model) loadCatalog() tea.Msg {
	ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
	defer cancel()
	snap, err := m.backend.RequestCatalog(ctx)
	if err != nil {
		return catalogMsg{err: err}
	}
	status, err := m.backend.Status(ctx)
	if err != nil {
		return catalogMsg{err: err}
	}
	return catalogMsg{snapshot: snap, color: status.Color}
}

// subscribe opens the broadcast stream.
func (m Model) subscribe() tea.Msg {
	events, err := m.backend.Subscribe(m.ctx)
	return subscribedMsg{events: events, err: err}
}

// waitForEvent blocks until the next broadcast arrives.
func (m Model) waitForEvent() tea.Msg {
	if m.events == nil {
		return nil
	}
	msg, ok := <-m.events
	if !ok {
		return eventsClosedMsg{}
	}
	return eventMsg{msg: msg}
}

// selectTheme asks the daemon to switch themes.
func (m Model) selectTheme(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()
		if err := m.backend.SetSelection(ctx, name); err != nil {
			return statusMsg{text: "Select failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Requested theme " + name}
	}
}

// setColor asks the daemon to change the accent color.
func (m Model) setColor(color string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, requestTimeout)
		defer cancel()
		if err := m.backend.SetAccentColor(ctx, color); err != nil {
			return statusMsg{text: "Color failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Requested color " + color}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-2)
		m.help.Width = msg.Width
		return m, nil

	case catalogMsg:
		if msg.err != nil {
			return m, statusCmd("Catalog unavailable: "+msg.err.Error(), true)
		}
		m.applySnapshot(msg.snapshot)
		m.color = msg.color
		return m, nil

	case subscribedMsg:
		if msg.err != nil {
			return m, statusCmd("Live updates unavailable: "+msg.err.Error(), true)
		}
		m.events = msg.events
		return m, m.waitForEvent

	case eventMsg:
		m.handleEvent(msg.msg)
		return m, m.waitForEvent

	case eventsClosedMsg:
		m.events = nil
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeColor:
		m.colorInput, cmd = m.colorInput.Update(msg)
	}
	return m, cmd
}

func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleEvent folds one daemon broadcast into the mirrored state.
func (m *Model) handleEvent(msg themesync.Message) {
	switch ev := msg.(type) {
	case themesync.CatalogSnapshot:
		m.applySnapshot(ev)
	case themesync.ThemeApplied:
		m.active = ev.Name
		m.list.SetItems(m.buildListItems())
	case themesync.ColorApplied:
		m.color = ev.Color
	}
}

func (m *Model) applySnapshot(snap themesync.CatalogSnapshot) {
	m.catalog = snap.Themes
	m.active = snap.ActiveThemeName
	m.list.SetItems(m.buildListItems())
}

// buildListItems creates list items from the catalog. Only the first entry
// with the active name is marked, matching how names resolve.
func (m Model) buildListItems() []list.Item {
	items := make([]list.Item, len(m.catalog))
	marked := false
	for i, d := range m.catalog {
		active := !marked && d.Name == m.active
		if active {
			marked = true
		}
		items[i] = themeItem{descriptor: d, active: active}
	}
	return items
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text entry swallows everything but its own keys.
	if m.mode == ModeColor {
		return m.handleColorKey(msg)
	}
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	if m.mode == ModeHelp {
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}
	return m.handleListKey(msg)
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if item, ok := m.list.SelectedItem().(themeItem); ok {
			return m, m.selectTheme(item.descriptor.Name)
		}
		return m, nil

	case key.Matches(msg, m.keys.Color):
		m.mode = ModeColor
		m.colorInput.SetValue(m.color)
		m.colorInput.CursorEnd()
		m.colorInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadCatalog
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleColorKey handles keys while editing the accent color.
func (m Model) handleColorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		m.mode = ModeList
		m.colorInput.Blur()
		return m, nil

	case tea.KeyEnter:
		m.mode = ModeList
		m.colorInput.Blur()
		color := strings.TrimSpace(m.colorInput.Value())
		if color == "" || color == m.color {
			return m, statusCmd("Color unchanged", false)
		}
		return m, m.setColor(color)
	}

	var cmd tea.Cmd
	m.colorInput, cmd = m.colorInput.Update(msg)
	return m, cmd
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeColor:
		return m.viewColor()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View() + "\n"

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return s + statusStyle.Render(m.statusMsg)
	}
	return s + m.buildKeybindBar(m.width)
}

func (m Model) viewColor() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	current := m.color
	if current == "" {
		current = "(none)"
	}

	s := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render("Accent Color") + "\n\n"
	s += labelStyle.Render("Current: ") + current + "\n\n"
	s += m.colorInput.View() + "\n\n"
	s += labelStyle.Render("enter apply  esc cancel")
	return s
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.FullHelpView(m.keys.FullHelp()) + "\n\n"
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
	return s
}

// buildKeybindBar builds a keybind bar that fits within width, dropping
// the least important bindings first.
func (m Model) buildKeybindBar(width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	binds := []key.Binding{m.keys.Quit, m.keys.Select, m.keys.Color, m.keys.Help, m.keys.Refresh}

	const separator = "  "
	result := ""
	plainLen := 0
	for _, b := range binds {
		h := b.Help()
		plain := h.Key + " " + h.Desc
		next := plainLen + len(plain)
		if result != "" {
			next += len(separator)
		}
		if width > 0 && next > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += keyStyle.Render(h.Key) + " " + h.Desc
		plainLen = next
	}
	return style.Render(result)
}

// Selected returns the name of the theme under the cursor.
func (m Model) Selected() string {
	if item, ok := m.list.SelectedItem().(themeItem); ok {
		return item.descriptor.Name
	}
	return ""
}

// Active returns the active theme name as last reported by the daemon.
func (m Model) Active() string {
	return m.active
}

// Color returns the accent color as last reported by the daemon.
func (m Model) Color() string {
	return m.color
}

// RunOptions configures the TUI.
type RunOptions struct {
	Backend Backend
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Backend == nil {
		return fmt.Errorf("no backend")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, opts.Backend), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

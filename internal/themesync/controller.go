package themesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jmylchreest/powerpanel/internal/config"
	"github.com/jmylchreest/powerpanel/internal/theme"
)

// DefaultBufferSize is the per-presenter event buffer.
const DefaultBufferSize = 16

const inboxSize = 64

var (
	// ErrClosed is returned when the controller loop has stopped.
	ErrClosed = errors.New("theme controller is closed")
	// ErrRunning is returned by Run when the loop is already active.
	ErrRunning = errors.New("theme controller is already running")
)

// ThemeSource lists the available themes. Implemented by *theme.Store.
type ThemeSource interface {
	Scan() theme.Catalog
}

// SelectionPersister loads and stores the selection document.
// Implemented by *config.SelectionStore.
type SelectionPersister interface {
	Load() config.Selection
	Save(config.Selection) error
}

// refreshCatalog is queued by RefreshCatalog so catalog broadcasts are
// ordered with presenter requests.
type refreshCatalog struct{}

func (refreshCatalog) Kind() string { return "refresh-catalog" }
func (refreshCatalog) message()     {}
func (refreshCatalog) request()     {}

// inbound is one queued request. Replies go to reply when set, otherwise
// to the sending connection.
type inbound struct {
	from  *Conn
	req   Request
	reply chan Message
}

// Controller owns the selection and serialises every change to it.
type Controller struct {
	logger     *slog.Logger
	store      ThemeSource
	selections SelectionPersister
	bufferSize int

	inbox chan inbound
	done  chan struct{}

	mu        sync.RWMutex
	conns     map[string]*Conn
	selection config.Selection
	running   bool
}

// NewController creates a controller and loads the persisted selection.
func NewController(store ThemeSource, selections SelectionPersister, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	sel := selections.Load()
	logger.Info("loaded theme selection", "theme", sel.ActiveThemeName, "color", sel.AccentColor)

	return &Controller{
		logger:     logger,
		store:      store,
		selections: selections,
		bufferSize: DefaultBufferSize,
		inbox:      make(chan inbound, inboxSize),
		done:       make(chan struct{}),
		conns:      make(map[string]*Conn),
		selection:  sel,
	}
}

// SetBufferSize sets the event buffer for connections made afterwards.
func (c *Controller) SetBufferSize(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bufferSize = n
}

// Selection returns the current selection.
func (c *Controller) Selection() config.Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection
}

// ConnectionCount returns the number of attached presenters.
func (c *Controller) ConnectionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.conns)
}

// Connect attaches a presenter. label is used in logs only.
// After Run has returned the connection's events channel is already closed.
func (c *Controller) Connect(label string) *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := &Conn{
		id:     newConnID(),
		label:  label,
		ctrl:   c,
		events: make(chan Message, c.bufferSize),
	}

	select {
	case <-c.done:
		// Run has already closed every connection; this one starts closed.
		close(conn.events)
		c.logger.Debug("presenter connected after shutdown", "id", conn.id, "label", label)
		return conn
	default:
	}

	c.conns[conn.id] = conn

	c.logger.Debug("presenter connected", "id", conn.id, "label", label)
	return conn
}

// disconnect removes a connection and closes its event channel.
func (c *Controller) disconnect(conn *Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.conns[conn.id]; !ok {
		return
	}
	delete(c.conns, conn.id)
	close(conn.events)
	c.logger.Debug("presenter disconnected", "id", conn.id, "label", conn.label)
}

// RefreshCatalog queues a CatalogSnapshot broadcast to every presenter.
func (c *Controller) RefreshCatalog() {
	if err := c.submit(context.Background(), inbound{req: refreshCatalog{}}); err != nil {
		c.logger.Debug("catalog refresh dropped", "error", err)
	}
}

// Snapshot asks the loop for a catalog snapshot and waits for it.
func (c *Controller) Snapshot(ctx context.Context) (CatalogSnapshot, error) {
	reply := make(chan Message, 1)
	if err := c.submit(ctx, inbound{req: RequestCatalog{}, reply: reply}); err != nil {
		return CatalogSnapshot{}, err
	}

	select {
	case msg := <-reply:
		return msg.(CatalogSnapshot), nil
	case <-ctx.Done():
		return CatalogSnapshot{}, ctx.Err()
	case <-c.done:
		return CatalogSnapshot{}, ErrClosed
	}
}

// Run processes requests until ctx is cancelled. Each request is handled to
// completion before the next is read. All connections are closed on return.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrRunning
	}
	c.running = true
	c.mu.Unlock()

	c.logger.Debug("theme controller started")
	defer func() {
		close(c.done)
		c.closeAll()
		c.logger.Debug("theme controller stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-c.inbox:
			c.handle(in)
		}
	}
}

// submit queues a request for the loop.
func (c *Controller) submit(ctx context.Context, in inbound) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.inbox <- in:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) handle(in inbound) {
	switch req := in.req.(type) {
	case Hello:
		catalog := c.store.Scan()
		sel := c.Selection()
		c.reply(in, CatalogSnapshot{Themes: catalog, ActiveThemeName: sel.ActiveThemeName})
		c.reply(in, c.resolve(sel.ActiveThemeName, catalog))
		c.reply(in, ColorApplied{Color: sel.AccentColor})

	case RequestCatalog:
		c.reply(in, c.snapshot())

	case SetSelection:
		c.setSelection(req.Name)

	case SetAccentColor:
		c.setAccentColor(req.Color)

	case refreshCatalog:
		c.broadcast(c.snapshot())

	default:
		c.logger.Warn("ignoring unknown request", "kind", in.req.Kind())
	}
}

// setSelection persists, resolves and broadcasts a theme change. When the
// document can't be written the selection is left as it was and the current
// theme is announced again so presenters drop any optimistic state.
func (c *Controller) setSelection(name string) {
	current := c.Selection()
	next := current
	next.ActiveThemeName = name

	if err := c.selections.Save(next); err != nil {
		c.logger.Error("failed to persist theme selection", "theme", name, "error", err)
		c.broadcast(c.resolve(current.ActiveThemeName, c.store.Scan()))
		return
	}
	c.setCurrent(next)

	c.logger.Info("theme selected", "theme", name)
	c.broadcast(c.resolve(name, c.store.Scan()))
}

// setAccentColor persists and broadcasts an accent color change.
func (c *Controller) setAccentColor(color string) {
	current := c.Selection()
	next := current
	next.AccentColor = color

	if err := c.selections.Save(next); err != nil {
		c.logger.Error("failed to persist accent color", "color", color, "error", err)
		c.broadcast(ColorApplied{Color: current.AccentColor})
		return
	}
	c.setCurrent(next)

	c.logger.Info("accent color set", "color", color)
	c.broadcast(ColorApplied{Color: color})
}

func (c *Controller) setCurrent(sel config.Selection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = sel
}

func (c *Controller) snapshot() CatalogSnapshot {
	return CatalogSnapshot{
		Themes:          c.store.Scan(),
		ActiveThemeName: c.Selection().ActiveThemeName,
	}
}

// resolve builds the ThemeApplied notification for name.
func (c *Controller) resolve(name string, catalog theme.Catalog) ThemeApplied {
	d, ok := catalog.Lookup(name)
	if !ok {
		c.logger.Warn("theme not found, sending name only", "theme", name)
		return ThemeApplied{Name: name}
	}
	if missing := d.Check(); len(missing) > 0 {
		c.logger.Debug("theme is missing assets", "theme", name, "origin", d.Origin, "missing", missing)
	}
	return ThemeApplied{Descriptor: &d, Name: name}
}

func (c *Controller) reply(in inbound, msg Message) {
	if in.reply != nil {
		select {
		case in.reply <- msg:
		default:
		}
		return
	}
	if in.from == nil {
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.conns[in.from.id]; !ok {
		return
	}
	c.deliver(in.from, msg)
}

func (c *Controller) broadcast(msg Message) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, conn := range c.conns {
		c.deliver(conn, msg)
	}
}

// deliver sends without blocking. Caller holds c.mu.
func (c *Controller) deliver(conn *Conn, msg Message) {
	select {
	case conn.events <- msg:
	default:
		c.logger.Warn("presenter not keeping up, dropping message",
			"id", conn.id, "label", conn.label, "kind", msg.Kind())
	}
}

func (c *Controller) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, conn := range c.conns {
		close(conn.events)
		delete(c.conns, id)
	}
}

package themesync

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Conn is one presenter's attachment to a Controller.
type Conn struct {
	id     string
	label  string
	ctrl   *Controller
	events chan Message
}

// newConnID returns a new ULID string.
func newConnID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

// ID returns the connection's unique id.
func (c *Conn) ID() string {
	return c.id
}

// Label returns the name given to Connect.
func (c *Conn) Label() string {
	return c.label
}

// Events returns the channel of notifications for this presenter.
// It is closed by Close or when the controller stops.
func (c *Conn) Events() <-chan Message {
	return c.events
}

// Send queues a request. It blocks only while the controller inbox is full.
func (c *Conn) Send(req Request) error {
	return c.SendContext(context.Background(), req)
}

// SendContext is Send with a deadline on queueing.
func (c *Conn) SendContext(ctx context.Context, req Request) error {
	return c.ctrl.submit(ctx, inbound{from: c, req: req})
}

// Hello requests the catalog, the active theme and the accent color.
func (c *Conn) Hello() error {
	return c.Send(Hello{})
}

// Close detaches the presenter. Safe to call more than once.
func (c *Conn) Close() {
	c.ctrl.disconnect(c)
}

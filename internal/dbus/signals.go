package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/powerpanel/internal/themesync"
)

// emit sends msg as the matching signal. Messages without a signal are skipped.
func (s *Server) emit(msg themesync.Message) error {
	name, ok := SignalFor(msg)
	if !ok {
		return nil
	}

	s.mu.RLock()
	e := s.emitter
	s.mu.RUnlock()
	if e == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	payload, err := themesync.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := e.Emit(ObjectPath, Interface+"."+name, string(payload)); err != nil {
		return fmt.Errorf("failed to emit %s signal: %w", name, err)
	}

	s.logger.Debug("emitted signal", "signal", name)
	return nil
}

// Connection returns the underlying D-Bus connection.
func (s *Server) Connection() *dbus.Conn {
	return s.conn
}

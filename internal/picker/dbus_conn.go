package picker

import (
	"github.com/godbus/dbus/v5"
)

// Conn abstracts the godbus session connection for testability.
type Conn interface {
	// Object returns a BusObject for the given destination and path
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	// AddMatchSignal subscribes to signals matching the options
	AddMatchSignal(options ...dbus.MatchOption) error
	// RemoveMatchSignal drops a subscription added with AddMatchSignal
	RemoveMatchSignal(options ...dbus.MatchOption) error
	// Signal registers a channel receiving matched signals
	Signal(ch chan<- *dbus.Signal)
	// RemoveSignal unregisters a channel passed to Signal
	RemoveSignal(ch chan<- *dbus.Signal)
	// Names returns the connection's bus names; the first is the unique name
	Names() []string
	// Close closes the connection
	Close() error
}

// sessionConn wraps *dbus.Conn to implement Conn
type sessionConn struct {
	conn *dbus.Conn
}

func (c *sessionConn) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	return c.conn.Object(dest, path)
}

func (c *sessionConn) AddMatchSignal(options ...dbus.MatchOption) error {
	return c.conn.AddMatchSignal(options...)
}

func (c *sessionConn) RemoveMatchSignal(options ...dbus.MatchOption) error {
	return c.conn.RemoveMatchSignal(options...)
}

func (c *sessionConn) Signal(ch chan<- *dbus.Signal) {
	c.conn.Signal(ch)
}

func (c *sessionConn) RemoveSignal(ch chan<- *dbus.Signal) {
	c.conn.RemoveSignal(ch)
}

func (c *sessionConn) Names() []string {
	return c.conn.Names()
}

func (c *sessionConn) Close() error {
	return c.conn.Close()
}

// ConnectSessionBus connects to the session DBus and returns a Conn
func ConnectSessionBus() (Conn, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &sessionConn{conn: conn}, nil
}

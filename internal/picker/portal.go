package picker

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/varenne/gocryptfs-webui/internal/log"
)

const (
	portalService    = "org.freedesktop.portal.Desktop"
	portalPath       = "/org/freedesktop/portal/desktop"
	fileChooserIface = "org.freedesktop.portal.FileChooser"
	requestIface     = "org.freedesktop.portal.Request"
	requestPathBase  = "/org/freedesktop/portal/desktop/request"
)

// PortalPicker drives the xdg-desktop-portal file chooser. The OpenFile
// call returns a request handle; the chosen directory arrives later as a
// Response signal on that handle.
type PortalPicker struct {
	conn      Conn
	connectFn func() (Conn, error) // for reconnection
}

// PortalOption is a functional option for PortalPicker
type PortalOption func(*PortalPicker)

// WithConnection sets a custom DBus connection (for testing)
func WithConnection(conn Conn) PortalOption {
	return func(p *PortalPicker) {
		p.conn = conn
		p.connectFn = nil // disable reconnection when using custom connection
	}
}

// NewPortalPicker connects to the session bus and returns a portal-backed
// Picker.
func NewPortalPicker(opts ...PortalOption) (*PortalPicker, error) {
	p := &PortalPicker{
		connectFn: ConnectSessionBus,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Connect if no custom connection provided
	if p.conn == nil {
		conn, err := p.connectFn()
		if err != nil {
			return nil, fmt.Errorf("connect to session bus: %w", err)
		}
		p.conn = conn
	}

	return p, nil
}

// Close closes the DBus connection
func (p *PortalPicker) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Pick opens the portal's directory chooser and blocks until the operator
// answers it or ctx expires.
func (p *PortalPicker) Pick(ctx context.Context) (string, error) {
	token := requestToken()
	expected := p.expectedRequestPath(token)

	// Subscribe before calling so the response cannot slip past us.
	expectedMatch := responseMatch(expected)
	if err := p.conn.AddMatchSignal(expectedMatch...); err != nil {
		return "", fmt.Errorf("subscribe to portal response: %w", err)
	}
	defer p.conn.RemoveMatchSignal(expectedMatch...)

	signals := make(chan *dbus.Signal, 8)
	p.conn.Signal(signals)
	defer p.conn.RemoveSignal(signals)

	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
		"directory":    dbus.MakeVariant(true),
	}

	log.Debug("opening portal folder dialog", "token", token)

	obj := p.conn.Object(portalService, dbus.ObjectPath(portalPath))
	call := obj.CallWithContext(ctx, fileChooserIface+".OpenFile", 0, "", "Select Folder", options)
	if call.Err != nil {
		return "", fmt.Errorf("open file chooser: %w", call.Err)
	}

	var handle dbus.ObjectPath
	if err := call.Store(&handle); err != nil {
		return "", fmt.Errorf("store request handle: %w", err)
	}

	// Portals older than the predictable-handle scheme hand back their own
	// path; listen on that one too.
	if handle != expected {
		handleMatch := responseMatch(handle)
		if err := p.conn.AddMatchSignal(handleMatch...); err == nil {
			defer p.conn.RemoveMatchSignal(handleMatch...)
		}
	}

	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return "", fmt.Errorf("session bus closed")
			}
			if sig == nil || (sig.Path != expected && sig.Path != handle) {
				continue
			}
			return parseResponse(sig)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// parseResponse unpacks a Request.Response signal: a response code and a
// results dict whose "uris" entry lists the chosen targets as file:// URIs.
func parseResponse(sig *dbus.Signal) (string, error) {
	if len(sig.Body) < 2 {
		return "", fmt.Errorf("malformed portal response: %d body elements", len(sig.Body))
	}

	code, ok := sig.Body[0].(uint32)
	if !ok {
		return "", fmt.Errorf("malformed portal response code: %T", sig.Body[0])
	}
	if code != 0 {
		return "", ErrCancelled
	}

	results, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return "", fmt.Errorf("malformed portal results: %T", sig.Body[1])
	}

	uris, ok := results["uris"].Value().([]string)
	if !ok || len(uris) == 0 {
		return "", ErrCancelled
	}

	return pathFromURI(uris[0])
}

func pathFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", fmt.Errorf("unexpected portal uri %q", uri)
	}

	if !filepath.IsAbs(u.Path) {
		return "", errNotAbsolute
	}

	return u.Path, nil
}

// expectedRequestPath derives the request object path the portal will use
// for our token: the base path, the sanitized unique bus name, the token.
func (p *PortalPicker) expectedRequestPath(token string) dbus.ObjectPath {
	names := p.conn.Names()
	if len(names) == 0 {
		return ""
	}

	sender := strings.TrimPrefix(names[0], ":")
	sender = strings.ReplaceAll(sender, ".", "_")

	return dbus.ObjectPath(requestPathBase + "/" + sender + "/" + token)
}

func requestToken() string {
	return fmt.Sprintf("gocryptfswebui%d", time.Now().UnixNano())
}

func responseMatch(path dbus.ObjectPath) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(requestIface),
		dbus.WithMatchMember("Response"),
	}
}

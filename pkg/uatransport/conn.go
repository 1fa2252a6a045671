package uatransport

import (
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/pion/logging"
)

// Endpoint describes a parsed opc.tcp:// endpoint URL.
type Endpoint struct {
	// Network is "tcp" or "unix".
	Network string
	// Address is the net.Dial address: "host:port" for tcp, the
	// socket path for unix.
	Address string
	// Path is the URL path/query component (tcp only), used by
	// GetEndpoints URL rewriting (spec §4.4 step 6).
	Path string
	// Raw is the original endpoint URL string.
	Raw string
}

// ParseEndpointURL parses "opc.tcp://host:port[/path]" or
// "opc.tcp://unix:/absolute/socket/path" into an Endpoint.
func ParseEndpointURL(endpointURL string) (Endpoint, error) {
	if !strings.HasPrefix(endpointURL, "opc.tcp://") {
		return Endpoint{}, uaerr.Wrap(uaerr.Usage, ErrInvalidEndpointURL, "endpoint %q must start with opc.tcp://", endpointURL)
	}
	rest := strings.TrimPrefix(endpointURL, "opc.tcp://")

	if strings.HasPrefix(rest, "unix:") {
		path := strings.TrimPrefix(rest, "unix:")
		if path == "" {
			return Endpoint{}, uaerr.Wrap(uaerr.Usage, ErrInvalidEndpointURL, "unix endpoint %q missing socket path", endpointURL)
		}
		return Endpoint{Network: "unix", Address: path, Raw: endpointURL}, nil
	}

	u, err := url.Parse("opc.tcp://" + rest)
	if err != nil {
		return Endpoint{}, uaerr.Wrap(uaerr.Usage, err, "invalid endpoint URL %q", endpointURL)
	}
	if u.Host == "" {
		return Endpoint{}, uaerr.Wrap(uaerr.Usage, ErrInvalidEndpointURL, "endpoint %q missing host", endpointURL)
	}
	return Endpoint{Network: "tcp", Address: u.Host, Path: u.RequestURI(), Raw: endpointURL}, nil
}

// Conn is a single-connection, single-owner byte transport: exactly
// one task is expected to own it (spec §5 scheduling model). It wraps
// a net.Conn and exposes the four operations named in spec §4.2.
type Conn struct {
	endpoint Endpoint
	conn     net.Conn
	log      logging.LeveledLogger

	mu        sync.Mutex
	connected bool
}

// Config configures a new Conn.
type Config struct {
	// DialTimeout is not read by NewConn or Connect; Connect takes its
	// dial timeout as an argument.
	DialTimeout time.Duration
	// LoggerFactory creates the Conn's logger; nil disables logging.
	LoggerFactory logging.LoggerFactory
}

// NewConn parses endpointURL and returns an unconnected Conn.
func NewConn(endpointURL string, cfg Config) (*Conn, error) {
	ep, err := ParseEndpointURL(endpointURL)
	if err != nil {
		return nil, err
	}
	c := &Conn{endpoint: ep}
	if cfg.LoggerFactory != nil {
		c.log = cfg.LoggerFactory.NewLogger("uatransport")
	}
	return c, nil
}

// Endpoint returns the parsed endpoint this Conn dials.
func (c *Conn) Endpoint() Endpoint { return c.endpoint }

// wrapNetConn adopts an already-established net.Conn (used by tests
// against net.Pipe, where there is nothing to dial).
func wrapNetConn(nc net.Conn) *Conn {
	return &Conn{conn: nc, connected: true}
}

// Connect dials the endpoint's network and address.
func (c *Conn) Connect(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return ErrAlreadyConnected
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.Dial(c.endpoint.Network, c.endpoint.Address)
	if err != nil {
		return uaerr.Wrap(uaerr.Transport, err, "dial %s %s", c.endpoint.Network, c.endpoint.Address)
	}
	c.conn = conn
	c.connected = true
	if c.log != nil {
		c.log.Infof("connected to %s (%s)", c.endpoint.Raw, c.endpoint.Network)
	}
	return nil
}

// Send writes b in full to the connection.
func (c *Conn) Send(b []byte) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	n, err := conn.Write(b)
	if err != nil {
		return uaerr.Wrap(uaerr.Transport, err, "send")
	}
	if n != len(b) {
		return uaerr.TransportErr("short write: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

// ReceiveHeader reads exactly HeaderSize bytes and decodes them.
func (c *Conn) ReceiveHeader() (ChunkHeader, error) {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return ChunkHeader{}, ErrNotConnected
	}

	buf := make([]byte, HeaderSize)
	if err := readFull(conn, buf); err != nil {
		return ChunkHeader{}, err
	}
	return DecodeChunkHeader(buf)
}

// Receive reads exactly n bytes (the chunk body following the
// header).
func (c *Conn) Receive(n int) ([]byte, error) {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}
	buf := make([]byte, n)
	if err := readFull(conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readFull(conn net.Conn, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return uaerr.Wrap(uaerr.Transport, err, "read (got %d of %d bytes)", total, len(buf))
		}
	}
	return nil
}

// Close closes the underlying connection. Idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	c.connected = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	if c.log != nil {
		c.log.Info("connection closed")
	}
	return err
}

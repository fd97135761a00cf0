package remote

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hypebeast/go-osc/osc"
)

// Client sends parameter values to a remote-control domain. With a nil
// secret it is a thin wrapper over a go-osc UDP client; with the 32-byte
// pre-shared key it seals every message the way the server expects.
type Client struct {
	addr      string
	secret    *[32]byte
	oscClient *osc.Client
}

// NewClient creates a client for the server at addr ("host:port"). Pass the
// server's pre-shared key, or nil for a plain server.
func NewClient(addr string, secret []byte) (*Client, error) {
	c := &Client{addr: addr}
	if len(secret) > 0 {
		if len(secret) != 32 {
			return nil, ErrInvalidSecret
		}
		c.secret = new([32]byte)
		copy(c.secret[:], secret)
		return c, nil
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid server port %q: %w", portStr, err)
	}
	c.oscClient = osc.NewClient(host, port)
	return c, nil
}

// Send delivers one parameter value to the given OSC address.
func (c *Client) Send(address string, value float64) error {
	msg := osc.NewMessage(address)
	msg.Append(float32(value))
	if c.secret == nil {
		return c.oscClient.Send(msg)
	}
	data, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode osc message: %w", err)
	}
	sealed, err := seal(data, c.secret)
	if err != nil {
		return err
	}
	conn, err := net.Dial("udp", c.addr)
	if err != nil {
		return fmt.Errorf("failed to reach osc server: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Write(sealed); err != nil {
		return fmt.Errorf("failed to send osc packet: %w", err)
	}
	return nil
}

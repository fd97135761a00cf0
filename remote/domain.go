package remote

import (
	"context"
	"net"
	"sync"

	"github.com/hypebeast/go-osc/osc"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/coda/domain"
)

// Settable is the control surface exposed over OSC. The param package's
// float Parameter satisfies it.
type Settable interface {
	Address() string
	Get() float64
	Set(v float64)
}

// Options is the construction-time configuration of a remote-control
// domain.
type Options struct {
	// ListenAddr is the UDP address the OSC server binds to. Use port 0
	// to pick a free port; LocalAddr reports the bound address once the
	// domain is running.
	ListenAddr string

	// Secret is an optional 32-byte pre-shared key. When set, only
	// sealed packets are accepted.
	Secret []byte
}

// NewOptions returns the default remote-control configuration, listening on
// localhost.
func NewOptions() *Options {
	return &Options{ListenAddr: "127.0.0.1:9010"}
}

// maxPacketSize bounds a UDP datagram.
const maxPacketSize = 65507

// Domain serves parameter changes over OSC on its own goroutine. The UDP
// socket is bound during the asynchronous setup phase, so a failed bind is
// observable through AsyncInitResult rather than Start's return value.
type Domain struct {
	domain.ThreadDomain

	opts   Options
	secret *[32]byte

	mu         sync.Mutex
	controls   map[string]Settable
	dispatcher *osc.StandardDispatcher
	conn       net.PacketConn
	stop       chan struct{}
}

// New creates a remote-control domain from opts (nil means defaults).
func New(opts *Options) (*Domain, error) {
	if opts == nil {
		opts = NewOptions()
	}
	var secret *[32]byte
	if len(opts.Secret) > 0 {
		if len(opts.Secret) != 32 {
			return nil, ErrInvalidSecret
		}
		secret = new([32]byte)
		copy(secret[:], opts.Secret)
	}
	d := &Domain{
		opts:     *opts,
		secret:   secret,
		controls: make(map[string]Settable),
	}
	d.Bind(d)
	d.SetCapabilities(domain.CapOSC | domain.CapAsyncThread)
	logrus.WithFields(logrus.Fields{
		"function":  "remote.New",
		"listen":    opts.ListenAddr,
		"encrypted": secret != nil,
	}).Info("remote control domain created")
	return d, nil
}

// Expose makes controls settable over OSC at their own addresses.
func (d *Domain) Expose(controls ...Settable) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, control := range controls {
		address := control.Address()
		if _, exists := d.controls[address]; exists {
			return ErrDuplicateAddress
		}
		d.controls[address] = control
		if d.dispatcher != nil {
			if err := d.addHandler(address, control); err != nil {
				return err
			}
		}
	}
	return nil
}

// addHandler wires one control into the dispatcher. Caller holds d.mu.
func (d *Domain) addHandler(address string, control Settable) error {
	return d.dispatcher.AddMsgHandler(address, func(msg *osc.Message) {
		value, ok := numericArgument(msg)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"function": "remote.Domain",
				"address":  address,
			}).Warn("osc message without numeric argument")
			return
		}
		control.Set(value)
	})
}

// numericArgument extracts the first numeric OSC argument as a float64.
func numericArgument(msg *osc.Message) (float64, bool) {
	for _, arg := range msg.Arguments {
		switch v := arg.(type) {
		case float32:
			return float64(v), true
		case float64:
			return v, true
		case int32:
			return float64(v), true
		case int64:
			return float64(v), true
		}
	}
	return 0, false
}

// Exposed returns the addresses currently reachable over OSC.
func (d *Domain) Exposed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	addresses := make([]string, 0, len(d.controls))
	for address := range d.controls {
		addresses = append(addresses, address)
	}
	return addresses
}

// Init builds the OSC dispatcher over the exposed controls. Idempotent.
func (d *Domain) Init(parent domain.Domain) bool {
	if d.Initialized() {
		return true
	}
	ok := d.InitializeSubdomains(true)
	d.mu.Lock()
	d.dispatcher = osc.NewStandardDispatcher()
	for address, control := range d.controls {
		if err := d.addHandler(address, control); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Domain.Init",
				"address":  address,
				"error":    err.Error(),
			}).Error("failed to register osc handler")
			ok = false
		}
	}
	d.mu.Unlock()
	d.CallInitializeCallbacks()
	if !d.InitializeSubdomains(false) {
		ok = false
	}
	d.SetInitialized(ok)
	return ok
}

// Cleanup stops the server if it is running and drops the dispatcher.
func (d *Domain) Cleanup(parent domain.Domain) bool {
	d.Stop()
	ok := d.ThreadDomain.Cleanup(parent)
	d.mu.Lock()
	d.dispatcher = nil
	d.mu.Unlock()
	return ok
}

// LocalAddr returns the bound UDP address, or nil while the server is not
// running.
func (d *Domain) LocalAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	return d.conn.LocalAddr()
}

// Start launches the server goroutine. The socket bind happens
// asynchronously; wait on AsyncInitResult to learn whether it succeeded.
func (d *Domain) Start() bool {
	if !d.Initialized() {
		logrus.WithFields(logrus.Fields{
			"function": "Domain.Start",
		}).Error("remote control start refused: domain not initialized")
		return false
	}
	return d.StartThread(d.setup, d.run)
}

func (d *Domain) setup() bool {
	conn, err := net.ListenPacket("udp", d.opts.ListenAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Domain.setup",
			"listen":   d.opts.ListenAddr,
			"error":    err.Error(),
		}).Error("failed to bind osc socket")
		return false
	}
	d.mu.Lock()
	d.conn = conn
	d.stop = make(chan struct{})
	d.mu.Unlock()
	d.CallStartCallbacks()
	logrus.WithFields(logrus.Fields{
		"function": "Domain.setup",
		"addr":     conn.LocalAddr().String(),
	}).Info("osc server listening")
	return true
}

func (d *Domain) run() bool {
	d.mu.Lock()
	conn := d.conn
	stop := d.stop
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	g := new(errgroup.Group)
	g.Go(func() error {
		defer cancel()
		return d.serve(conn)
	})
	g.Go(func() error {
		select {
		case <-stop:
			conn.Close()
		case <-ctx.Done():
		}
		return nil
	})
	err := g.Wait()

	d.mu.Lock()
	d.conn = nil
	d.mu.Unlock()

	select {
	case <-stop:
		return true
	default:
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Domain.run",
				"error":    err.Error(),
			}).Error("osc server terminated")
			return false
		}
		return true
	}
}

// serve runs until the socket closes. Plain mode hands the socket to the
// go-osc server; encrypted mode reads datagrams, opens them against the
// pre-shared key, and dispatches the recovered OSC packet.
func (d *Domain) serve(conn net.PacketConn) error {
	if d.secret == nil {
		server := &osc.Server{Dispatcher: d.dispatcher}
		return server.Serve(conn)
	}
	buf := make([]byte, maxPacketSize)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			return err
		}
		plain, err := open(buf[:n], d.secret)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Domain.serve",
				"error":    err.Error(),
			}).Warn("dropping undecryptable osc packet")
			continue
		}
		packet, err := osc.ParsePacket(string(plain))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Domain.serve",
				"error":    err.Error(),
			}).Warn("dropping malformed osc packet")
			continue
		}
		d.dispatcher.Dispatch(packet)
	}
}

// Stop asks the server goroutine to exit and joins it. A no-op returning
// true when nothing is running.
func (d *Domain) Stop() bool {
	if !d.ThreadRunning() {
		return true
	}
	d.CallStopCallbacks()
	d.mu.Lock()
	if d.stop != nil {
		select {
		case <-d.stop:
		default:
			close(d.stop)
		}
	}
	d.mu.Unlock()
	return d.JoinThread()
}

package server

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/RuyaSavascisi/Flux-Networks/internal/protocol"
)

// Wire framing for the reference transport: a four-byte big-endian length
// covering a two-byte message index plus the body. The protocol core treats
// transport as external; this adapter is the minimal byte-stream binding.

const frameHeadLen = 4 + 2

var (
	ErrFrameTooLarge = errors.New("server: frame too large")
	ErrShortFrame    = errors.New("server: short frame")
)

// Limits constrains frame decode memory use.
type Limits struct {
	MaxFrameBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxFrameBytes: 1 << 20}
}

// ReadMessage reads one (index, body) frame.
func ReadMessage(r io.Reader, limits Limits) (uint16, []byte, error) {
	var head [frameHeadLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, nil, err
	}
	size := binary.BigEndian.Uint32(head[0:4])
	if size < 2 {
		return 0, nil, ErrShortFrame
	}
	if size > limits.MaxFrameBytes {
		return 0, nil, ErrFrameTooLarge
	}
	index := binary.BigEndian.Uint16(head[4:6])
	body := make([]byte, size-2)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return index, body, nil
}

// WriteMessage writes one (index, body) frame.
func WriteMessage(w io.Writer, index uint16, body []byte, limits Limits) error {
	size := uint32(len(body)) + 2
	if size > limits.MaxFrameBytes {
		return ErrFrameTooLarge
	}
	head := make([]byte, frameHeadLen)
	binary.BigEndian.PutUint32(head[0:4], size)
	binary.BigEndian.PutUint16(head[4:6], index)
	if _, err := w.Write(head); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// connSink adapts one net.Conn into a Sink. Sends are serialized; Kick
// closes the connection.
type connSink struct {
	mu     sync.Mutex
	conn   net.Conn
	limits Limits
}

func (c *connSink) Send(index uint16, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteMessage(c.conn, index, payload, c.limits)
}

func (c *connSink) Kick(reason string) {
	_ = c.conn.Close()
}

// helloIndex frames the one session-start message, outside both catalogues.
const helloIndex uint16 = 0xffff

// readHello reads the session-start frame a client sends first: player id
// plus display name. World/session discovery normally provides this binding;
// the reference transport carries it in-band.
func readHello(r io.Reader, limits Limits) (uuid.UUID, string, error) {
	index, body, err := ReadMessage(r, limits)
	if err != nil {
		return uuid.Nil, "", err
	}
	if index != helloIndex {
		return uuid.Nil, "", protocol.ErrUnknownMessage
	}
	buf := protocol.NewBuffer(body)
	id, err := buf.UUID()
	if err != nil {
		return uuid.Nil, "", err
	}
	name, err := buf.String(protocol.MaxNameBytes)
	if err != nil {
		return uuid.Nil, "", err
	}
	if err := buf.ExpectEOF(); err != nil {
		return uuid.Nil, "", err
	}
	return id, name, nil
}

// ServeConn runs one connection to completion: hello, attach, read loop,
// detach. Attach and detach run on the executor like every other mutation
// of shared state.
func (d *Dispatcher) ServeConn(conn net.Conn, limits Limits) {
	defer conn.Close()

	playerID, name, err := readHello(conn, limits)
	if err != nil {
		d.log.Info().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("session hello failed")
		return
	}

	sink := &connSink{conn: conn, limits: limits}
	attached := make(chan *Session, 1)
	admitted := d.exec.Submit(func() {
		sess := d.sessions.Attach(playerID, name, sink)
		d.sendCapability(sess)
		attached <- sess
	})
	if !admitted {
		// Executor already shut down; there is no session to serve.
		return
	}
	sess := <-attached
	d.log.Info().Str("player", name).Str("remote", conn.RemoteAddr().String()).Msg("session attached")

	defer d.exec.Submit(func() {
		d.sessions.Detach(sess)
		d.log.Info().Str("player", name).Msg("session detached")
	})

	for {
		index, body, err := ReadMessage(conn, limits)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				d.log.Debug().Str("player", name).Err(err).Msg("session read failed")
			}
			return
		}
		d.HandleMessage(sess, index, body)
	}
}

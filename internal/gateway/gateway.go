// Package gateway implements the reference UDP uplink listener: one
// datagram in, one tagotip frame out, matching spec.md's framing
// Non-goal ("no length prefix or checksum layer below the envelope").
package gateway

import (
	"encoding/hex"
	"errors"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/tagotip-io/tagotip-go"
	"github.com/tagotip-io/tagotip-go/internal/gatewaykeys"
	"github.com/tagotip-io/tagotip-go/internal/replay"
)

var (
	errUnknownDevice = errors.New("unknown_device")
	errReplayed      = errors.New("replayed_counter")
)

// Gateway listens for uplink datagrams, disambiguates plaintext frames
// from TagoTiP/S envelopes, authenticates and decodes them, and answers
// with an ACK. It never blocks the listener loop on a slow peer: each
// datagram is handled inline since AEAD open + parse is microseconds,
// matching the reference SDK's synchronous, allocation-light core.
type Gateway struct {
	conn   *net.UDPConn
	keys   *gatewaykeys.Store
	replay replay.Policy
	events chan<- Event
}

// Event is a read-only projection of one accepted/rejected uplink,
// published to the monitor bridge. It is never a control channel back
// into the protocol.
type Event struct {
	RemoteAddr string `json:"remote_addr"`
	Serial     string `json:"serial"`
	Method     string `json:"method"`
	Envelope   bool   `json:"envelope"`
	Accepted   bool   `json:"accepted"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

// New binds a UDP listener on addr. events, if non-nil, receives one
// Event per processed datagram for the monitor bridge; sends are
// non-blocking so a stalled monitor never backs up the listener.
func New(addr string, keys *gatewaykeys.Store, replayPolicy replay.Policy, events chan<- Event) (*Gateway, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &Gateway{conn: conn, keys: keys, replay: replayPolicy, events: events}, nil
}

// Close releases the UDP socket.
func (g *Gateway) Close() error {
	return g.conn.Close()
}

// Serve reads datagrams until the listener is closed.
func (g *Gateway) Serve() {
	buf := make([]byte, tagotip.MaxFrameSize)
	for {
		n, remote, err := g.conn.ReadFromUDP(buf)
		if err != nil {
			if isClosed(err) {
				return
			}
			log.Warn().Err(err).Msg("gateway: read error")
			continue
		}
		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		g.handle(datagram, remote)
	}
}

func (g *Gateway) handle(datagram []byte, remote *net.UDPAddr) {
	// IsEnvelope only sets apart the 0x41 ('A') of a plaintext ACK. Plaintext
	// uplinks start with 'P' (PUSH, PULL, PING); 0x50 decodes to envelope
	// version 2, which no valid envelope carries, so it is routed as plaintext.
	if tagotip.IsEnvelope(datagram) && datagram[0] != 'P' {
		g.handleEnvelope(datagram, remote)
		return
	}
	g.handlePlaintext(datagram, remote)
}

func (g *Gateway) handlePlaintext(datagram []byte, remote *net.UDPAddr) {
	frame, err := tagotip.ParseUplink(string(datagram))
	if err != nil {
		g.reject(remote, "", false, err)
		return
	}

	// Plaintext frames carry no counter, so the replay policy does not apply.
	if _, ok := g.keys.LookupPlaintext(frame.Auth, frame.Serial); !ok {
		g.reject(remote, frame.Serial, false, errUnknownDevice)
		return
	}

	g.accept(remote, frame.Serial, methodName(frame.Method), false)
	ack, err := tagotip.BuildAck(&tagotip.AckFrame{Seq: frame.Seq, Status: tagotip.AckStatusOk})
	if err != nil {
		log.Error().Err(err).Msg("gateway: build ack failed")
		return
	}
	g.reply(remote, []byte(ack))
}

func (g *Gateway) handleEnvelope(datagram []byte, remote *net.UDPAddr) {
	header, err := tagotip.ParseEnvelopeHeader(datagram)
	if err != nil {
		g.reject(remote, "", true, err)
		return
	}

	entry, ok := g.keys.Lookup(header.AuthHash, header.DeviceHash)
	if !ok {
		g.reject(remote, "", true, errUnknownDevice)
		return
	}

	deviceHashHex := hex.EncodeToString(header.DeviceHash[:])
	if !g.replay.Accept(deviceHashHex, header.Counter) {
		g.reject(remote, entry.Serial, true, errReplayed)
		return
	}

	_, method, plaintext, err := tagotip.OpenEnvelope(datagram, entry.Key)
	if err != nil {
		g.reject(remote, entry.Serial, true, err)
		return
	}

	frameMethod := envelopeMethodToMethod(method)
	if _, err := tagotip.ParseHeadless(frameMethod, string(plaintext)); err != nil {
		g.reject(remote, entry.Serial, true, err)
		return
	}

	g.accept(remote, entry.Serial, methodName(frameMethod), true)

	ackInner, err := tagotip.BuildAckInner(&tagotip.AckFrame{Status: tagotip.AckStatusOk})
	if err != nil {
		log.Error().Err(err).Msg("gateway: build ack failed")
		return
	}
	sealed, err := tagotip.SealUplink(tagotip.EnvelopeMethodAck, []byte(ackInner), header.Counter, header.AuthHash, header.DeviceHash, entry.Key, entry.Suite)
	if err != nil {
		log.Error().Err(err).Msg("gateway: seal ack failed")
		return
	}
	g.reply(remote, sealed)
}

func (g *Gateway) reply(remote *net.UDPAddr, payload []byte) {
	if _, err := g.conn.WriteToUDP(payload, remote); err != nil {
		log.Warn().Err(err).Str("remote_addr", remote.String()).Msg("gateway: reply failed")
	}
}

func (g *Gateway) accept(remote *net.UDPAddr, serial, method string, envelope bool) {
	log.Info().
		Str("remote_addr", remote.String()).
		Str("serial", serial).
		Str("method", method).
		Bool("envelope", envelope).
		Msg("gateway: accepted")
	g.publish(Event{RemoteAddr: remote.String(), Serial: serial, Method: method, Envelope: envelope, Accepted: true})
}

func (g *Gateway) reject(remote *net.UDPAddr, serial string, envelope bool, err error) {
	kind := errorKind(err)
	log.Warn().
		Str("remote_addr", remote.String()).
		Str("serial", serial).
		Bool("envelope", envelope).
		Str("error_kind", kind).
		Msg("gateway: rejected")
	g.publish(Event{RemoteAddr: remote.String(), Serial: serial, Envelope: envelope, Accepted: false, ErrorKind: kind})
}

func (g *Gateway) publish(evt Event) {
	if g.events == nil {
		return
	}
	select {
	case g.events <- evt:
	default:
	}
}

func methodName(m tagotip.Method) string {
	switch m {
	case tagotip.MethodPush:
		return "push"
	case tagotip.MethodPull:
		return "pull"
	case tagotip.MethodPing:
		return "ping"
	default:
		return "unknown"
	}
}

func envelopeMethodToMethod(m tagotip.EnvelopeMethod) tagotip.Method {
	switch m {
	case tagotip.EnvelopeMethodPush:
		return tagotip.MethodPush
	case tagotip.EnvelopeMethodPull:
		return tagotip.MethodPull
	default:
		return tagotip.MethodPing
	}
}

func errorKind(err error) string {
	switch e := err.(type) {
	case *tagotip.ParseError:
		return string(e.Kind)
	case *tagotip.SecureError:
		return string(e.Kind)
	default:
		return err.Error()
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

package xnet

import (
	"context"
	"net"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/perlin-network/xnet/log"
)

// Interest selects the readiness conditions Ready and AsyncIO wait for.
type Interest uint8

const (
	// Readable waits for read-readiness.
	Readable Interest = 1 << iota
	// Writable waits for write-readiness.
	Writable
)

// Ready reports which readiness conditions a Ready call observed.
type Ready uint8

const (
	// ReadReady marks the stream as ready for reading.
	ReadReady Ready = 1 << iota
	// WriteReady marks the stream as ready for writing.
	WriteReady
)

// IsReadable reports whether read-readiness was observed.
func (r Ready) IsReadable() bool { return r&ReadReady != 0 }

// IsWritable reports whether write-readiness was observed.
func (r Ready) IsWritable() bool { return r&WriteReady != 0 }

// Stream is an active, connected byte stream over exactly one transport
// kind, TCP or UNIX-domain, fixed at construction. Stream satisfies
// net.Conn; the addresses it hands out have dynamic type Addr.
//
// Operations on a Stream are not internally serialized. Two concurrent reads
// (or writes) race; Split and IntoSplit are the sanctioned way to read and
// write concurrently.
type Stream struct {
	tcp  *net.TCPConn
	unix *net.UnixConn
}

var _ net.Conn = (*Stream)(nil)

// FromTCPConn wraps a native TCP connection.
func FromTCPConn(c *net.TCPConn) *Stream {
	return &Stream{tcp: c}
}

// FromUnixConn wraps a native UNIX-domain connection.
func FromUnixConn(c *net.UnixConn) *Stream {
	return &Stream{unix: c}
}

func wrapConn(conn net.Conn) (*Stream, error) {
	switch c := conn.(type) {
	case *net.TCPConn:
		return &Stream{tcp: c}, nil
	case *net.UnixConn:
		return &Stream{unix: c}, nil
	}
	conn.Close()
	return nil, errors.Errorf("unexpected connection type %T", conn)
}

// Dial resolves v into candidate addresses and connects to the first one the
// operating system accepts, under the same first-success policy as Listen.
// Dialing an unnamed UNIX address is a programming error and panics.
func Dial(ctx context.Context, v interface{}) (*Stream, error) {
	addrs, err := ResolveAddrs(v)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, addr := range addrs {
		s, err := dialAddr(ctx, addr)
		if err == nil {
			return s, nil
		}
		log.Debug().Stringer("addr", addr).Err(err).Msg("dial candidate failed")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrNoAddrs
	}
	return nil, lastErr
}

func dialAddr(ctx context.Context, addr Addr) (*Stream, error) {
	var d net.Dialer

	switch {
	case addr.tcp != nil:
		conn, err := d.DialContext(ctx, "tcp", addr.tcp.String())
		if err != nil {
			return nil, err
		}
		return &Stream{tcp: conn.(*net.TCPConn)}, nil
	case addr.unix != nil:
		if addr.IsUnnamed() {
			panic("xnet: cannot dial an unnamed unix address")
		}
		conn, err := d.DialContext(ctx, "unix", addr.unix.Name)
		if err != nil {
			return nil, err
		}
		return &Stream{unix: conn.(*net.UnixConn)}, nil
	}
	return nil, errors.New("cannot dial the zero Addr")
}

// IsTCP reports whether the stream is backed by a TCP socket.
func (s *Stream) IsTCP() bool { return s.tcp != nil }

// IsUnix reports whether the stream is backed by a UNIX-domain socket.
func (s *Stream) IsUnix() bool { return s.unix != nil }

// conn collapses the two transport kinds into the shared net interface so
// that each operation dispatches once instead of duplicating a match per
// method.
func (s *Stream) conn() net.Conn {
	switch {
	case s.tcp != nil:
		return s.tcp
	case s.unix != nil:
		return s.unix
	}
	panic("xnet: use of a zero Stream")
}

// Read reads up to len(p) bytes, blocking until some data is available.
// Partial reads are normal and must be handled by the caller.
func (s *Stream) Read(p []byte) (int, error) { return s.conn().Read(p) }

// Write writes bytes from p, blocking until all of p is written or an error
// occurs.
func (s *Stream) Write(p []byte) (int, error) { return s.conn().Write(p) }

// Close closes the stream, releasing the underlying descriptor.
func (s *Stream) Close() error { return s.conn().Close() }

// CloseRead shuts down the reading side of the connection.
func (s *Stream) CloseRead() error {
	switch {
	case s.tcp != nil:
		return s.tcp.CloseRead()
	case s.unix != nil:
		return s.unix.CloseRead()
	}
	panic("xnet: use of a zero Stream")
}

// CloseWrite shuts down the writing side of the connection; the peer
// observes end-of-file once buffered data drains.
func (s *Stream) CloseWrite() error {
	switch {
	case s.tcp != nil:
		return s.tcp.CloseWrite()
	case s.unix != nil:
		return s.unix.CloseWrite()
	}
	panic("xnet: use of a zero Stream")
}

// LocalAddr returns the local address. The dynamic type is Addr.
func (s *Stream) LocalAddr() net.Addr { return fromNetAddr(s.conn().LocalAddr()) }

// RemoteAddr returns the remote peer's address. The dynamic type is Addr.
func (s *Stream) RemoteAddr() net.Addr { return fromNetAddr(s.conn().RemoteAddr()) }

// PeerAddr returns the remote peer's address.
func (s *Stream) PeerAddr() Addr { return fromNetAddr(s.conn().RemoteAddr()) }

// SetDeadline sets both the read and write deadlines.
func (s *Stream) SetDeadline(t time.Time) error { return s.conn().SetDeadline(t) }

// SetReadDeadline sets the read deadline.
func (s *Stream) SetReadDeadline(t time.Time) error { return s.conn().SetReadDeadline(t) }

// SetWriteDeadline sets the write deadline.
func (s *Stream) SetWriteDeadline(t time.Time) error { return s.conn().SetWriteDeadline(t) }

// SyscallConn returns the raw descriptor for interop with external polling.
func (s *Stream) SyscallConn() (syscall.RawConn, error) {
	switch {
	case s.tcp != nil:
		return s.tcp.SyscallConn()
	case s.unix != nil:
		return s.unix.SyscallConn()
	}
	return nil, errors.New("use of a zero Stream")
}

// Readable suspends until the stream reports read-readiness. The wakeup may
// be spurious: a following TryRead can still report ErrWouldBlock.
// Cancelling ctx interrupts the wait with no effect on the stream.
func (s *Stream) Readable(ctx context.Context) error {
	rc, err := s.SyscallConn()
	if err != nil {
		return err
	}
	release, err := interruptAfter(ctx, s.SetReadDeadline)
	if err != nil {
		return err
	}
	defer release()
	return wrapCanceled(ctx, waitRead(rc))
}

// Writable suspends until the stream reports write-readiness, under the same
// contract as Readable.
func (s *Stream) Writable(ctx context.Context) error {
	rc, err := s.SyscallConn()
	if err != nil {
		return err
	}
	release, err := interruptAfter(ctx, s.SetWriteDeadline)
	if err != nil {
		return err
	}
	defer release()
	return wrapCanceled(ctx, waitWrite(rc))
}

// Ready suspends until the stream reports at least one of the readiness
// conditions selected by interest, and returns the conditions observed.
func (s *Stream) Ready(ctx context.Context, interest Interest) (Ready, error) {
	switch interest {
	case 0:
		return 0, errors.New("ready requires at least one interest")
	case Readable:
		if err := s.Readable(ctx); err != nil {
			return 0, err
		}
		return ReadReady, nil
	case Writable:
		if err := s.Writable(ctx); err != nil {
			return 0, err
		}
		return WriteReady, nil
	}

	// Both interests: race a waiter per direction and keep whatever fired
	// by the time the first one wakes.
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		ready Ready
		err   error
	}
	ch := make(chan result, 2)
	go func() {
		err := s.Readable(waitCtx)
		ch <- result{ReadReady, err}
	}()
	go func() {
		err := s.Writable(waitCtx)
		ch <- result{WriteReady, err}
	}()

	first := <-ch
	cancel()
	second := <-ch

	var ready Ready
	if first.err == nil {
		ready |= first.ready
	}
	if second.err == nil {
		ready |= second.ready
	}
	if ready != 0 {
		return ready, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, first.err
}

// TryRead performs exactly one non-blocking read. It returns ErrWouldBlock
// when no data is available and io.EOF once the peer has shut down its
// writing side.
func (s *Stream) TryRead(p []byte) (int, error) {
	rc, err := s.SyscallConn()
	if err != nil {
		return 0, err
	}
	return tryRead(rc, p)
}

// TryReadVectored is TryRead scattering into multiple buffers.
func (s *Stream) TryReadVectored(bufs [][]byte) (int, error) {
	rc, err := s.SyscallConn()
	if err != nil {
		return 0, err
	}
	return tryReadv(rc, bufs)
}

// TryWrite performs exactly one non-blocking write and returns ErrWouldBlock
// when the socket buffer has no room.
func (s *Stream) TryWrite(p []byte) (int, error) {
	rc, err := s.SyscallConn()
	if err != nil {
		return 0, err
	}
	return tryWrite(rc, p)
}

// TryWriteVectored is TryWrite gathering from multiple buffers.
func (s *Stream) TryWriteVectored(bufs [][]byte) (int, error) {
	rc, err := s.SyscallConn()
	if err != nil {
		return 0, err
	}
	return tryWritev(rc, bufs)
}

// TryIO runs f once while holding the descriptor in the direction named by
// interest. f is expected to perform a single non-blocking operation and
// return ErrWouldBlock if the descriptor turned out not to be ready; the
// error passes through unchanged.
func (s *Stream) TryIO(interest Interest, f func() error) error {
	rc, err := s.SyscallConn()
	if err != nil {
		return err
	}
	var ferr error
	g := func(uintptr) bool {
		ferr = f()
		return true
	}
	if interest&Readable != 0 {
		err = rc.Read(g)
	} else {
		err = rc.Write(g)
	}
	if err != nil {
		return err
	}
	return ferr
}

// AsyncIO waits for the requested readiness and then runs f, retrying the
// readiness wait whenever f reports ErrWouldBlock. This is the only place
// the package retries on a transient condition.
func (s *Stream) AsyncIO(ctx context.Context, interest Interest, f func() error) error {
	for {
		if _, err := s.Ready(ctx, interest); err != nil {
			return err
		}
		err := f()
		if errors.Is(err, ErrWouldBlock) {
			continue
		}
		return err
	}
}

// Split divides the stream into a borrowed read half and write half. The
// halves alias the stream: using the stream directly while a half is in use
// races exactly as two concurrent reads on the stream would, so direct use
// should stop until both halves are discarded.
func (s *Stream) Split() (*ReadHalf, *WriteHalf) {
	return &ReadHalf{s: s}, &WriteHalf{s: s}
}

// IntoSplit consumes the stream, dividing it into independently owned read
// and write halves. The underlying socket closes only once both halves have
// been released; the stream itself must not be used afterwards.
func (s *Stream) IntoSplit() (*OwnedReadHalf, *OwnedWriteHalf) {
	o := &owned{s: s}
	o.refs.Store(2)
	return &OwnedReadHalf{s: s, o: o}, &OwnedWriteHalf{s: s, o: o}
}

// TakeError returns and clears the deferred error recorded on the socket.
func (s *Stream) TakeError() error {
	rc, err := s.SyscallConn()
	if err != nil {
		return err
	}
	return takeError(rc)
}

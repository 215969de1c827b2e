package xnet

import (
	"context"
	"sync/atomic"
)

// owned tracks the shared close responsibility of the two halves produced by
// IntoSplit. The descriptor closes when the last share is released.
type owned struct {
	s    *Stream
	refs atomic.Int32
}

func (o *owned) release() error {
	if o.refs.Add(-1) == 0 {
		return o.s.Close()
	}
	return nil
}

// OwnedReadHalf is the owned read half of a stream produced by IntoSplit. It
// holds one of the two shares of the underlying socket; the descriptor
// closes once both halves have been released.
type OwnedReadHalf struct {
	s      *Stream
	o      *owned
	closed bool
}

// IsTCP reports whether the half belongs to a TCP-backed stream.
func (h *OwnedReadHalf) IsTCP() bool { return h.s.IsTCP() }

// IsUnix reports whether the half belongs to a UNIX-domain-backed stream.
func (h *OwnedReadHalf) IsUnix() bool { return h.s.IsUnix() }

// LocalAddr returns the stream's local address.
func (h *OwnedReadHalf) LocalAddr() Addr { return fromNetAddr(h.s.conn().LocalAddr()) }

// PeerAddr returns the stream's remote address.
func (h *OwnedReadHalf) PeerAddr() Addr { return fromNetAddr(h.s.conn().RemoteAddr()) }

// Read reads from the stream.
func (h *OwnedReadHalf) Read(p []byte) (int, error) { return h.s.Read(p) }

// TryRead performs exactly one non-blocking read.
func (h *OwnedReadHalf) TryRead(p []byte) (int, error) { return h.s.TryRead(p) }

// TryReadVectored is TryRead scattering into multiple buffers.
func (h *OwnedReadHalf) TryReadVectored(bufs [][]byte) (int, error) {
	return h.s.TryReadVectored(bufs)
}

// Readable suspends until the stream reports read-readiness.
func (h *OwnedReadHalf) Readable(ctx context.Context) error { return h.s.Readable(ctx) }

// Ready suspends until the stream reports the requested readiness.
func (h *OwnedReadHalf) Ready(ctx context.Context, interest Interest) (Ready, error) {
	return h.s.Ready(ctx, interest)
}

// Close releases this half's share of the socket. The descriptor closes once
// the write half has been released as well. Close is a no-op the second
// time.
func (h *OwnedReadHalf) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.o.release()
}

// OwnedWriteHalf is the owned write half of a stream produced by IntoSplit,
// holding the other share of the underlying socket.
type OwnedWriteHalf struct {
	s      *Stream
	o      *owned
	closed bool
}

// IsTCP reports whether the half belongs to a TCP-backed stream.
func (h *OwnedWriteHalf) IsTCP() bool { return h.s.IsTCP() }

// IsUnix reports whether the half belongs to a UNIX-domain-backed stream.
func (h *OwnedWriteHalf) IsUnix() bool { return h.s.IsUnix() }

// LocalAddr returns the stream's local address.
func (h *OwnedWriteHalf) LocalAddr() Addr { return fromNetAddr(h.s.conn().LocalAddr()) }

// PeerAddr returns the stream's remote address.
func (h *OwnedWriteHalf) PeerAddr() Addr { return fromNetAddr(h.s.conn().RemoteAddr()) }

// Write writes to the stream.
func (h *OwnedWriteHalf) Write(p []byte) (int, error) { return h.s.Write(p) }

// TryWrite performs exactly one non-blocking write.
func (h *OwnedWriteHalf) TryWrite(p []byte) (int, error) { return h.s.TryWrite(p) }

// TryWriteVectored is TryWrite gathering from multiple buffers.
func (h *OwnedWriteHalf) TryWriteVectored(bufs [][]byte) (int, error) {
	return h.s.TryWriteVectored(bufs)
}

// Writable suspends until the stream reports write-readiness.
func (h *OwnedWriteHalf) Writable(ctx context.Context) error { return h.s.Writable(ctx) }

// Ready suspends until the stream reports the requested readiness.
func (h *OwnedWriteHalf) Ready(ctx context.Context, interest Interest) (Ready, error) {
	return h.s.Ready(ctx, interest)
}

// Close shuts down the writing side of the connection, letting the peer see
// end-of-file, and releases this half's share of the socket. The descriptor
// itself stays open while the read half remains.
func (h *OwnedWriteHalf) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	err := h.s.CloseWrite()
	if rerr := h.o.release(); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// Forget releases this half's share without shutting down the write
// direction: the peer keeps seeing the stream as open, and the read half
// alone determines when the descriptor finally closes. A forgotten half must
// not be used again.
func (h *OwnedWriteHalf) Forget() {
	if h.closed {
		return
	}
	h.closed = true
	h.o.release()
}

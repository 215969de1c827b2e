package xnet

import "context"

// ReadHalf is the borrowed read half of a stream produced by Split. It
// borrows the stream rather than owning any part of the descriptor: once the
// stream is closed the half is dead, and using the stream directly while the
// half is in use is racy.
type ReadHalf struct {
	s *Stream
}

// IsTCP reports whether the half belongs to a TCP-backed stream.
func (h *ReadHalf) IsTCP() bool { return h.s.IsTCP() }

// IsUnix reports whether the half belongs to a UNIX-domain-backed stream.
func (h *ReadHalf) IsUnix() bool { return h.s.IsUnix() }

// LocalAddr returns the stream's local address.
func (h *ReadHalf) LocalAddr() Addr { return fromNetAddr(h.s.conn().LocalAddr()) }

// PeerAddr returns the stream's remote address.
func (h *ReadHalf) PeerAddr() Addr { return fromNetAddr(h.s.conn().RemoteAddr()) }

// Read reads from the stream.
func (h *ReadHalf) Read(p []byte) (int, error) { return h.s.Read(p) }

// TryRead performs exactly one non-blocking read.
func (h *ReadHalf) TryRead(p []byte) (int, error) { return h.s.TryRead(p) }

// TryReadVectored is TryRead scattering into multiple buffers.
func (h *ReadHalf) TryReadVectored(bufs [][]byte) (int, error) {
	return h.s.TryReadVectored(bufs)
}

// Readable suspends until the stream reports read-readiness.
func (h *ReadHalf) Readable(ctx context.Context) error { return h.s.Readable(ctx) }

// Ready suspends until the stream reports the requested readiness.
func (h *ReadHalf) Ready(ctx context.Context, interest Interest) (Ready, error) {
	return h.s.Ready(ctx, interest)
}

// WriteHalf is the borrowed write half of a stream produced by Split, under
// the same borrowing contract as ReadHalf.
type WriteHalf struct {
	s *Stream
}

// IsTCP reports whether the half belongs to a TCP-backed stream.
func (h *WriteHalf) IsTCP() bool { return h.s.IsTCP() }

// IsUnix reports whether the half belongs to a UNIX-domain-backed stream.
func (h *WriteHalf) IsUnix() bool { return h.s.IsUnix() }

// LocalAddr returns the stream's local address.
func (h *WriteHalf) LocalAddr() Addr { return fromNetAddr(h.s.conn().LocalAddr()) }

// PeerAddr returns the stream's remote address.
func (h *WriteHalf) PeerAddr() Addr { return fromNetAddr(h.s.conn().RemoteAddr()) }

// Write writes to the stream.
func (h *WriteHalf) Write(p []byte) (int, error) { return h.s.Write(p) }

// TryWrite performs exactly one non-blocking write.
func (h *WriteHalf) TryWrite(p []byte) (int, error) { return h.s.TryWrite(p) }

// TryWriteVectored is TryWrite gathering from multiple buffers.
func (h *WriteHalf) TryWriteVectored(bufs [][]byte) (int, error) {
	return h.s.TryWriteVectored(bufs)
}

// Writable suspends until the stream reports write-readiness.
func (h *WriteHalf) Writable(ctx context.Context) error { return h.s.Writable(ctx) }

// Ready suspends until the stream reports the requested readiness.
func (h *WriteHalf) Ready(ctx context.Context, interest Interest) (Ready, error) {
	return h.s.Ready(ctx, interest)
}

// Close shuts down the writing side of the connection. The descriptor stays
// open and the stream remains readable.
func (h *WriteHalf) Close() error { return h.s.CloseWrite() }

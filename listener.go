package xnet

import (
	"context"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/perlin-network/xnet/log"
)

// Listener is a passive socket endpoint bound to exactly one transport kind,
// TCP or UNIX-domain, fixed at construction. Closing the listener closes the
// underlying descriptor; a UNIX listener additionally removes the socket
// file it created.
type Listener struct {
	tcp  *net.TCPListener
	unix *net.UnixListener
}

// FromTCPListener wraps a native TCP listener.
func FromTCPListener(l *net.TCPListener) *Listener {
	return &Listener{tcp: l}
}

// FromUnixListener wraps a native UNIX-domain listener.
func FromUnixListener(l *net.UnixListener) *Listener {
	return &Listener{unix: l}
}

// Listen resolves v into candidate addresses and binds a listener to the
// first one the operating system accepts. Candidates are tried strictly in
// order; when every candidate fails, the error observed on the last one is
// returned and earlier failures are discarded. Binding to an unnamed UNIX
// address is a programming error and panics.
func Listen(ctx context.Context, v interface{}) (*Listener, error) {
	addrs, err := ResolveAddrs(v)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, addr := range addrs {
		l, err := listenAddr(ctx, addr)
		if err == nil {
			return l, nil
		}
		log.Debug().Stringer("addr", addr).Err(err).Msg("bind candidate failed")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrNoAddrs
	}
	return nil, lastErr
}

func listenAddr(ctx context.Context, addr Addr) (*Listener, error) {
	var lc net.ListenConfig

	switch {
	case addr.tcp != nil:
		l, err := lc.Listen(ctx, "tcp", addr.tcp.String())
		if err != nil {
			return nil, err
		}
		return &Listener{tcp: l.(*net.TCPListener)}, nil
	case addr.unix != nil:
		if addr.IsUnnamed() {
			panic("xnet: cannot bind to an unnamed unix address")
		}
		l, err := lc.Listen(ctx, "unix", addr.unix.Name)
		if err != nil {
			return nil, err
		}
		return &Listener{unix: l.(*net.UnixListener)}, nil
	}
	return nil, errors.New("cannot bind to the zero Addr")
}

// IsTCP reports whether the listener is backed by a TCP socket.
func (l *Listener) IsTCP() bool { return l.tcp != nil }

// IsUnix reports whether the listener is backed by a UNIX-domain socket.
func (l *Listener) IsUnix() bool { return l.unix != nil }

func (l *Listener) netListener() net.Listener {
	switch {
	case l.tcp != nil:
		return l.tcp
	case l.unix != nil:
		return l.unix
	}
	panic("xnet: use of a zero Listener")
}

func (l *Listener) setDeadline(t time.Time) error {
	switch {
	case l.tcp != nil:
		return l.tcp.SetDeadline(t)
	case l.unix != nil:
		return l.unix.SetDeadline(t)
	}
	panic("xnet: use of a zero Listener")
}

// Accept waits for the next incoming connection and returns it together with
// the resolved address of the remote peer. Cancelling ctx interrupts the
// wait with ctx's error and leaves the listener untouched; the accept may be
// retried immediately.
func (l *Listener) Accept(ctx context.Context) (*Stream, Addr, error) {
	release, err := interruptAfter(ctx, l.setDeadline)
	if err != nil {
		return nil, Addr{}, err
	}
	defer release()

	switch {
	case l.tcp != nil:
		c, err := l.tcp.AcceptTCP()
		if err != nil {
			return nil, Addr{}, wrapCanceled(ctx, err)
		}
		return &Stream{tcp: c}, fromNetAddr(c.RemoteAddr()), nil
	case l.unix != nil:
		c, err := l.unix.AcceptUnix()
		if err != nil {
			return nil, Addr{}, wrapCanceled(ctx, err)
		}
		return &Stream{unix: c}, fromNetAddr(c.RemoteAddr()), nil
	}
	panic("xnet: use of a zero Listener")
}

// TryAccept attempts to accept a pending connection without blocking. It
// returns ErrWouldBlock when no connection is waiting.
func (l *Listener) TryAccept() (*Stream, Addr, error) {
	rc, err := l.SyscallConn()
	if err != nil {
		return nil, Addr{}, err
	}

	nfd := -1
	var serr error
	if err := rc.Read(func(fd uintptr) bool {
		for {
			nfd, _, serr = unix.Accept(int(fd))
			if serr == unix.EINTR {
				continue
			}
			return true
		}
	}); err != nil {
		return nil, Addr{}, err
	}
	switch {
	case serr == unix.EAGAIN:
		return nil, Addr{}, ErrWouldBlock
	case serr != nil:
		return nil, Addr{}, os.NewSyscallError("accept", serr)
	}

	unix.CloseOnExec(nfd)
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return nil, Addr{}, os.NewSyscallError("setnonblock", err)
	}

	f := os.NewFile(uintptr(nfd), "")
	defer f.Close()

	conn, err := net.FileConn(f)
	if err != nil {
		return nil, Addr{}, err
	}
	s, err := wrapConn(conn)
	if err != nil {
		return nil, Addr{}, err
	}
	return s, fromNetAddr(conn.RemoteAddr()), nil
}

// Addr returns the listener's bound local address.
func (l *Listener) Addr() Addr {
	return fromNetAddr(l.netListener().Addr())
}

// Close closes the listener, releasing the underlying descriptor.
func (l *Listener) Close() error {
	return l.netListener().Close()
}

// TakeError returns and clears the deferred error recorded on the underlying
// socket. TCP listeners do not expose this capability, so the TCP side
// always reports nil.
func (l *Listener) TakeError() error {
	if l.unix == nil {
		return nil
	}
	rc, err := l.unix.SyscallConn()
	if err != nil {
		return err
	}
	return takeError(rc)
}

// SyscallConn returns the raw descriptor for interop with external polling.
func (l *Listener) SyscallConn() (syscall.RawConn, error) {
	switch {
	case l.tcp != nil:
		return l.tcp.SyscallConn()
	case l.unix != nil:
		return l.unix.SyscallConn()
	}
	return nil, errors.New("use of a zero Listener")
}

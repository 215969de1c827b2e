package xnet

import (
	"context"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// aLongTimeAgo is a non-zero time far in the past, used to interrupt pending
// socket waits by moving the deadline behind them.
var aLongTimeAgo = time.Unix(1, 0)

type deadlineSetter func(time.Time) error

// interruptAfter arms ctx-driven interruption of a blocking socket wait: when
// ctx is done, the relevant deadline is moved into the past, which wakes the
// wait with a timeout. The returned release must be called once the wait
// finishes; it clears the interrupt deadline if it fired, so the socket stays
// usable afterwards.
func interruptAfter(ctx context.Context, set deadlineSetter) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ctx.Done() == nil {
		return func() {}, nil
	}

	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		set(aLongTimeAgo)
		close(fired)
	})
	return func() {
		if !stop() {
			<-fired
			set(time.Time{})
		}
	}, nil
}

// wrapCanceled rewrites a deadline error caused by ctx interruption into the
// ctx error itself. Genuine deadline errors set by the caller pass through.
func wrapCanceled(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return ctx.Err()
	}
	return err
}

// waitRead parks on the runtime poller until the descriptor reports
// read-readiness. The wakeup may be spurious.
func waitRead(rc syscall.RawConn) error {
	ready := false
	return rc.Read(func(uintptr) bool {
		done := ready
		ready = true
		return done
	})
}

// waitWrite is waitRead for write-readiness.
func waitWrite(rc syscall.RawConn) error {
	ready := false
	return rc.Write(func(uintptr) bool {
		done := ready
		ready = true
		return done
	})
}

// tryRead performs exactly one non-blocking read on the descriptor.
func tryRead(rc syscall.RawConn, p []byte) (int, error) {
	var n int
	var serr error
	if err := rc.Read(func(fd uintptr) bool {
		n, serr = readNonblock(int(fd), p)
		return true
	}); err != nil {
		return 0, err
	}
	if serr != nil {
		return 0, serr
	}
	return n, nil
}

// tryWrite performs exactly one non-blocking write on the descriptor.
func tryWrite(rc syscall.RawConn, p []byte) (int, error) {
	var n int
	var serr error
	if err := rc.Write(func(fd uintptr) bool {
		n, serr = writeNonblock(int(fd), p)
		return true
	}); err != nil {
		return 0, err
	}
	if serr != nil {
		return 0, serr
	}
	return n, nil
}

func readNonblock(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, os.NewSyscallError("read", err)
		case n == 0 && len(p) > 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

func writeNonblock(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, os.NewSyscallError("write", err)
		}
		return n, nil
	}
}

// takeError fetches and clears the deferred error recorded on the socket.
func takeError(rc syscall.RawConn) error {
	var soerr int
	var gerr error
	if err := rc.Control(func(fd uintptr) {
		soerr, gerr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
	}); err != nil {
		return err
	}
	if gerr != nil {
		return os.NewSyscallError("getsockopt", gerr)
	}
	if soerr == 0 {
		return nil
	}
	return syscall.Errno(soerr)
}

func totalLen(bufs [][]byte) int {
	total := 0
	for _, b := range bufs {
		total += len(b)
	}
	return total
}

//go:build linux

package xnet

import (
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// tryReadv scatters a single non-blocking read across bufs.
func tryReadv(rc syscall.RawConn, bufs [][]byte) (int, error) {
	var n int
	var serr error
	if err := rc.Read(func(fd uintptr) bool {
		for {
			n, serr = unix.Readv(int(fd), bufs)
			if serr == unix.EINTR {
				continue
			}
			return true
		}
	}); err != nil {
		return 0, err
	}
	switch {
	case serr == unix.EAGAIN:
		return 0, ErrWouldBlock
	case serr != nil:
		return 0, os.NewSyscallError("readv", serr)
	case n == 0 && totalLen(bufs) > 0:
		return 0, io.EOF
	}
	return n, nil
}

// tryWritev gathers bufs into a single non-blocking write.
func tryWritev(rc syscall.RawConn, bufs [][]byte) (int, error) {
	var n int
	var serr error
	if err := rc.Write(func(fd uintptr) bool {
		for {
			n, serr = unix.Writev(int(fd), bufs)
			if serr == unix.EINTR {
				continue
			}
			return true
		}
	}); err != nil {
		return 0, err
	}
	switch {
	case serr == unix.EAGAIN:
		return 0, ErrWouldBlock
	case serr != nil:
		return 0, os.NewSyscallError("writev", serr)
	}
	return n, nil
}

//go:build !linux

package xnet

import "syscall"

// x/sys does not expose readv/writev everywhere, so non-Linux platforms
// scatter and gather with repeated single-buffer attempts. The transfer is
// not atomic across buffers, which matches the partial-transfer contract of
// the Try operations.

func tryReadv(rc syscall.RawConn, bufs [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := tryRead(rc, b)
		total += n
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		if n < len(b) {
			break
		}
	}
	return total, nil
}

func tryWritev(rc syscall.RawConn, bufs [][]byte) (int, error) {
	total := 0
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		n, err := tryWrite(rc, b)
		total += n
		if err != nil {
			if total > 0 {
				return total, nil
			}
			return 0, err
		}
		if n < len(b) {
			break
		}
	}
	return total, nil
}

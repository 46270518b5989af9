//go:build !windows

package usi

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// readChunk waits up to timeoutMs (negative = block indefinitely) for f to
// become readable using poll(2), then reads into buf. It restarts the poll
// on EINTR/EAGAIN, matching the reference arbiter's POSIX primitive.
func readChunk(f *os.File, timeoutMs int, buf []byte) (n int, timedOut, disconnected bool, err error) {
	fd := int(f.Fd())
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}

	for {
		pn, perr := unix.Poll(fds, timeoutMs)
		if perr != nil {
			if errors.Is(perr, unix.EINTR) || errors.Is(perr, unix.EAGAIN) {
				continue
			}
			return 0, false, false, perr
		}
		if pn == 0 {
			return 0, true, false, nil
		}
		break
	}

	n, rerr := f.Read(buf)
	if n == 0 {
		return 0, false, true, nil
	}
	if rerr != nil && n == 0 {
		return 0, false, false, rerr
	}
	return n, false, false, nil
}

//go:build windows

package usi

import (
	"os"

	"golang.org/x/sys/windows"
)

// readChunk issues an overlapped ReadFile against the pipe handle, then
// waits on the overlapped event for at most timeoutMs (negative = wait
// forever). On WAIT_TIMEOUT it cancels the pending I/O and reports a
// timeout; the event handle is closed on every exit path.
func readChunk(f *os.File, timeoutMs int, buf []byte) (n int, timedOut, disconnected bool, err error) {
	handle := windows.Handle(f.Fd())

	event, err := windows.CreateEvent(nil, 1 /* manual reset */, 0, nil)
	if err != nil {
		return 0, false, false, err
	}
	defer windows.CloseHandle(event)

	ov := &windows.Overlapped{HEvent: event}

	var done uint32
	rerr := windows.ReadFile(handle, buf, &done, ov)
	if rerr != nil && rerr != windows.ERROR_IO_PENDING {
		if rerr == windows.ERROR_BROKEN_PIPE || rerr == windows.ERROR_HANDLE_EOF {
			return 0, false, true, nil
		}
		return 0, false, false, rerr
	}

	if rerr == windows.ERROR_IO_PENDING {
		ms := uint32(windows.INFINITE)
		if timeoutMs >= 0 {
			ms = uint32(timeoutMs)
		}
		ws, werr := windows.WaitForSingleObject(event, ms)
		switch {
		case werr != nil:
			windows.CancelIo(handle)
			return 0, false, false, werr
		case ws == uint32(windows.WAIT_TIMEOUT):
			windows.CancelIo(handle)
			return 0, true, false, nil
		}

		var transferred uint32
		if err := windows.GetOverlappedResult(handle, ov, &transferred, false); err != nil {
			if err == windows.ERROR_BROKEN_PIPE || err == windows.ERROR_HANDLE_EOF {
				return 0, false, true, nil
			}
			return 0, false, false, err
		}
		done = transferred
	}

	if done == 0 {
		return 0, false, true, nil
	}
	return int(done), false, false, nil
}

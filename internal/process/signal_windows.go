//go:build windows

package process

import (
	"os"

	"golang.org/x/sys/windows"
)

// System signals real processes. On Windows both signals end the process
// outright.
type System struct{}

func (System) Terminate(pid int) error { return kill(pid) }

func (System) Kill(pid int) error { return kill(pid) }

func (System) Alive(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == 259 // STILL_ACTIVE
}

func kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

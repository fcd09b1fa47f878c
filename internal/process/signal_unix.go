//go:build !windows

package process

import (
	"errors"

	"golang.org/x/sys/unix"
)

// System signals real processes with kill(2).
type System struct{}

func (System) Terminate(pid int) error { return unix.Kill(pid, unix.SIGTERM) }

func (System) Kill(pid int) error { return unix.Kill(pid, unix.SIGKILL) }

// Alive sends signal 0. EPERM means the process exists but belongs to
// someone else.
func (System) Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

//go:build !linux

package process

func procPortPIDs(int) ([]int, error) {
	return nil, ErrLsofMissing
}

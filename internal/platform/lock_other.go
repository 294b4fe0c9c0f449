//go:build !linux

package platform

// No lock signal source outside Linux yet; idle detection still works where
// the idle provider is supported.
func newLockSource() lockSource {
	return nil
}

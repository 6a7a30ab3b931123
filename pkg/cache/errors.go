package cache

import "fmt"

// UnknownBackendError is returned by [New] for an unsupported backend name.
type UnknownBackendError struct {
	Backend string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown cache backend %q (want %s, %s or %s)", e.Backend, BackendFile, BackendRedis, BackendNone)
}

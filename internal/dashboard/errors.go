package dashboard

import "fmt"

// PersistenceError 持久化层读写失败；不影响用户操作，调用方回退到本地缓存
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

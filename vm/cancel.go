package vm

import "sync/atomic"

// CancelToken is a cooperative stop signal shared between the goroutine
// running a program and whatever caller wants to interrupt it, a REPL
// handling Ctrl-C, or a host enforcing a time limit. The VM checks it
// once per instruction dispatch; a single writer calling Cancel and a
// single reader inside the interpreter loop is the only usage pattern it
// needs to support.
type CancelToken struct {
	flag atomic.Bool
}

func NewCancelToken() *CancelToken { return &CancelToken{} }

func (c *CancelToken) Cancel() { c.flag.Store(true) }

func (c *CancelToken) Cancelled() bool { return c.flag.Load() }

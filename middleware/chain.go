// Package middleware implements the ordered, composable request->response
// transformer chain wrapping a terminal route dispatch.
package middleware

import "github.com/coapkit/coapkit/message"

// Next is the remainder of the chain (eventually the router dispatch).
type Next func(req *message.Inbound) (*message.Outbound, error)

// Middleware may inspect/modify the request, call next to continue the
// chain, or short-circuit by not calling next at all.
type Middleware func(req *message.Inbound, next Next) (*message.Outbound, error)

// Chain is an ordered list of Middleware composed right-to-left around a
// terminal Next (the router dispatch).
type Chain struct {
	mw []Middleware
}

// New builds a Chain from mw in registration order (mw[0] runs first, sees
// the raw request first, and sees the response last on the way back out).
func New(mw ...Middleware) *Chain {
	return &Chain{mw: append([]Middleware(nil), mw...)}
}

// Use appends more middleware to the end of the chain.
func (c *Chain) Use(mw ...Middleware) {
	c.mw = append(c.mw, mw...)
}

// Then composes the chain around terminal and returns a single Next that
// runs the whole pipeline.
func (c *Chain) Then(terminal Next) Next {
	next := terminal
	for i := len(c.mw) - 1; i >= 0; i-- {
		mw := c.mw[i]
		n := next
		next = func(req *message.Inbound) (*message.Outbound, error) {
			return mw(req, n)
		}
	}
	return next
}

package mux

// chainState is the terminal state of a middleware chain run.
type chainState int

const (
	// chainComplete means every middleware called next(nil), or the error
	// handler resolved an error by calling next(nil). The handler runs.
	chainComplete chainState = iota

	// chainHalted means a middleware or the error handler returned without
	// calling next. The accumulated response is sent; the handler does not run.
	chainHalted

	// chainError means an error was signalled and nothing resolved it.
	chainError
)

func (s chainState) String() string {
	switch s {
	case chainComplete:
		return "complete"
	case chainHalted:
		return "halted"
	case chainError:
		return "error"
	default:
		return "unknown"
	}
}

type chainResult struct {
	state chainState
	err   error
}

// signal captures the first call to a NextFunc.
type signal struct {
	called bool
	err    error
}

func (s *signal) next() NextFunc {
	return func(err error) {
		if s.called {
			return
		}
		s.called = true
		s.err = err
	}
}

// chain drives middleware and the error handler with an explicit loop
// rather than nested continuations. next must be called before a
// middleware returns; later calls are ignored.
type chain struct {
	middlewares  []MiddlewareFunc
	errorHandler ErrorHandlerFunc
}

// run executes the middleware in order. An empty chain is complete.
func (c chain) run(r *Request, w *Response) chainResult {
	for _, mw := range c.middlewares {
		var sig signal
		mw(r, w, sig.next())

		switch {
		case !sig.called:
			return chainResult{state: chainHalted}
		case sig.err != nil:
			return c.fail(sig.err, r, w)
		}
	}

	return chainResult{state: chainComplete}
}

// fail hands err to the error handler. The error handler owns control
// until it calls next: next(nil) completes the chain, next(err) is a
// nested error and is not handed back to the error handler.
func (c chain) fail(err error, r *Request, w *Response) chainResult {
	if c.errorHandler == nil {
		return chainResult{state: chainError, err: err}
	}

	var sig signal
	c.errorHandler(err, r, w, sig.next())

	switch {
	case !sig.called:
		return chainResult{state: chainHalted}
	case sig.err != nil:
		return chainResult{state: chainError, err: sig.err}
	default:
		return chainResult{state: chainComplete}
	}
}

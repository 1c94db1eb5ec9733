package server

// Middleware wraps a ServerAdapter with additional behaviour (logging,
// auth, tracing) while preserving its interface.
type Middleware func(ServerAdapter) ServerAdapter

// ApplyMiddleware wraps base with mws, applied so the first middleware in
// the list is the outermost: a call made on the returned adapter reaches
// mws[0] first, then mws[1], and so on down to base.
func ApplyMiddleware(base ServerAdapter, mws ...Middleware) ServerAdapter {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

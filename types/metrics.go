package types

// This file defines how a store reports what it is doing.

/*
Metrics receives one call per cache lifecycle event.
Stores call these methods synchronously on their hot path, so
implementations must be cheap and safe for concurrent use.
*/
type Metrics interface {

	// Hit is called when a read returns a live value.
	Hit()

	// Miss is called when a read finds nothing, or finds an expired entry.
	Miss()

	// Eviction is called when a key is removed because the store is full.
	Eviction()

	// Expire is called when a key is removed because its TTL has passed.
	Expire()

	// Refresh is called when a refresh hook is triggered.
	Refresh()
}

/*
NoopMetrics ignores every event.

Stores default to it so the rest of the code never needs a nil check.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) Eviction() {}
func (NoopMetrics) Expire()   {}
func (NoopMetrics) Refresh()  {}

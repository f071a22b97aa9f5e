// Package progress implements the observer/abort protocol woven through
// every long-running read or write: the engine reports fractional
// progress and warnings/errors to a caller-supplied Observer, and the
// Observer's return value (or a panic it raises) can abort the operation
// in flight.
package progress

// Decision is the value an Observer callback returns to tell the engine
// whether to keep going.
type Decision int

const (
	// Continue tells the engine to proceed with the operation.
	Continue Decision = iota
	// Stop tells the engine to abort the operation at the next safe boundary.
	Stop
)

// Observer receives progress notifications during a long-running read or
// write. Implementations must be safe to call from the same goroutine that
// issued the operation; there is no cross-thread suspension.
type Observer interface {
	// OnProgressUpdated is called at least once per cluster written or read,
	// with fraction in [0, 1]. Returning Stop aborts the operation.
	OnProgressUpdated(fraction float64) Decision

	// OnWarning is called for a non-fatal condition encountered mid-operation.
	// Returning Stop aborts the operation; Continue lets it proceed.
	OnWarning(err error) Decision

	// OnError is called when a fatal condition is encountered. The return
	// value is advisory only: the engine always aborts after OnError, but
	// callers may use the decision to distinguish "expected" aborts from
	// unexpected ones in their own bookkeeping.
	OnError(err error) Decision
}

// NopObserver implements Observer with all callbacks returning Continue. Use
// it (or a nil Observer, which Reporter also tolerates) when the caller does
// not need progress notifications.
type NopObserver struct{}

func (NopObserver) OnProgressUpdated(float64) Decision { return Continue }
func (NopObserver) OnWarning(error) Decision            { return Continue }
func (NopObserver) OnError(error) Decision              { return Continue }

// Aborted is the sentinel error surfaced to the caller when an Observer
// returns Stop (or panics) mid-operation. Engine code wraps the original
// cause, if any, so the caller's own error (from OnError) is preserved.
type Aborted struct {
	Cause error
}

func (a *Aborted) Error() string {
	if a.Cause != nil {
		return "operation aborted by observer: " + a.Cause.Error()
	}
	return "operation aborted by observer"
}

func (a *Aborted) Unwrap() error { return a.Cause }

// Reporter adapts a possibly-nil Observer into a safe call surface, turning
// panics raised from within a callback into an *Aborted error exactly like
// an explicit Stop return, per the "or throws" clause of the protocol.
type Reporter struct {
	obs Observer
}

// New wraps obs. A nil obs is replaced with NopObserver so callers never
// need a nil check.
func New(obs Observer) *Reporter {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Reporter{obs: obs}
}

// Progress reports fraction, returning an *Aborted error if the observer
// wants to stop or panicked.
func (r *Reporter) Progress(fraction float64) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &Aborted{Cause: toError(rec)}
		}
	}()
	if r.obs.OnProgressUpdated(fraction) == Stop {
		return &Aborted{}
	}
	return nil
}

// Warning reports a non-fatal condition, returning an *Aborted error if the
// observer wants to stop or panicked.
func (r *Reporter) Warning(cause error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &Aborted{Cause: toError(rec)}
		}
	}()
	if r.obs.OnWarning(cause) == Stop {
		return &Aborted{Cause: cause}
	}
	return nil
}

// Error reports a fatal condition and always returns an *Aborted wrapping
// cause: OnError is notification-only, the operation is unwinding either way.
func (r *Reporter) Error(cause error) error {
	func() {
		defer func() { recover() }()
		r.obs.OnError(cause)
	}()
	return &Aborted{Cause: cause}
}

func toError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return &panicError{value: rec}
}

type panicError struct{ value any }

func (p *panicError) Error() string {
	if s, ok := p.value.(string); ok {
		return s
	}
	return "observer panic"
}

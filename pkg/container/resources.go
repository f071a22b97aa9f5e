package container

import (
	"sync"
	"time"

	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
	"github.com/cryptobox/cryptobox/pkg/namespace"
	"github.com/cryptobox/cryptobox/pkg/payloadstore"
)

// resources is the Container's implementation of namespace.Resources. It is
// handed to Element/Folder/File/... handles as a weak back-reference: those
// handles hold a resources value, never a *Container, so a Container can be
// closed while external code still holds stale Element handles — every
// subsequent call through them fails CheckAlive with OwnerIsMissing instead
// of touching a closed store (spec.md §5).
type resources struct {
	mu      sync.RWMutex
	meta    *metastore.Store
	payl    *payloadstore.Store
	prefs   namespace.Preferences
	closed  bool
	nowFunc func() time.Time
}

func (r *resources) Metastore() *metastore.Store { return r.meta }
func (r *resources) Payload() *payloadstore.Store { return r.payl }

func (r *resources) Preferences() namespace.Preferences {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs
}

func (r *resources) setPreferences(p namespace.Preferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs = p
}

func (r *resources) CheckAlive() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errs.New(errs.OwnerIsMissing, "container is closed")
	}
	return nil
}

func (r *resources) markClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Now returns nowFunc() when it is set and time.Now() otherwise; nowFunc is
// a seam for deterministic created/modified timestamps. No test in this
// repository sets it.
func (r *resources) Now() time.Time {
	r.mu.RLock()
	fn := r.nowFunc
	r.mu.RUnlock()
	if fn != nil {
		return fn()
	}
	return time.Now()
}

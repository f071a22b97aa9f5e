package namespace

import (
	"time"

	"github.com/cryptobox/cryptobox/pkg/metastore"
	"github.com/cryptobox/cryptobox/pkg/payloadstore"
	"github.com/cryptobox/cryptobox/pkg/stream"
)

// Preferences mirrors the container's DataUsagePreferences: whether File
// writes go through the transactional path, and which cluster-size level
// the Stream Allocator rounds allocations up to.
type Preferences struct {
	TransactionalWrite bool
	ClusterLevel       stream.ClusterLevel
}

// ClusterSize returns the byte size for the current cluster level.
func (p Preferences) ClusterSize() int64 { return p.ClusterLevel.Bytes() }

// Resources is everything an Element needs to reach the rest of the
// container without holding a direct, lifetime-extending reference to it.
// It is implemented by the container package's resources registry, which
// also answers CheckAlive with OwnerIsMissing once the owning Container has
// been closed — the weak-back-reference pattern from spec.md §5/§9 Design
// Notes, avoiding a Container <-> Element reference cycle.
type Resources interface {
	Metastore() *metastore.Store
	Payload() *payloadstore.Store
	Preferences() Preferences
	CheckAlive() error
	Now() time.Time
}

// Package stream implements the Stream Allocator (C4): allocation, reuse,
// and packing of cluster-aligned byte ranges within the payload store.
// The cluster-size ladder is grounded on the teacher repo's
// pkg/payload/block package, which defines a fixed block size and
// IndexForOffset/Bounds helpers over it; here the ladder is a small set of
// selectable levels (rather than one fixed constant) because spec.md
// requires the level to be chosen once at container creation and stored.
package stream

import (
	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
)

// ClusterLevel identifies one rung of the cluster-size ladder. The
// underlying byte size is computed on demand from the level (spec.md §9
// Design Notes: "Store only the level, compute size on demand").
type ClusterLevel int

const (
	ClusterSizeMin ClusterLevel = iota
	ClusterSize64K
	ClusterSize256K
	ClusterSize1M
	ClusterSizeMax = ClusterSize1M
)

var clusterBytes = map[ClusterLevel]int64{
	ClusterSizeMin:  4 * 1024,
	ClusterSize64K:  64 * 1024,
	ClusterSize256K: 256 * 1024,
	ClusterSize1M:   1024 * 1024,
}

// Bytes returns the cluster size in bytes for level.
func (l ClusterLevel) Bytes() int64 {
	if b, ok := clusterBytes[l]; ok {
		return b
	}
	return clusterBytes[ClusterSizeMin]
}

func (l ClusterLevel) Valid() bool {
	_, ok := clusterBytes[l]
	return ok
}

// PayloadAppender is the subset of the Payload Store Adapter the allocator
// needs: where new streams land.
type PayloadAppender interface {
	Size() int64
}

// Allocator allocates, adopts, and frees Streams on behalf of the File I/O
// Engine. It holds no state of its own beyond the cluster size: all stream
// bookkeeping lives in the metadata store, so two Allocators over the same
// connection see a consistent view.
type Allocator struct {
	q       metastore.Queryer
	payload PayloadAppender
	cluster ClusterLevel
}

// New builds an Allocator bound to q (the metadata connection or an open
// Savepoint's Tx(), depending on write mode) and payload (for append
// placement), using the container's configured cluster size.
func New(q metastore.Queryer, payload PayloadAppender, cluster ClusterLevel) *Allocator {
	return &Allocator{q: q, payload: payload, cluster: cluster}
}

func ceilToCluster(n, cluster int64) int64 {
	if n <= 0 {
		return cluster
	}
	return ((n + cluster - 1) / cluster) * cluster
}

// Allocate satisfies needed bytes of capacity for ownerFileID, first by
// adopting existing free streams (largest first, per spec.md §4.4 rule 1),
// then — if adoption did not cover the request — by appending exactly one
// new stream sized to the remaining need, rounded up to a cluster. It
// returns the full, newly-relevant set of streams in (stream_order, id)
// order (the streams adopted/appended by this call only, not the file's
// pre-existing streams).
func (a *Allocator) Allocate(ownerFileID int64, neededBytes int64) ([]metastore.FileStreamRow, error) {
	if neededBytes < 0 {
		return nil, errs.New(errs.WrongParameters, "negative allocation size")
	}

	nextOrder, err := metastore.MaxStreamOrder(a.q, ownerFileID)
	if err != nil {
		return nil, err
	}
	nextOrder++

	var acquired []metastore.FileStreamRow
	var covered int64

	if neededBytes > 0 {
		free, err := metastore.FreeStreams(a.q)
		if err != nil {
			return nil, err
		}
		for _, fs := range free {
			if covered >= neededBytes {
				break
			}
			if err := metastore.AdoptStream(a.q, fs.ID, ownerFileID, nextOrder); err != nil {
				return nil, err
			}
			fs.FileID = ownerFileID
			fs.StreamOrder = nextOrder
			nextOrder++
			covered += fs.Size
			acquired = append(acquired, fs)
		}
	}

	if covered < neededBytes {
		remaining := neededBytes - covered
		size := ceilToCluster(remaining, a.cluster.Bytes())
		start := a.payload.Size()
		row := metastore.FileStreamRow{
			FileID:      ownerFileID,
			StreamOrder: nextOrder,
			Start:       start,
			Size:        size,
			Used:        0,
		}
		if err := metastore.InsertStream(a.q, &row); err != nil {
			return nil, err
		}
		acquired = append(acquired, row)
	}

	return acquired, nil
}

// FreeAllOfFile marks every stream of fileID as used=0 in place, keeping
// file_id unchanged (the non-transactional write's step 1, and the basis
// for Clear without disowning).
func FreeAllOfFile(q metastore.Queryer, fileID int64) error {
	streams, err := metastore.StreamsOfFile(q, fileID)
	if err != nil {
		return err
	}
	for _, s := range streams {
		if s.Used == 0 {
			continue
		}
		if err := metastore.FreeStream(q, s.ID); err != nil {
			return err
		}
	}
	return nil
}

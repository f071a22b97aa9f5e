package namespace

import (
	"io"

	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
	"github.com/cryptobox/cryptobox/pkg/progress"
	"github.com/cryptobox/cryptobox/pkg/stream"
)

// File is an Element of type File: its content is the concatenation of its
// Streams' used bytes, read in (stream_order, id) order (invariant 6).
type File struct {
	Element
}

// SpaceUsageInfo summarizes a file's stream footprint (spec.md §4.5).
type SpaceUsageInfo struct {
	StreamsTotal   int64
	StreamsUsed    int64
	SpaceAvailable int64
	SpaceUsed      int64
}

func newFile(res Resources, id int64) *File {
	return &File{Element: newElement(res, id)}
}

func (f *File) requireIsFile() error {
	row, err := f.mustRow()
	if err != nil {
		return err
	}
	if row.Type != metastore.ElementTypeFile {
		return errs.New(errs.WrongParameters, "element is not a file")
	}
	return nil
}

// Size returns the file's logical content length: the sum of used across
// its streams.
func (f *File) Size() (int64, error) {
	info, err := f.GetSpaceUsageInfo()
	if err != nil {
		return 0, err
	}
	return info.SpaceUsed, nil
}

// GetSpaceUsageInfo reports stream-level accounting for this file.
func (f *File) GetSpaceUsageInfo() (SpaceUsageInfo, error) {
	if err := f.res.CheckAlive(); err != nil {
		return SpaceUsageInfo{}, err
	}
	if err := f.requireIsFile(); err != nil {
		return SpaceUsageInfo{}, err
	}
	streams, err := metastore.StreamsOfFile(f.res.Metastore().Q(), f.id)
	if err != nil {
		return SpaceUsageInfo{}, err
	}
	var info SpaceUsageInfo
	info.StreamsTotal = int64(len(streams))
	for _, s := range streams {
		info.SpaceAvailable += s.Size
		info.SpaceUsed += s.Used
		if s.Used > 0 {
			info.StreamsUsed++
		}
	}
	return info, nil
}

// readWriteChunk is the smallest cluster size, so Read and Write report
// progress at least once per cluster at every cluster-size level.
const readWriteChunk = 4 * 1024

// Read delivers up to nbytes of the file's content to dst, walking streams
// in (stream_order, id) order and reading `used` bytes from each through
// the Payload Store Adapter. obs may be nil.
func (f *File) Read(dst io.Writer, nbytes int64, obs progress.Observer) (int64, error) {
	if err := f.res.CheckAlive(); err != nil {
		return 0, err
	}
	if err := f.requireIsFile(); err != nil {
		return 0, err
	}
	if nbytes < 0 {
		return 0, errs.New(errs.WrongParameters, "negative read length")
	}

	streams, err := metastore.StreamsOfFile(f.res.Metastore().Q(), f.id)
	if err != nil {
		return 0, err
	}

	reporter := progress.New(obs)
	var delivered int64

	for _, s := range streams {
		if delivered >= nbytes {
			break
		}
		remainingFile := nbytes - delivered
		toRead := s.Used
		if toRead > remainingFile {
			toRead = remainingFile
		}
		var readFromStream int64
		for readFromStream < toRead {
			chunk := toRead - readFromStream
			if chunk > readWriteChunk {
				chunk = readWriteChunk
			}
			data, err := f.res.Payload().ReadAt(s.Start+readFromStream, chunk)
			if err != nil {
				return delivered, err
			}
			if _, err := dst.Write(data); err != nil {
				return delivered, errs.Wrap(errs.CantWrite, "write to read destination", err)
			}
			readFromStream += chunk
			delivered += chunk
			if abErr := reporter.Progress(float64(delivered) / float64(maxInt64(nbytes, 1))); abErr != nil {
				return delivered, abErr
			}
		}
	}

	return delivered, nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Write replaces (or extends/truncates) the file's content with nbytes
// read from src, following the mode selected by the container's current
// DataUsagePreferences (spec.md §4.5). In non-transactional mode it
// returns the number of bytes actually written even when an error
// (including an observer abort) is returned; a failed transactional write
// is rolled back and returns 0.
func (f *File) Write(src io.Reader, nbytes int64, obs progress.Observer) (int64, error) {
	if err := f.res.CheckAlive(); err != nil {
		return 0, err
	}
	if err := f.requireIsFile(); err != nil {
		return 0, err
	}
	if nbytes < 0 {
		return 0, errs.New(errs.WrongParameters, "negative write length")
	}

	prefs := f.res.Preferences()
	if prefs.TransactionalWrite {
		return f.writeTransactional(src, nbytes, obs, prefs)
	}
	return f.writeNonTransactional(src, nbytes, obs, prefs)
}

// writeNonTransactional implements spec.md §4.5's non-transactional mode:
// free every existing stream, allocate (which may re-adopt them, since
// the allocator takes any free stream in the container, largest first),
// then write in place, persisting each stream's `used` as it is
// filled so a mid-write abort leaves the store exactly as consistent as
// the bytes actually flushed.
func (f *File) writeNonTransactional(src io.Reader, nbytes int64, obs progress.Observer, prefs Preferences) (int64, error) {
	q := f.res.Metastore().Q()

	if err := stream.FreeAllOfFile(q, f.id); err != nil {
		return 0, err
	}

	allocator := stream.New(q, f.res.Payload(), prefs.ClusterLevel)
	acquired, err := allocator.Allocate(f.id, nbytes)
	if err != nil {
		return 0, err
	}

	written, writeErr := f.fillStreams(q, acquired, src, nbytes, obs)
	if writeErr != nil {
		return written, writeErr
	}

	now := f.res.Now().Unix()
	if err := metastore.UpdateModified(q, f.id, now); err != nil {
		return written, err
	}
	return written, nil
}

// writeTransactional implements spec.md §4.5's transactional mode: the
// file's live streams are left untouched while new capacity is allocated
// and filled inside a savepoint; only on full success are the old live
// streams freed and the savepoint released, so any failure rolls back to
// byte-for-byte pre-write content.
func (f *File) writeTransactional(src io.Reader, nbytes int64, obs progress.Observer, prefs Preferences) (int64, error) {
	sp, err := f.res.Metastore().BeginSavepoint()
	if err != nil {
		return 0, err
	}
	defer sp.Rollback()

	q := sp.Tx()

	existing, err := metastore.StreamsOfFile(q, f.id)
	if err != nil {
		return 0, err
	}
	var previouslyLive []metastore.FileStreamRow
	for _, s := range existing {
		if s.Used > 0 {
			previouslyLive = append(previouslyLive, s)
		}
	}

	allocator := stream.New(q, f.res.Payload(), prefs.ClusterLevel)
	acquired, err := allocator.Allocate(f.id, nbytes)
	if err != nil {
		return 0, err
	}

	written, writeErr := f.fillStreams(q, acquired, src, nbytes, obs)
	if writeErr != nil {
		// sp.Rollback() via defer discards every metadata change made
		// above; the payload bytes already flushed become unreachable
		// dead space, per spec.md §4.5 transactional-mode failure semantics.
		return 0, writeErr
	}

	for _, s := range previouslyLive {
		if err := metastore.FreeStream(q, s.ID); err != nil {
			return 0, err
		}
	}

	now := f.res.Now().Unix()
	if err := metastore.UpdateModified(q, f.id, now); err != nil {
		return 0, err
	}

	if err := sp.Release(); err != nil {
		return 0, err
	}
	return written, nil
}

// fillStreams writes up to nbytes read from src into streams in order,
// persisting each stream's used count as it is filled, and reporting
// progress at least once per cluster-sized chunk.
func (f *File) fillStreams(q metastore.Queryer, streams []metastore.FileStreamRow, src io.Reader, nbytes int64, obs progress.Observer) (int64, error) {
	reporter := progress.New(obs)
	limited := io.LimitReader(src, nbytes)

	var written int64
	buf := make([]byte, readWriteChunk)

streamLoop:
	for _, s := range streams {
		if written >= nbytes {
			break
		}
		capacity := s.Size
		var usedInStream int64

		for usedInStream < capacity && written < nbytes {
			chunkLen := capacity - usedInStream
			if chunkLen > int64(len(buf)) {
				chunkLen = int64(len(buf))
			}
			if remaining := nbytes - written; chunkLen > remaining {
				chunkLen = remaining
			}

			n, err := io.ReadFull(limited, buf[:chunkLen])
			if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return written, errs.Wrap(errs.CantRead, "read from write source", err)
			}
			if n == 0 {
				break streamLoop
			}

			if err := f.res.Payload().WriteAt(s.Start+usedInStream, buf[:n]); err != nil {
				return written, err
			}
			usedInStream += int64(n)
			written += int64(n)

			if err := metastore.SetStreamUsed(q, s.ID, usedInStream); err != nil {
				return written, err
			}

			if abErr := reporter.Progress(float64(written) / float64(maxInt64(nbytes, 1))); abErr != nil {
				return written, abErr
			}
			if n < int(chunkLen) {
				break
			}
		}
	}

	return written, nil
}

// Clear frees every stream of the file in place (used = 0) and brings the
// file's logical size to 0. Streams remain owned by the file (rather than
// being disowned/deleted) until an allocation adopts them; being free,
// they can be adopted by a later Write of this file or of any other file.
func (f *File) Clear() error {
	if err := f.res.CheckAlive(); err != nil {
		return err
	}
	if err := f.requireIsFile(); err != nil {
		return err
	}
	q := f.res.Metastore().Q()
	if err := stream.FreeAllOfFile(q, f.id); err != nil {
		return err
	}
	now := f.res.Now().Unix()
	return metastore.UpdateModified(q, f.id, now)
}

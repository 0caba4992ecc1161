// Package ringbuffer provides a lock-free single-producer single-consumer
// ring buffer generic over element type, used for the float32 sample queue
// between the decode thread and the device thread.
package ringbuffer

import (
	"sync/atomic"

	"github.com/drgolem/audioengine/pkg/types"
)

// Re-exported for callers that only deal in ring buffer errors.
var (
	ErrInsufficientSpace = types.ErrInsufficientSpace
	ErrInsufficientData  = types.ErrInsufficientData
)

// Ring is a lock-free SPSC ring buffer holding elements of type T.
//
//   - Write and WriteAvailable must only be called by the producer goroutine.
//   - Read, ReadOne, and Drain must only be called by the consumer goroutine.
type Ring[T any] struct {
	buffer   []T
	size     uint64 // power of 2
	mask     uint64
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

// New creates a ring buffer able to hold at least size elements. size is
// rounded up to the next power of 2.
func New[T any](size uint64) *Ring[T] {
	size = nextPowerOf2(size)
	return &Ring[T]{
		buffer: make([]T, size),
		size:   size,
		mask:   size - 1,
	}
}

// Write copies all of data into the ring buffer or, if there isn't enough
// free space, writes nothing and returns ErrInsufficientSpace.
func (r *Ring[T]) Write(data []T) (int, error) {
	dataLen := uint64(len(data))
	if dataLen == 0 {
		return 0, nil
	}

	available := r.AvailableWrite()
	if dataLen > available {
		return 0, ErrInsufficientSpace
	}

	writePos := r.writePos.Load()
	start := writePos & r.mask
	end := (writePos + dataLen) & r.mask

	if end > start {
		copy(r.buffer[start:end], data)
	} else {
		firstChunk := r.size - start
		copy(r.buffer[start:], data[:firstChunk])
		copy(r.buffer[:end], data[firstChunk:])
	}

	r.writePos.Store(writePos + dataLen)
	return int(dataLen), nil
}

// WriteAvailable writes as much of data as fits without blocking or
// erroring, returning the number of elements actually written. Used by the
// sink, which must split a chunk across a full/not-full boundary.
func (r *Ring[T]) WriteAvailable(data []T) int {
	available := r.AvailableWrite()
	toWrite := min(uint64(len(data)), available)
	if toWrite == 0 {
		return 0
	}
	n, err := r.Write(data[:toWrite])
	if err != nil {
		return 0
	}
	return n
}

// Read copies up to len(data) elements out of the ring buffer into data. If
// the buffer is empty it returns (0, ErrInsufficientData); otherwise it
// returns whatever is available, up to len(data), without error.
func (r *Ring[T]) Read(data []T) (int, error) {
	dataLen := uint64(len(data))
	if dataLen == 0 {
		return 0, nil
	}

	available := r.AvailableRead()
	if available == 0 {
		return 0, ErrInsufficientData
	}

	toRead := min(dataLen, available)
	readPos := r.readPos.Load()
	start := readPos & r.mask
	end := (readPos + toRead) & r.mask

	if end > start {
		copy(data[:toRead], r.buffer[start:end])
	} else {
		firstChunk := r.size - start
		copy(data[:firstChunk], r.buffer[start:])
		copy(data[firstChunk:toRead], r.buffer[:end])
	}

	r.readPos.Store(readPos + toRead)
	return int(toRead), nil
}

// ReadOne pops a single element. ok is false if the buffer was empty.
func (r *Ring[T]) ReadOne() (value T, ok bool) {
	available := r.AvailableRead()
	if available == 0 {
		return value, false
	}
	readPos := r.readPos.Load()
	value = r.buffer[readPos&r.mask]
	r.readPos.Store(readPos + 1)
	return value, true
}

// AvailableWrite returns the number of free slots.
func (r *Ring[T]) AvailableWrite() uint64 {
	return r.size - (r.writePos.Load() - r.readPos.Load())
}

// AvailableRead returns the number of elements ready to read.
func (r *Ring[T]) AvailableRead() uint64 {
	return r.writePos.Load() - r.readPos.Load()
}

// Size returns the buffer's total capacity.
func (r *Ring[T]) Size() uint64 {
	return r.size
}

// IsFull reports whether the buffer currently has no free slots.
func (r *Ring[T]) IsFull() bool {
	return r.AvailableWrite() == 0
}

// IsEmpty reports whether the buffer currently holds no elements.
func (r *Ring[T]) IsEmpty() bool {
	return r.AvailableRead() == 0
}

// Drain discards all buffered elements, used for the cancel-flush path:
// the device callback calls this to clear samples belonging to a track
// that was just skipped.
func (r *Ring[T]) Drain() {
	r.readPos.Store(r.writePos.Load())
}

// Reset clears both positions, returning the buffer to empty.
func (r *Ring[T]) Reset() {
	r.readPos.Store(0)
	r.writePos.Store(0)
}

func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

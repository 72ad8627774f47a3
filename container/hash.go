package container

import (
	"hash/fnv"
	"unsafe"
)

// Hasher maps a key to a 64-bit hash.
type Hasher[K comparable] func(K) uint64

// Scalar is the set of fixed-size key types whose raw bytes can be hashed
// directly.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// HashBytes returns the 64-bit FNV-1a hash of b.
func HashBytes(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

// HashString returns the 64-bit FNV-1a hash of the bytes of s.
func HashString(s string) uint64 {
	return HashBytes(unsafe.Slice(unsafe.StringData(s), len(s)))
}

// HashScalar returns the 64-bit FNV-1a hash of the in-memory representation
// of k.
func HashScalar[K Scalar](k K) uint64 {
	return HashBytes(unsafe.Slice((*byte)(unsafe.Pointer(&k)), unsafe.Sizeof(k)))
}

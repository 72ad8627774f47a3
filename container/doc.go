// Package container provides the single-owner storage types the ECS is built
// on: a growable array, a pointer-stable bucket array, a chained hash map and
// two sparse-set variants.
//
// None of the types are safe for concurrent use. Pointers returned by any
// container address its storage in place and stay valid only until the next
// structural change of that container (growth past capacity, removal, resize
// or rehash); BucketArray is the exception and keeps element addresses stable
// across growth.
package container

// Package qsbr implements quiescent-state based reclamation for a
// single writer and any number of readers.
//
// The writer owns a global epoch that it advances as it replaces
// shared values. Each reader periodically records the epoch at which
// it held no reference into shared state. Retired values queue up
// tagged with the epoch of their retirement, and the writer frees
// them once every registered reader has recorded a newer epoch, at
// which point no reader can still observe them.
//
// The package orders epochs, not payload memory: a caller publishing
// a replacement value must do so through an atomic swap so readers
// observe a consistent view of the payload itself. Retire and Collect
// belong to exactly one writer thread; that contract is documented,
// not checked.
//
// The package is dependency-free and forms the reclamation foundation
// for the rest of the repository.
package qsbr

// Package memory provides the object-reuse primitive under the
// reclamation demo: a fixed-capacity free stack that keeps payload
// values out of the garbage collector's way in steady state.
//
// The package is dependency-free. Reclamation itself lives in qsbr;
// payload types hand themselves back to their Pool from the Free hook
// the reclaimer invokes.
package memory

// Package soak runs the reclamation engine under sustained load: one
// pinned writer swapping random table slots, retiring and collecting,
// a set of readers walking the table between quiescent states, and a
// sampler moving periodic engine figures through a ring to the
// configured sinks.
package soak

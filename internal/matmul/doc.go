// Package matmul computes dense matrix products over a message-passing
// process group.
//
// Rank 0 is the coordinator: it owns the output buffer, hands out one output
// cell (a linear index into C) per message, and stops the group once every
// cell has come back. Every other rank is a worker that answers each
// assignment with the corresponding row-by-column dot product. Work is
// dispatched on demand: a worker receives its next index only after
// returning the previous one, so faster workers take a larger share.
package matmul

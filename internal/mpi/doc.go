// Package mpi provides the message-passing substrate consumed by the matrix
// product protocol: a fixed group of ranks exchanging tagged point-to-point
// messages, with blocking receives and non-blocking receives that are polled
// for completion.
//
// The in-process implementation runs every rank as a goroutine. Ranks share
// no state; payloads travel as values through per-rank mailboxes. Delivery is
// reliable and, between any pair of ranks, ordered (a later message from the
// same sender with the same tag is never matched before an earlier one).
package mpi

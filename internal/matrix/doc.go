// Package matrix holds the dense row-major operands handed to the
// distributed product, along with generators, a JSON loader and an
// independent reference product used for verification.
package matrix

// Package orchestration runs one distributed product over an in-process
// group and analyses the outcome. It decouples the computation from
// presentation via the ProgressReporter and ResultPresenter interfaces.
package orchestration

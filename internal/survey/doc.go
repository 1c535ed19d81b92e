// Package survey drives the survey of institutions.
//
// A Surveyor runs one institution through a pipeline of steps:
//
//	homepage -> discover -> subpages -> scan -> record
//
// Fetch failures are recorded in the institution's record and never stop
// the pipeline; an institution whose homepage cannot be fetched still
// yields a record, marked unreachable, with every category uncovered.
//
// A Runner surveys a list of institutions, one at a time by default or
// with a bounded number of workers, and returns exactly one record per
// institution in configuration order. Cancellation is observed only
// between institutions: an institution that has started is always
// finished, and institutions that never started are recorded as skipped.
package survey

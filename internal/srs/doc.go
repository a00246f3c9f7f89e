// Package srs implements the review scheduling core: a fixed table of
// exponentially growing intervals and the state machine that moves
// question/answer items through it.
//
// An item's Step indexes the table. A correct review advances the step
// (saturating at the last entry), an incorrect review resets it to zero,
// and either way the item is rescheduled to now plus the interval at its
// new step. Entry zero of every table is a zero duration, so new and
// lapsed items are due immediately.
//
// The Scheduler is the single mutation path for review state and is not
// safe for concurrent use; one interactive session drives one scheduler.
package srs

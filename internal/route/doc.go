// Package route models a synthetic route as a directed acyclic graph of
// synthesis steps.
//
// Every step produces exactly one compound from one or more inputs. The graph
// keeps an index from compound to its producing step, which enforces the
// single-producer rule at construction time: a second step declaring the same
// output is rejected with ErrDuplicateProducer. A compound with no producing
// step is a raw material and must be priced by the material registry.
//
// Cycles are rejected eagerly. AddStep refuses a step whose output is already
// an ancestor of one of its inputs, and Validate re-checks the full graph with
// a depth-first search before any costing run.
//
// The graph is built once by the caller and then used read-only by any
// number of concurrent costing runs.
package route

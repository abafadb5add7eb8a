// Package costing is the cost-aggregation engine.
//
// Given a route graph, a material registry, a target compound and a batch
// quantity, Calculate resolves how much of every compound feeding the target
// is consumed and what each one costs per unit mass:
//
//   - Mass ratios. For each step, the mass of an input needed per unit mass
//     of output is its base ratio divided by the step yield. Reagent base
//     ratios are the equivalents (mass basis) or equivalents scaled by molar
//     masses (molar basis). Solvents are charged by volume relative to a
//     reagent of the same step, less the recycled fraction.
//
//   - Demand multipliers. Walking the steps in reverse topological order, the
//     demand of every input is increased by the demand of the step output
//     times the mass ratio. A compound consumed by several steps accumulates
//     the contribution of each, so convergent routes are neither double- nor
//     under-counted. The walk is a single pass over a table indexed by
//     compound.
//
//   - Unit costs. Walking forward, a raw material costs its registry price and
//     a produced compound costs (sum of base ratio x input cost + fixed cost)
//     divided by the yield.
//
// The target unit cost already contains the rolled-up contribution of every
// ancestor. Per-compound contributions in the Result are a breakdown and must
// not be summed into the total.
//
// Calculate is a pure function of its inputs and never mutates the graph or
// the registry, so any number of runs may share them. Scanner builds on this
// to evaluate what-if overrides concurrently.
package costing

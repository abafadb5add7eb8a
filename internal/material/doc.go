// Package material holds the catalog of compounds known to a costing run.
//
// The Registry is the leaf data source for the cost aggregator: it answers
// "what does one unit of this raw material cost?" and carries the physical
// constants (molar mass, density) that the aggregator needs to convert molar
// equivalents and solvent volumes into mass ratios.
//
// A Registry is owned by the caller. It is populated by loaders (route files,
// price lists, price stores) and then treated as read-only while costing runs
// execute against it. Concurrent read-only use is safe.
package material

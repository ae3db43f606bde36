// Package core defines the domain model for the journal enrichment
// pipeline: processing jobs, entry records, owner profiles, capability
// contexts, and the pure capability evaluator.
//
// Nothing in this package touches storage or the network. Capability
// evaluation in particular is a pure function so it is unit-testable
// without any infrastructure.
package core

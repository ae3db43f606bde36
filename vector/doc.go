// Package vector defines the owner-namespaced vector index the pipeline
// writes embedded chunks into and the retrieval service reads from.
//
// The vector/badger sub-package provides the BadgerDB-backed
// implementation used in production and tests.
package vector

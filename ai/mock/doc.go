// Package mock provides test doubles for the ai interfaces.
//
// The doubles default to deterministic behavior (hash-derived embedding
// vectors, canned completions, a fixed transcript) and support behavior
// injection through exported function fields plus call-count assertions.
package mock

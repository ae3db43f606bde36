// Package pipeline implements the background enrichment of journal
// entries.
//
// A Worker takes one processing job at a time through the full flow:
//   - Validate the payload and resolve the owner's capability context
//   - Normalize content, transcribing voice entries when permitted
//   - Generate summary, tags, and mood as isolated concurrent sub-tasks
//   - Chunk and embed the text into the owner's vector namespace
//   - Persist everything in a single terminal write
//
// Every enrichment product is capability-gated; a denied or failed step
// leaves its field null and never fails the job. Processing is idempotent,
// so at-least-once queue delivery is safe.
package pipeline

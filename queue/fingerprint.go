package queue

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"

	"github.com/LakGar/Lumina-sub000/core"
)

// fingerprint produces a deterministic 64-bit digest of a job's payload,
// used to absorb duplicate enqueues of the same work while it is pending.
func fingerprint(job *core.ProcessingJob) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", job.OwnerID, job.EntryID, job.RawText, job.VoiceAssetRef)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

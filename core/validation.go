// Copyright 2025 Lumina Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateProcessingJob validates a job payload before processing.
//
// Validation rules:
//   - EntryID must not be empty
//   - OwnerID must not be empty
//
// NOT validated:
//   - RawText (an empty text entry is legal; voice-only entries carry
//     their content in the voice asset)
//   - VoiceAssetRef (optional)
func ValidateProcessingJob(job *ProcessingJob) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidJob)
	}

	if job.EntryID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrEmptyEntryID)
	}

	if job.OwnerID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrEmptyOwnerID)
	}

	return nil
}

// ValidateTier validates that a tier has a recognized value.
func ValidateTier(tier Tier) error {
	switch tier {
	case TierFree, TierPro, TierPremium:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
}

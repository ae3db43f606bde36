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

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied indicates a capability rule denied the feature.
	// Non-retryable; surfaced to the caller.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidJob indicates a malformed processing job payload.
	// Non-retryable; the job is marked failed without redelivery.
	ErrInvalidJob = errors.New("invalid processing job")

	// ErrEmptyEntryID indicates the EntryID field is empty.
	ErrEmptyEntryID = errors.New("entry id cannot be empty")

	// ErrEmptyOwnerID indicates the OwnerID field is empty.
	ErrEmptyOwnerID = errors.New("owner id cannot be empty")

	// ErrInvalidTier indicates an unrecognized subscription tier.
	ErrInvalidTier = errors.New("invalid tier")
)

// AccessDeniedMessage is the fixed user-facing message attached to every
// capability denial, regardless of which feature was denied.
const AccessDeniedMessage = "This feature is not available on your current plan."

// AccessDeniedError is returned when a required feature is denied for an
// owner. It satisfies errors.Is(err, ErrAccessDenied).
type AccessDeniedError struct {
	Feature Feature
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Feature, AccessDeniedMessage)
}

// Is reports ErrAccessDenied as a match so callers can classify without
// unwrapping the concrete type.
func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

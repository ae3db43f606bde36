/*
 * Copyright 2025 Lumina Systems
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyID is returned when a record or owner ID is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrNilRecord is returned when a nil record is passed to a write.
	ErrNilRecord = errors.New("record cannot be nil")

	// ErrSerializationFailed is returned when a record cannot be encoded
	// or decoded.
	ErrSerializationFailed = errors.New("serialization failed")
)

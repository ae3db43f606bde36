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


package vector

import "errors"

var (
	// ErrEmptyNamespace indicates an operation was attempted without a namespace.
	ErrEmptyNamespace = errors.New("namespace required")

	// ErrEmptyRecordID indicates a record without an ID was upserted.
	ErrEmptyRecordID = errors.New("record id required")

	// ErrSerializationFailed indicates a record could not be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")
)

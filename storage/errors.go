// Copyright 2025 Poiesic Systems
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


package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrLocked indicates that another live store owns the storage root.
	ErrLocked = errors.New("storage root is locked")

	// ErrCorrupt indicates that a persisted file exists but cannot be parsed.
	// Corrupt files are never repaired automatically.
	ErrCorrupt = errors.New("corrupt storage file")

	// ErrNotDirectory indicates that a path expected to be a directory is
	// occupied by something else.
	ErrNotDirectory = errors.New("not a directory")

	// ErrStorageClosed indicates that the store has been closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)

// LockedError describes a storage root owned by another store.
type LockedError struct {
	Root     string
	LockPath string
	// Holder is the content of the lock file, if it could be read.
	Holder string
}

func (e *LockedError) Error() string {
	msg := fmt.Sprintf("cannot open store at %s: it is locked", e.Root)
	if e.Holder != "" {
		msg += " by " + e.Holder
	}
	return msg + fmt.Sprintf(". There is probably another instance running; if not, delete %s and retry", e.LockPath)
}

func (e *LockedError) Unwrap() error {
	return ErrLocked
}

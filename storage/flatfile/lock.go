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


package flatfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// Lock marks a storage root as owned by this process.
// The lock is the existence of a sentinel file; it is created with
// O_CREATE|O_EXCL so two processes can never both succeed.
type Lock struct {
	path     string
	logger   *slog.Logger
	released bool
}

// tryLock attempts to create the sentinel file at path.
// Returns nil, nil if the file already exists, i.e. the root is locked.
func tryLock(path string, logger *slog.Logger) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("create lock file %s: %w", path, err)
	}

	// The content only helps a human find the owner of a stale lock.
	host, _ := os.Hostname()
	if _, err := fmt.Fprintf(f, "pid %d on %s\n", os.Getpid(), host); err != nil {
		logger.Warn("could not write lock owner", "path", path, "err", err)
	}
	if err := f.Close(); err != nil {
		logger.Warn("could not close lock file", "path", path, "err", err)
	}

	return &Lock{path: path, logger: logger}, nil
}

// lockHolder returns the owner information stored in the lock file at path.
func lockHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Path returns the sentinel file path.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the sentinel file. It is safe to call more than once.
// A failed removal is logged and otherwise ignored: release runs during
// teardown and must not mask the outcome of the work it guarded.
func (l *Lock) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	if err := os.Remove(l.path); err != nil {
		l.logger.Warn("could not delete lock file", "path", l.path, "err", err)
		return
	}
	l.logger.Debug("released lock", "path", l.path)
}

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
	"os"

	"github.com/LukasKalbertodt/grakawa/storage"
)

// OpenTemp opens a store in a fresh temporary directory for testing.
// The returned cleanup function closes the store and removes the directory.
func OpenTemp(opts ...Option) (storage.Store, func(), error) {
	dir, err := os.MkdirTemp("", "grakawa-store-*")
	if err != nil {
		return nil, nil, err
	}

	store, err := Open(dir, opts...)
	if err != nil {
		os.RemoveAll(dir)
		return nil, nil, err
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(dir)
	}
	return store, cleanup, nil
}

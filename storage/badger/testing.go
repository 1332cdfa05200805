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


package badger

// Repositories bundles all repositories sharing one backend.
type Repositories struct {
	Attendees *AttendeeRepository
	Offerings *OfferingRepository
	Requests  *RequestRepository
	Matches   *MatchRepository

	backend *Backend
}

// NewRepositories opens an on-disk database and creates all repositories.
// Caller must Close when done.
func NewRepositories(path string) (*Repositories, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newRepositories(backend), nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close when done.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newRepositories(backend), nil
}

func newRepositories(backend *Backend) *Repositories {
	return &Repositories{
		Attendees: NewAttendeeRepository(backend),
		Offerings: NewOfferingRepository(backend),
		Requests:  NewRequestRepository(backend),
		Matches:   NewMatchRepository(backend),
		backend:   backend,
	}
}

// Backend exposes the shared backend, mainly for tests.
func (r *Repositories) Backend() *Backend {
	return r.backend
}

// Close closes the shared backend.
func (r *Repositories) Close() error {
	return r.backend.Close()
}

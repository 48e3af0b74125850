// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-biovault.
//
// go-biovault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package vault

import (
	"errors"
	"net/url"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-biovault/pkg/storage"
)

const recordPrefix = "records/"

// RecordStore persists secret record envelopes through a storage backend,
// keyed by (domain, name). Writes go through the backend atomically, so a
// re-stored secret is observed either entirely old or entirely new.
type RecordStore struct {
	backend storage.Backend

	// mu serializes read-modify-write sequences on the record namespace.
	mu sync.Mutex
}

// NewRecordStore creates a record store over the given backend.
func NewRecordStore(backend storage.Backend) *RecordStore {
	return &RecordStore{backend: backend}
}

// Put stores a record, overwriting any existing record with the same
// domain and name.
func (s *RecordStore) Put(r *SecretRecord) error {
	if err := Validate(r); err != nil {
		return err
	}
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Put(recordKey(r.Domain, r.Name), data, storage.DefaultOptions())
}

// Get retrieves the record for (domain, name).
// Returns ErrRecordNotFound if no such record exists.
func (s *RecordStore) Get(domain, name string) (*SecretRecord, error) {
	s.mu.Lock()
	data, err := s.backend.Get(recordKey(domain, name))
	s.mu.Unlock()

	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Exists reports whether a record exists for (domain, name). The envelope
// is not opened, so a record that can no longer be decrypted still counts
// as present.
func (s *RecordStore) Exists(domain, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Exists(recordKey(domain, name))
}

// Delete removes the record for (domain, name) and reports whether a
// record existed. Deleting an absent record is not an error.
func (s *RecordStore) Delete(domain, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.backend.Delete(recordKey(domain, name))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListDomain returns the sorted names of all records in a domain.
func (s *RecordStore) ListDomain(domain string) ([]string, error) {
	s.mu.Lock()
	keys, err := s.backend.List(domainPrefix(domain))
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name, err := url.PathUnescape(key[len(domainPrefix(domain)):])
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CountDomain returns the number of records in a domain.
func (s *RecordStore) CountDomain(domain string) (int, error) {
	names, err := s.ListDomain(domain)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// recordKey composes the storage key for (domain, name). Both components
// are escaped so a domain or name containing a path separator cannot
// collide with another record.
func recordKey(domain, name string) string {
	return domainPrefix(domain) + url.PathEscape(name)
}

func domainPrefix(domain string) string {
	return recordPrefix + url.PathEscape(domain) + "/"
}

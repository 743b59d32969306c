// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"errors"
	"fmt"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
)

var ErrNoRecord = errors.New("no filter record")

// Record is what survives a load: which bank is live and how many rules
// each bank holds.
type Record struct {
	Name       string
	Codec      string
	Generation uuid.UUID
	Bank       int
	Database   uint8
	Rules      [2]int
	Loaded     time.Time
}

func (r *Record) String() string {
	return fmt.Sprintf("%s: %s generation %v bank %d db %d rules %d/%d loaded %s",
		r.Name, r.Codec, r.Generation, r.Bank, r.Database, r.Rules[0], r.Rules[1],
		r.Loaded.Format(time.RFC3339))
}

// Store keeps one record per filter name. Get returns ErrNoRecord for a
// name never stored or deleted.
type Store interface {
	Get(name string) (*Record, error)
	Put(r *Record) error
	Delete(name string) error
}

type MemStore struct {
	mu sync.Mutex
	m  map[string]Record
}

func (s *MemStore) Get(name string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoRecord)
	}
	return &r, nil
}

func (s *MemStore) Put(r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string]Record)
	}
	s.m[r.Name] = *r
	return nil
}

func (s *MemStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, name)
	return nil
}

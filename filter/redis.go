// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"
	"time"

	"github.com/garyburd/redigo/redis"
	uuid "github.com/satori/go.uuid"
)

const (
	DefaultRedisPrefix = "nse.filter."
	redisTimeout       = 500 * time.Millisecond
)

// RedisStore keeps each record as a hash named Prefix + record name.
type RedisStore struct {
	Network, Address string
	Prefix           string
	// Dial overrides Network and Address.
	Dial func() (redis.Conn, error)
}

// NewRedisStore returns a store at address, a unix socket path when it
// begins with '/'.
func NewRedisStore(address string) *RedisStore {
	network := "tcp"
	if len(address) > 0 && address[0] == '/' {
		network = "unix"
	}
	return &RedisStore{Network: network, Address: address}
}

func (s *RedisStore) connect() (redis.Conn, error) {
	if s.Dial != nil {
		return s.Dial()
	}
	return redis.Dial(s.Network, s.Address,
		redis.DialConnectTimeout(redisTimeout),
		redis.DialReadTimeout(redisTimeout),
		redis.DialWriteTimeout(redisTimeout))
}

func (s *RedisStore) key(name string) string {
	if s.Prefix == "" {
		return DefaultRedisPrefix + name
	}
	return s.Prefix + name
}

// hash is the flattened form of Record.
type hash struct {
	Name       string `redis:"name"`
	Codec      string `redis:"codec"`
	Generation string `redis:"generation"`
	Bank       int    `redis:"bank"`
	Database   int    `redis:"database"`
	Rules0     int    `redis:"rules0"`
	Rules1     int    `redis:"rules1"`
	Loaded     int64  `redis:"loaded"`
}

func toHash(r *Record) *hash {
	return &hash{
		Name:       r.Name,
		Codec:      r.Codec,
		Generation: r.Generation.String(),
		Bank:       r.Bank,
		Database:   int(r.Database),
		Rules0:     r.Rules[0],
		Rules1:     r.Rules[1],
		Loaded:     r.Loaded.UnixNano(),
	}
}

func (h *hash) record() (*Record, error) {
	g, err := uuid.FromString(h.Generation)
	if err != nil {
		return nil, fmt.Errorf("%s: generation: %w", h.Name, err)
	}
	return &Record{
		Name:       h.Name,
		Codec:      h.Codec,
		Generation: g,
		Bank:       h.Bank,
		Database:   uint8(h.Database),
		Rules:      [2]int{h.Rules0, h.Rules1},
		Loaded:     time.Unix(0, h.Loaded),
	}, nil
}

// scanRecord decodes an HGETALL reply.
func scanRecord(name string, v []interface{}) (*Record, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoRecord)
	}
	var h hash
	if err := redis.ScanStruct(v, &h); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return h.record()
}

func (s *RedisStore) Get(name string) (*Record, error) {
	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	v, err := redis.Values(conn.Do("HGETALL", s.key(name)))
	if err != nil {
		return nil, err
	}
	return scanRecord(name, v)
}

func (s *RedisStore) Put(r *Record) error {
	conn, err := s.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Do("HMSET", redis.Args{}.Add(s.key(r.Name)).AddFlat(toHash(r))...)
	return err
}

func (s *RedisStore) Delete(name string) error {
	conn, err := s.connect()
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Do("DEL", s.key(name))
	return err
}

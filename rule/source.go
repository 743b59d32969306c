// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rule

import "io"

// Source produces the rules of one load in order. Next returns io.EOF after
// the last rule; a source is not restartable.
type Source interface {
	Next() (Rule, error)
}

type slice struct {
	rules []Rule
}

// Slice returns a Source over rules.
func Slice(rules ...Rule) Source { return &slice{rules} }

func (s *slice) Next() (r Rule, err error) {
	if len(s.rules) == 0 {
		return nil, io.EOF
	}
	r, s.rules = s.rules[0], s.rules[1:]
	return
}

// SourceFunc adapts a producer function, such as a rule file parser, to a
// Source.
type SourceFunc func() (Rule, error)

func (f SourceFunc) Next() (Rule, error) { return f() }

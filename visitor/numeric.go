/*
 * Copyright 2025 The RuleGo Authors.
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

package visitor

import (
	"fmt"

	"github.com/rulego/featureagg/utils/cast"
)

// numberKind is the closed set of arithmetics a running sum can use. It is
// picked from the first value seen and never changes until reset.
type numberKind int

const (
	kindInteger numberKind = iota + 1
	kindLong
	kindFloat
	kindDouble
)

func kindOf(v interface{}) numberKind {
	switch cast.ClassOf(v) {
	case cast.ClassInteger:
		return kindInteger
	case cast.ClassLong:
		return kindLong
	case cast.ClassFloat:
		return kindFloat
	default:
		return kindDouble
	}
}

func (k numberKind) class() cast.Class {
	switch k {
	case kindInteger:
		return cast.ClassInteger
	case kindLong:
		return cast.ClassLong
	case kindFloat:
		return cast.ClassFloat
	default:
		return cast.ClassDouble
	}
}

// sumState is a running total tagged with its arithmetic.
type sumState struct {
	kind numberKind
	i    int
	l    int64
	f    float32
	d    float64
}

func newSumState(kind numberKind) *sumState {
	return &sumState{kind: kind}
}

func (s *sumState) add(v interface{}) error {
	if !cast.IsNumber(v) {
		return fmt.Errorf("cannot add %T value %v to a numeric sum: %w", v, v, cast.ErrUnsupportedType)
	}
	c, err := cast.Convert(v, s.kind.class())
	if err != nil {
		return err
	}
	switch s.kind {
	case kindInteger:
		s.i += c.(int)
	case kindLong:
		s.l += c.(int64)
	case kindFloat:
		s.f += c.(float32)
	default:
		s.d += c.(float64)
	}
	return nil
}

func (s *sumState) value() interface{} {
	switch s.kind {
	case kindInteger:
		return s.i
	case kindLong:
		return s.l
	case kindFloat:
		return s.f
	default:
		return s.d
	}
}

func (s *sumState) float() float64 {
	switch s.kind {
	case kindInteger:
		return float64(s.i)
	case kindLong:
		return float64(s.l)
	case kindFloat:
		return float64(s.f)
	default:
		return s.d
	}
}

// sumStateOf builds a state holding v as its total.
func sumStateOf(v interface{}) (*sumState, error) {
	s := newSumState(kindOf(v))
	if err := s.add(v); err != nil {
		return nil, err
	}
	return s, nil
}

// averageState tracks a typed sum and a count.
type averageState struct {
	sum   *sumState
	count int
}

func newAverageState(count int, sum interface{}) (*averageState, error) {
	s, err := sumStateOf(sum)
	if err != nil {
		return nil, err
	}
	return &averageState{sum: s, count: count}, nil
}

func (a *averageState) add(v interface{}) error {
	if err := a.sum.add(v); err != nil {
		return err
	}
	a.count++
	return nil
}

// value divides the typed sum by the count. Integer and Long sums average
// to float64, Float sums stay float32.
func (a *averageState) value() interface{} {
	if a.count == 0 {
		return nil
	}
	switch a.sum.kind {
	case kindFloat:
		return a.sum.f / float32(a.count)
	case kindDouble:
		return a.sum.d / float64(a.count)
	default:
		return a.sum.float() / float64(a.count)
	}
}

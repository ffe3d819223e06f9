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
	"math"
	"time"
	"unicode/utf8"

	"github.com/rulego/featureagg/expr"
	"github.com/rulego/featureagg/geom"
	"github.com/rulego/featureagg/utils/cast"
)

// nearestMatcher accumulates candidates for one kind of target value.
type nearestMatcher interface {
	// add folds a candidate and reports whether it matches exactly.
	add(value interface{}) (bool, error)
	nearest() interface{}
}

// NearestVisitor finds the value of an expression closest to a target. The
// matcher depends on the target: numbers, times and geometries are compared
// by distance, other comparable values by nearest above and below.
type NearestVisitor struct {
	expr    expr.Expression
	target  interface{}
	matcher nearestMatcher
	exact   bool
}

func NewNearestVisitor(e expr.Expression, target interface{}) *NearestVisitor {
	v := &NearestVisitor{expr: e, target: target}
	v.Reset()
	return v
}

func newNearestMatcher(target interface{}) nearestMatcher {
	switch t := target.(type) {
	case time.Time:
		return &distanceMatcher{distance: func(v interface{}) (float64, error) {
			tv, ok := v.(time.Time)
			if !ok {
				return 0, NewError(ErrorKindNonComparableInput, "cannot measure %T against a time", v)
			}
			return math.Abs(float64(tv.Sub(t).Milliseconds())), nil
		}}
	case geom.Geometry:
		return &distanceMatcher{distance: func(v interface{}) (float64, error) {
			g, ok := v.(geom.Geometry)
			if !ok {
				return 0, NewError(ErrorKindNonComparableInput, "cannot measure %T against a geometry", v)
			}
			return g.Distance(t), nil
		}}
	}
	if f, ok := cast.ToFloat(target); ok {
		return &distanceMatcher{distance: func(v interface{}) (float64, error) {
			x, ok := cast.ToFloat(v)
			if !ok {
				return 0, NewError(ErrorKindNonComparableInput, "cannot measure %T against a number", v)
			}
			return math.Abs(x - f), nil
		}}
	}
	return &orderMatcher{target: target}
}

func (v *NearestVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

func (v *NearestVisitor) Visit(record interface{}) error {
	if v.exact {
		return nil
	}
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	exact, err := v.matcher.add(value)
	if err != nil {
		return err
	}
	v.exact = exact
	return nil
}

// Nearest returns the closest value found, nil when nothing was visited.
func (v *NearestVisitor) Nearest() interface{} {
	return v.matcher.nearest()
}

func (v *NearestVisitor) Result() CalcResult {
	n := v.matcher.nearest()
	if n == nil {
		return NullResult
	}
	return &NearestResult{value: n}
}

func (v *NearestVisitor) Reset() {
	v.matcher = newNearestMatcher(v.target)
	v.exact = false
}

type distanceMatcher struct {
	distance func(interface{}) (float64, error)
	best     interface{}
	min      float64
}

func (m *distanceMatcher) add(value interface{}) (bool, error) {
	d, err := m.distance(value)
	if err != nil {
		return false, err
	}
	if m.best == nil || d < m.min {
		m.best = value
		m.min = d
	}
	return d == 0, nil
}

func (m *distanceMatcher) nearest() interface{} {
	return m.best
}

// orderMatcher keeps the greatest value below the target and the smallest
// value above it.
type orderMatcher struct {
	target       interface{}
	below, above interface{}
	match        interface{}
}

func (m *orderMatcher) add(value interface{}) (bool, error) {
	cmp, err := Compare(value, m.target)
	if err != nil {
		return false, err
	}
	switch {
	case cmp == 0:
		m.match = value
		return true, nil
	case cmp < 0:
		if m.below == nil {
			m.below = value
		} else if c, err := Compare(value, m.below); err != nil {
			return false, err
		} else if c > 0 {
			m.below = value
		}
	default:
		if m.above == nil {
			m.above = value
		} else if c, err := Compare(value, m.above); err != nil {
			return false, err
		} else if c < 0 {
			m.above = value
		}
	}
	return false, nil
}

func (m *orderMatcher) nearest() interface{} {
	switch {
	case m.match != nil:
		return m.match
	case m.below == nil:
		return m.above
	case m.above == nil:
		return m.below
	}
	if orderDistance(m.below, m.target) <= orderDistance(m.above, m.target) {
		return m.below
	}
	return m.above
}

// orderDistance is the magnitude of the ordering between a and b. Strings
// measure the first differing rune or, failing that, the length difference.
func orderDistance(a, b interface{}) int {
	if s, ok := a.(string); ok {
		if t, ok := b.(string); ok {
			return lexicalDistance(s, t)
		}
	}
	if c, ok := a.(Comparable); ok {
		return abs(c.CompareTo(b))
	}
	c, _ := Compare(a, b)
	return abs(c)
}

func lexicalDistance(a, b string) int {
	for len(a) > 0 && len(b) > 0 {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if ra != rb {
			return abs(int(ra) - int(rb))
		}
		a, b = a[na:], b[nb:]
	}
	return abs(utf8.RuneCountInString(a) - utf8.RuneCountInString(b))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// NearestResult holds the closest value. It merges only with NullResult.
type NearestResult struct {
	value interface{}
}

func (r *NearestResult) Value() interface{} {
	return r.value
}

func (r *NearestResult) IsCompatible(other CalcResult) bool {
	return IsNull(other)
}

func (r *NearestResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	return nil, incompatible(r, other)
}

func (r *NearestResult) String() string {
	return fmt.Sprintf("Nearest(%v)", r.value)
}

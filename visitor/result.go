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
	"reflect"
	"time"

	"github.com/rulego/featureagg/geom"
	"github.com/rulego/featureagg/utils/cast"
)

// CalcResult is the immutable, mergeable outcome of a visitor.
//
// Merge must be called only when IsCompatible holds; otherwise it fails with
// ErrIncompatibleMerge. Compatibility is not guaranteed to be symmetric.
type CalcResult interface {
	// Value returns the computed value, nil when there is none.
	Value() interface{}
	IsCompatible(other CalcResult) bool
	Merge(other CalcResult) (CalcResult, error)
}

// ArrayResult is implemented by results with a tabular rendering.
type ArrayResult interface {
	ToArray() []interface{}
}

// MapResult is implemented by results with a keyed rendering.
type MapResult interface {
	ToMap() map[string]interface{}
}

type nullResult struct{}

// NullResult is the merge identity: compatible with everything, merging it
// returns the other operand unchanged.
var NullResult CalcResult = nullResult{}

func (nullResult) Value() interface{} { return nil }

func (nullResult) IsCompatible(CalcResult) bool { return true }

func (nullResult) Merge(other CalcResult) (CalcResult, error) {
	if other == nil {
		return NullResult, nil
	}
	return other, nil
}

func (nullResult) String() string { return "NULL_RESULT" }

// IsNull reports whether r is absent or NullResult.
func IsNull(r CalcResult) bool {
	if r == nil {
		return true
	}
	_, ok := r.(nullResult)
	return ok
}

// MergeAll folds results left to right starting from NullResult.
func MergeAll(results ...CalcResult) (CalcResult, error) {
	acc := NullResult
	for _, r := range results {
		if IsNull(r) {
			continue
		}
		merged, err := acc.Merge(r)
		if err != nil {
			return nil, err
		}
		acc = merged
	}
	return acc, nil
}

func valueOf(r CalcResult) interface{} {
	if r == nil {
		return nil
	}
	return r.Value()
}

// The coercions below return ok == false when the conversion does not apply
// to the wrapped value; the accompanying value is then the zero value.

func ToInt(r CalcResult) (int, bool) {
	v, ok := toClass(r, cast.ClassInteger)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

func ToLong(r CalcResult) (int64, bool) {
	v, ok := toClass(r, cast.ClassLong)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

func ToFloat(r CalcResult) (float32, bool) {
	v, ok := toClass(r, cast.ClassFloat)
	if !ok {
		return 0, false
	}
	return v.(float32), true
}

func ToDouble(r CalcResult) (float64, bool) {
	v, ok := toClass(r, cast.ClassDouble)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

func toClass(r CalcResult, class cast.Class) (interface{}, bool) {
	v := valueOf(r)
	if !cast.IsNumber(v) {
		return nil, false
	}
	c, err := cast.Convert(v, class)
	if err != nil {
		return nil, false
	}
	return c, true
}

func ToBool(r CalcResult) (bool, bool) {
	b, ok := valueOf(r).(bool)
	return b, ok
}

func ToGeometry(r CalcResult) (geom.Geometry, bool) {
	g, ok := valueOf(r).(geom.Geometry)
	return g, ok
}

func ToEnvelope(r CalcResult) (geom.Envelope, bool) {
	e, ok := valueOf(r).(geom.Envelope)
	if !ok {
		return geom.EmptyEnvelope(), false
	}
	return e, true
}

// ToPoint returns the centroid of the wrapped geometry. ok is false when the
// result carries no geometry.
func ToPoint(r CalcResult) (geom.Point, bool) {
	g, ok := ToGeometry(r)
	if !ok || g == nil {
		return geom.Point{}, false
	}
	return g.Centroid(), true
}

func ToSet(r CalcResult) (*ValueSet, bool) {
	switch v := valueOf(r).(type) {
	case *ValueSet:
		return v.Clone(), true
	case nil:
		return nil, false
	default:
		list, ok := sliceValues(v)
		if !ok {
			return nil, false
		}
		return NewValueSet(list...), true
	}
}

func ToList(r CalcResult) ([]interface{}, bool) {
	switch v := valueOf(r).(type) {
	case *ValueSet:
		return v.Values(), true
	case nil:
		return nil, false
	default:
		return sliceValues(v)
	}
}

// ToArray prefers the tabular rendering of r and falls back to ToList.
func ToArray(r CalcResult) ([]interface{}, bool) {
	if a, ok := r.(ArrayResult); ok {
		return a.ToArray(), true
	}
	return ToList(r)
}

func ToMap(r CalcResult) (map[string]interface{}, bool) {
	if m, ok := r.(MapResult); ok {
		return m.ToMap(), true
	}
	m, ok := valueOf(r).(map[string]interface{})
	if !ok {
		return nil, false
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, true
}

func sliceValues(v interface{}) ([]interface{}, bool) {
	if list, ok := v.([]interface{}); ok {
		return append([]interface{}(nil), list...), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ValueKey renders v as a string that is equal for structurally equal values
// of the same type and different otherwise.
func ValueKey(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case time.Time:
		return fmt.Sprintf("time.Time=%q", x.UTC().Format(time.RFC3339Nano))
	}
	return fmt.Sprintf("%T=%q", v, fmt.Sprint(v))
}

// ValueSet is an insertion ordered set with structural membership.
type ValueSet struct {
	index  map[string]int
	values []interface{}
}

func NewValueSet(values ...interface{}) *ValueSet {
	s := &ValueSet{index: make(map[string]int)}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
func (s *ValueSet) Add(v interface{}) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	k := ValueKey(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.values)
	s.values = append(s.values, v)
	return true
}

func (s *ValueSet) Contains(v interface{}) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[ValueKey(v)]
	return ok
}

func (s *ValueSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Values returns a copy of the members in insertion order.
func (s *ValueSet) Values() []interface{} {
	if s == nil {
		return nil
	}
	return append([]interface{}(nil), s.values...)
}

func (s *ValueSet) Clone() *ValueSet {
	return NewValueSet(s.Values()...)
}

// Union returns a new set with the members of s followed by the new members
// of other.
func (s *ValueSet) Union(other *ValueSet) *ValueSet {
	out := s.Clone()
	for _, v := range other.Values() {
		out.Add(v)
	}
	return out
}

func (s *ValueSet) String() string {
	return fmt.Sprint(s.Values())
}

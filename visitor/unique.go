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

	"golang.org/x/exp/slices"

	"github.com/rulego/featureagg/expr"
)

// UniqueVisitor collects the distinct values of an expression.
type UniqueVisitor struct {
	expr          expr.Expression
	set           *ValueSet
	preserveOrder bool
	start         int
	max           int
}

func NewUniqueVisitor(e expr.Expression) *UniqueVisitor {
	return &UniqueVisitor{expr: e, set: NewValueSet(), max: -1}
}

func (v *UniqueVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

// SetPreserveOrder keeps values in discovery order instead of sorting them.
func (v *UniqueVisitor) SetPreserveOrder(preserve bool) {
	v.preserveOrder = preserve
}

// SetPaging limits the values returned by the result to max values starting
// at start. A negative max means no limit.
func (v *UniqueVisitor) SetPaging(start, max int) {
	if start < 0 {
		start = 0
	}
	v.start = start
	v.max = max
}

func (v *UniqueVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	v.set.Add(value)
	return nil
}

// SetValue replaces the collected values.
func (v *UniqueVisitor) SetValue(values ...interface{}) {
	v.set = NewValueSet()
	for _, value := range values {
		if value != nil {
			v.set.Add(value)
		}
	}
}

func (v *UniqueVisitor) Unique() *ValueSet {
	return v.set.Clone()
}

func (v *UniqueVisitor) Result() CalcResult {
	if v.set.Len() == 0 {
		return NullResult
	}
	return &UniqueResult{
		set:           v.set.Clone(),
		preserveOrder: v.preserveOrder,
		start:         v.start,
		max:           v.max,
	}
}

func (v *UniqueVisitor) Reset() {
	v.set = NewValueSet()
}

// UniqueResult holds a set of distinct values. Paging and ordering apply to
// Value only; merges always work on the complete set.
type UniqueResult struct {
	set           *ValueSet
	preserveOrder bool
	start         int
	max           int
}

func NewUniqueResult(values ...interface{}) *UniqueResult {
	return &UniqueResult{set: NewValueSet(values...), max: -1}
}

// Value returns a *ValueSet.
func (r *UniqueResult) Value() interface{} {
	values := r.set.Values()
	if !r.preserveOrder {
		values = sortedIfComparable(values)
	}
	if r.start > 0 || r.max >= 0 {
		values = page(values, r.start, r.max)
	}
	return NewValueSet(values...)
}

func (r *UniqueResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *UniqueResult, nullResult:
		return true
	}
	return false
}

func (r *UniqueResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	merged := *r
	merged.set = r.set.Union(other.(*UniqueResult).set)
	return &merged, nil
}

func (r *UniqueResult) String() string {
	return fmt.Sprintf("Unique(%v)", r.Value())
}

// sortedIfComparable sorts a copy of values, falling back to the original
// order when two of them cannot be compared.
func sortedIfComparable(values []interface{}) []interface{} {
	sorted := append([]interface{}(nil), values...)
	var cmpErr error
	slices.SortStableFunc(sorted, func(a, b interface{}) int {
		c, err := Compare(a, b)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c
	})
	if cmpErr != nil {
		return values
	}
	return sorted
}

func page(values []interface{}, start, max int) []interface{} {
	if start >= len(values) {
		return nil
	}
	end := len(values)
	if max >= 0 && start+max < end {
		end = start + max
	}
	return values[start:end]
}

// UniqueCountVisitor counts the distinct values of an expression.
type UniqueCountVisitor struct {
	UniqueVisitor
	count *int
}

func NewUniqueCountVisitor(e expr.Expression) *UniqueCountVisitor {
	return &UniqueCountVisitor{UniqueVisitor: *NewUniqueVisitor(e)}
}

// SetValue injects a distinct count computed elsewhere.
func (v *UniqueCountVisitor) SetValue(count int) {
	v.count = &count
}

func (v *UniqueCountVisitor) Result() CalcResult {
	if v.count != nil {
		return NewCountResult(*v.count)
	}
	if v.set.Len() == 0 {
		return NullResult
	}
	return NewCountResult(v.set.Len())
}

func (v *UniqueCountVisitor) Reset() {
	v.UniqueVisitor.Reset()
	v.count = nil
}

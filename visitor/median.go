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
	"github.com/rulego/featureagg/utils/cast"
)

// MedianVisitor buffers every value of an expression and reports the median.
// Values that cannot be ordered fail the visit.
type MedianVisitor struct {
	expr      expr.Expression
	list      []interface{}
	optimized interface{}
}

func NewMedianVisitor(e expr.Expression) *MedianVisitor {
	return &MedianVisitor{expr: e}
}

func (v *MedianVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

func (v *MedianVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	if !IsComparable(value) {
		return NewError(ErrorKindNonComparableInput, "median needs ordered values, got %T", value)
	}
	v.list = append(v.list, value)
	return nil
}

// SetValue injects a precomputed median. The result can no longer be merged.
func (v *MedianVisitor) SetValue(median interface{}) {
	v.list = nil
	v.optimized = median
}

func (v *MedianVisitor) Result() CalcResult {
	if v.optimized != nil {
		return NewOptimizedMedianResult(v.optimized)
	}
	if len(v.list) == 0 {
		return NullResult
	}
	return &MedianResult{list: append([]interface{}(nil), v.list...)}
}

func (v *MedianVisitor) Reset() {
	v.list = nil
	v.optimized = nil
}

// MedianResult holds either the raw values or an optimized median. The
// median of raw values is extracted on Value.
type MedianResult struct {
	list      []interface{}
	median    interface{}
	optimized bool
}

func NewMedianResult(values ...interface{}) *MedianResult {
	return &MedianResult{list: append([]interface{}(nil), values...)}
}

func NewOptimizedMedianResult(median interface{}) *MedianResult {
	return &MedianResult{median: median, optimized: true}
}

func (r *MedianResult) IsOptimized() bool {
	return r.optimized
}

// Value returns the middle value of the sorted list. With an even number of
// values it returns the average of the two middle numbers, or both middle
// values as a two element list when they are not numbers.
func (r *MedianResult) Value() interface{} {
	if r.optimized {
		return r.median
	}
	return findMedian(r.list)
}

func findMedian(list []interface{}) interface{} {
	n := len(list)
	if n == 0 {
		return nil
	}
	sorted := append([]interface{}(nil), list...)
	slices.SortStableFunc(sorted, func(a, b interface{}) int {
		c, err := Compare(a, b)
		if err != nil {
			log.Warn("median: %v", err)
		}
		return c
	})
	if n%2 == 1 {
		return sorted[n/2]
	}
	lo, hi := sorted[n/2-1], sorted[n/2]
	if cast.IsNumber(lo) && cast.IsNumber(hi) {
		avg, err := Average(lo, hi)
		if err == nil {
			return avg
		}
		log.Warn("median: %v", err)
	}
	return []interface{}{lo, hi}
}

func (r *MedianResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *MedianResult, nullResult:
		return true
	}
	return false
}

func (r *MedianResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	o := other.(*MedianResult)
	if r.optimized || o.optimized {
		return nil, NewError(ErrorKindIllegalOptimizedMerge,
			"cannot merge an optimized median: the values are unknown")
	}
	combined := make([]interface{}, 0, len(r.list)+len(o.list))
	combined = append(combined, r.list...)
	combined = append(combined, o.list...)
	promoted, err := Promote(combined)
	if err != nil {
		return nil, err
	}
	return &MedianResult{list: promoted}, nil
}

func (r *MedianResult) String() string {
	return fmt.Sprintf("Median(%v)", r.Value())
}

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

	"github.com/rulego/featureagg/expr"
)

// AverageVisitor computes the arithmetic mean of an expression. The sum is
// kept in the arithmetic of the first non-null value.
type AverageVisitor struct {
	expr  expr.Expression
	state *averageState
	// optimized holds an average injected by SetValue.
	optimized interface{}
}

func NewAverageVisitor(e expr.Expression) *AverageVisitor {
	return &AverageVisitor{expr: e}
}

func (v *AverageVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

func (v *AverageVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	if v.state == nil {
		v.state = &averageState{sum: newSumState(kindOf(value))}
	}
	return v.state.add(value)
}

// SetValue injects a precomputed average. The result can no longer be merged.
func (v *AverageVisitor) SetValue(average interface{}) {
	v.state = nil
	v.optimized = average
}

// SetCountSum injects the exact state of an average computed elsewhere. The
// pair is lossless, so the result stays mergeable.
func (v *AverageVisitor) SetCountSum(count int, sum interface{}) error {
	s, err := newAverageState(count, sum)
	if err != nil {
		return err
	}
	v.optimized = nil
	v.state = s
	return nil
}

func (v *AverageVisitor) Result() CalcResult {
	if v.optimized != nil {
		return NewOptimizedAverageResult(v.optimized)
	}
	if v.state == nil {
		return NullResult
	}
	return &AverageResult{count: v.state.count, sum: v.state.sum.value()}
}

func (v *AverageVisitor) Reset() {
	v.state = nil
	v.optimized = nil
}

// AverageResult is either a (count, sum) pair, which merges exactly, or an
// optimized scalar average, which does not merge at all.
type AverageResult struct {
	count     int
	sum       interface{}
	average   interface{}
	optimized bool
}

// NewAverageResultFromCountSum builds a mergeable average.
func NewAverageResultFromCountSum(count int, sum interface{}) (*AverageResult, error) {
	if _, err := newAverageState(count, sum); err != nil {
		return nil, err
	}
	return &AverageResult{count: count, sum: sum}, nil
}

// NewOptimizedAverageResult wraps a precomputed average.
func NewOptimizedAverageResult(average interface{}) *AverageResult {
	return &AverageResult{average: average, optimized: true}
}

func (r *AverageResult) Value() interface{} {
	if r.optimized {
		return r.average
	}
	s, err := newAverageState(r.count, r.sum)
	if err != nil {
		return nil
	}
	return s.value()
}

func (r *AverageResult) IsOptimized() bool {
	return r.optimized
}

// Count and Sum return the exact state; both are zero for optimized results.
func (r *AverageResult) Count() int {
	return r.count
}

func (r *AverageResult) Sum() interface{} {
	return r.sum
}

func (r *AverageResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *AverageResult, nullResult:
		return true
	}
	return false
}

func (r *AverageResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	o := other.(*AverageResult)
	if r.optimized || o.optimized {
		return nil, NewError(ErrorKindIllegalOptimizedMerge,
			"cannot merge an optimized average: the count and sum are unknown")
	}
	sum, err := Sum(r.sum, o.sum)
	if err != nil {
		return nil, err
	}
	avg, err := NewAverageResultFromCountSum(r.count+o.count, sum)
	if err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *AverageResult) String() string {
	if r.optimized {
		return fmt.Sprintf("Average(%v, optimized)", r.average)
	}
	return fmt.Sprintf("Average(%v)", r.Value())
}

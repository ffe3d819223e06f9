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
	"github.com/rulego/featureagg/utils/cast"
)

// extreme tracks the smallest or largest value seen. NaN, infinite and null
// values are excluded and counted.
type extreme struct {
	skipCounters
	expr    expr.Expression
	current interface{}
	visited bool
	// keep reports whether a value comparing cmp against the current one
	// replaces it.
	keep func(cmp int) bool
}

func (x *extreme) visit(record interface{}) error {
	value, err := evaluate(x.expr, record)
	if err != nil {
		return err
	}
	if x.skip(value) {
		return nil
	}
	if !IsComparable(value) {
		return NewError(ErrorKindNonComparableInput, "%T value %v is not comparable", value, value)
	}
	if !x.visited {
		x.current = value
		x.visited = true
		return nil
	}
	current, candidate, err := promotePair(x.current, value)
	if err != nil {
		return err
	}
	cmp, err := Compare(candidate, current)
	if err != nil {
		return err
	}
	if x.keep(cmp) {
		x.current = candidate
	} else {
		x.current = current
	}
	return nil
}

func (x *extreme) set(value interface{}) {
	x.current = value
	x.visited = value != nil
}

func (x *extreme) reset() {
	x.skipCounters.reset()
	x.current = nil
	x.visited = false
}

// promotePair converts a and b to their common class when their classes
// differ. Values outside the numeric and string classes are left untouched.
func promotePair(a, b interface{}) (interface{}, interface{}, error) {
	ca, cb := cast.ClassOf(a), cast.ClassOf(b)
	if ca == cb || ca == cast.ClassUnknown || cb == cast.ClassUnknown {
		return a, b, nil
	}
	class, _ := cast.BestClass(a, b)
	x, err := cast.Convert(a, class)
	if err != nil {
		return nil, nil, err
	}
	y, err := cast.Convert(b, class)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// pickExtreme merges two extremes, keeping b when keep holds.
func pickExtreme(a, b interface{}, keep func(int) bool) (interface{}, error) {
	x, y, err := promotePair(a, b)
	if err != nil {
		return nil, err
	}
	cmp, err := Compare(y, x)
	if err != nil {
		return nil, err
	}
	if keep(cmp) {
		return y, nil
	}
	return x, nil
}

func isLess(cmp int) bool { return cmp < 0 }

func isGreater(cmp int) bool { return cmp > 0 }

// MinVisitor finds the smallest value of an expression.
type MinVisitor struct {
	extreme
}

func NewMinVisitor(e expr.Expression) *MinVisitor {
	return &MinVisitor{extreme{expr: e, keep: isLess}}
}

func (v *MinVisitor) Expressions() []expr.Expression { return expressions(v.expr) }

func (v *MinVisitor) Visit(record interface{}) error { return v.visit(record) }

// SetValue injects a minimum computed elsewhere.
func (v *MinVisitor) SetValue(value interface{}) { v.set(value) }

// Min returns the minimum found so far, failing when nothing was visited.
func (v *MinVisitor) Min() (interface{}, error) {
	if !v.visited {
		return nil, NewError(ErrorKindPrematureResultAccess, "minimum is not available before a value is visited")
	}
	return v.current, nil
}

func (v *MinVisitor) Result() CalcResult {
	if !v.visited {
		return NullResult
	}
	return &MinResult{value: v.current}
}

func (v *MinVisitor) Reset() { v.reset() }

type MinResult struct {
	value interface{}
}

func NewMinResult(value interface{}) *MinResult {
	return &MinResult{value: value}
}

func (r *MinResult) Value() interface{} { return r.value }

func (r *MinResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *MinResult, nullResult:
		return true
	}
	return false
}

func (r *MinResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	v, err := pickExtreme(r.value, other.(*MinResult).value, isLess)
	if err != nil {
		return nil, err
	}
	return &MinResult{value: v}, nil
}

func (r *MinResult) String() string { return fmt.Sprintf("Min(%v)", r.value) }

// MaxVisitor finds the largest value of an expression.
type MaxVisitor struct {
	extreme
}

func NewMaxVisitor(e expr.Expression) *MaxVisitor {
	return &MaxVisitor{extreme{expr: e, keep: isGreater}}
}

func (v *MaxVisitor) Expressions() []expr.Expression { return expressions(v.expr) }

func (v *MaxVisitor) Visit(record interface{}) error { return v.visit(record) }

// SetValue injects a maximum computed elsewhere.
func (v *MaxVisitor) SetValue(value interface{}) { v.set(value) }

// Max returns the maximum found so far, failing when nothing was visited.
func (v *MaxVisitor) Max() (interface{}, error) {
	if !v.visited {
		return nil, NewError(ErrorKindPrematureResultAccess, "maximum is not available before a value is visited")
	}
	return v.current, nil
}

func (v *MaxVisitor) Result() CalcResult {
	if !v.visited {
		return NullResult
	}
	return &MaxResult{value: v.current}
}

func (v *MaxVisitor) Reset() { v.reset() }

type MaxResult struct {
	value interface{}
}

func NewMaxResult(value interface{}) *MaxResult {
	return &MaxResult{value: value}
}

func (r *MaxResult) Value() interface{} { return r.value }

func (r *MaxResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *MaxResult, nullResult:
		return true
	}
	return false
}

func (r *MaxResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	v, err := pickExtreme(r.value, other.(*MaxResult).value, isGreater)
	if err != nil {
		return nil, err
	}
	return &MaxResult{value: v}, nil
}

func (r *MaxResult) String() string { return fmt.Sprintf("Max(%v)", r.value) }

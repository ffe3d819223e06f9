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
	"github.com/rulego/featureagg/geom"
	"github.com/rulego/featureagg/utils/cast"
)

// SumVisitor adds up the values of an expression.
type SumVisitor struct {
	expr  expr.Expression
	state *sumState
	// fixedKind forces the arithmetic regardless of the first value.
	fixedKind numberKind
	// accept filters values after evaluation; nil accepts everything.
	accept func(float64) bool
	// extract turns an evaluated value into the number to add.
	extract func(interface{}) (interface{}, error)
}

func NewSumVisitor(e expr.Expression) *SumVisitor {
	return &SumVisitor{expr: e}
}

func (v *SumVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

func (v *SumVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	if v.extract != nil {
		if value, err = v.extract(value); err != nil {
			return err
		}
	}
	if v.accept != nil {
		f, ok := cast.ToFloat(value)
		if !ok || !v.accept(f) {
			log.Debug("sum: skipped value %v", value)
			return nil
		}
	}
	if v.state == nil {
		kind := v.fixedKind
		if kind == 0 {
			kind = kindOf(value)
		}
		v.state = newSumState(kind)
	}
	return v.state.add(value)
}

// SetValue replaces the running state with a precomputed total.
func (v *SumVisitor) SetValue(total interface{}) error {
	s, err := sumStateOf(total)
	if err != nil {
		return err
	}
	v.state = s
	return nil
}

func (v *SumVisitor) Result() CalcResult {
	if v.state == nil {
		return NullResult
	}
	return &SumResult{value: v.state.value()}
}

func (v *SumVisitor) Reset() {
	v.state = nil
}

// SumResult holds a total.
type SumResult struct {
	value interface{}
}

func NewSumResult(value interface{}) *SumResult {
	return &SumResult{value: value}
}

func (r *SumResult) Value() interface{} {
	return r.value
}

func (r *SumResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *SumResult, *CountResult, nullResult:
		return true
	}
	return false
}

// Merge adds two totals. Merging a CountResult yields an AverageResult.
func (r *SumResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	switch o := other.(type) {
	case *SumResult:
		total, err := Sum(r.value, o.value)
		if err != nil {
			return nil, err
		}
		return &SumResult{value: total}, nil
	case *CountResult:
		avg, err := NewAverageResultFromCountSum(o.count, r.value)
		if err != nil {
			return nil, err
		}
		return avg, nil
	}
	return nil, NewError(ErrorKindIncompatibleMerge, "no merge path from %T to %T", r, other)
}

func (r *SumResult) String() string {
	return fmt.Sprintf("Sum(%v)", r.value)
}

// SumAreaVisitor adds up the areas of the geometries an expression yields.
// Numeric values are taken as areas directly. Negative areas are ignored.
type SumAreaVisitor struct {
	SumVisitor
}

func NewSumAreaVisitor(e expr.Expression) *SumAreaVisitor {
	v := &SumAreaVisitor{SumVisitor: SumVisitor{
		expr:      e,
		fixedKind: kindDouble,
		accept:    func(area float64) bool { return area >= 0 },
	}}
	v.extract = areaOf
	return v
}

func areaOf(value interface{}) (interface{}, error) {
	switch g := value.(type) {
	case geom.Geometry:
		return g.Area(), nil
	}
	if f, ok := cast.ToFloat(value); ok {
		return f, nil
	}
	return nil, fmt.Errorf("cannot take the area of %T: %w", value, cast.ErrUnsupportedType)
}

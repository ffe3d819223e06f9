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
)

// BoundsVisitor computes the envelope of the geometries an expression yields.
type BoundsVisitor struct {
	expr   expr.Expression
	bounds geom.Envelope
}

func NewBoundsVisitor(e expr.Expression) *BoundsVisitor {
	return &BoundsVisitor{expr: e, bounds: geom.EmptyEnvelope()}
}

func (v *BoundsVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

func (v *BoundsVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	g, ok := value.(geom.Geometry)
	if !ok {
		return fmt.Errorf("bounds of %T: not a geometry", value)
	}
	v.bounds = v.bounds.ExpandToInclude(g.Envelope())
	return nil
}

// SetValue injects bounds computed elsewhere.
func (v *BoundsVisitor) SetValue(bounds geom.Envelope) {
	v.bounds = bounds
}

func (v *BoundsVisitor) Bounds() geom.Envelope {
	return v.bounds
}

func (v *BoundsVisitor) Result() CalcResult {
	if v.bounds.IsEmpty() {
		return NullResult
	}
	return &BoundsResult{bounds: v.bounds}
}

func (v *BoundsVisitor) Reset() {
	v.bounds = geom.EmptyEnvelope()
}

type BoundsResult struct {
	bounds geom.Envelope
}

func NewBoundsResult(bounds geom.Envelope) *BoundsResult {
	return &BoundsResult{bounds: bounds}
}

// Value returns a geom.Envelope.
func (r *BoundsResult) Value() interface{} {
	return r.bounds
}

func (r *BoundsResult) IsCompatible(other CalcResult) bool {
	switch other.(type) {
	case *BoundsResult, nullResult:
		return true
	}
	return false
}

func (r *BoundsResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, incompatible(r, other)
	}
	return &BoundsResult{bounds: r.bounds.ExpandToInclude(other.(*BoundsResult).bounds)}, nil
}

func (r *BoundsResult) String() string {
	return fmt.Sprintf("Bounds(%v)", r.bounds)
}

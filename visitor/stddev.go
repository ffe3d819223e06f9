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

	"github.com/rulego/featureagg/expr"
	"github.com/rulego/featureagg/utils/cast"
)

// StdDevVisitor computes the population standard deviation of an
// expression. The result is not mergeable.
type StdDevVisitor struct {
	skipCounters
	expr expr.Expression
	// online tracks the mean while visiting instead of using a known one.
	online bool
	mean   float64
	count  int
	sumSq  float64
}

// NewStdDevVisitor measures deviation from a mean computed beforehand.
func NewStdDevVisitor(e expr.Expression, mean float64) *StdDevVisitor {
	return &StdDevVisitor{expr: e, mean: mean}
}

// NewOnlineStdDevVisitor computes the mean and the deviation in one pass.
func NewOnlineStdDevVisitor(e expr.Expression) *StdDevVisitor {
	return &StdDevVisitor{expr: e, online: true}
}

func (v *StdDevVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

func (v *StdDevVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if v.skip(value) {
		return nil
	}
	x, ok := cast.ToFloat(value)
	if !ok {
		return fmt.Errorf("standard deviation of %T value %v: %w", value, value, cast.ErrUnsupportedType)
	}
	v.count++
	if !v.online {
		d := v.mean - x
		v.sumSq += d * d
		return nil
	}
	// Welford's update.
	delta := x - v.mean
	v.mean += delta / float64(v.count)
	v.sumSq += delta * (x - v.mean)
	return nil
}

func (v *StdDevVisitor) Count() int {
	return v.count
}

func (v *StdDevVisitor) Result() CalcResult {
	if v.count == 0 {
		return NullResult
	}
	return &StdDevResult{value: math.Sqrt(v.sumSq / float64(v.count))}
}

func (v *StdDevVisitor) Reset() {
	v.skipCounters.reset()
	v.count = 0
	v.sumSq = 0
	if v.online {
		v.mean = 0
	}
}

// StdDevResult holds a standard deviation. It merges only with NullResult.
type StdDevResult struct {
	value float64
}

func (r *StdDevResult) Value() interface{} {
	return r.value
}

func (r *StdDevResult) IsCompatible(other CalcResult) bool {
	return IsNull(other)
}

func (r *StdDevResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	return nil, incompatible(r, other)
}

func (r *StdDevResult) String() string {
	return fmt.Sprintf("StdDev(%v)", r.value)
}

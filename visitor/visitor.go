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
	"github.com/rulego/featureagg/logger"
	"github.com/rulego/featureagg/utils/cast"
)

var log = logger.Named("visitor")

// FeatureCalc is a streaming accumulator. It is not safe for concurrent use:
// run one instance per partition and merge their results instead.
type FeatureCalc interface {
	// Visit folds one record into the running state.
	Visit(record interface{}) error
	// Result snapshots the running state without mutating it.
	Result() CalcResult
	// Reset returns the visitor to the state of "no record observed".
	Reset()
}

// CheckedCalc is implemented by accumulators whose result assembly can fail,
// such as a group-by merging precomputed rows.
type CheckedCalc interface {
	ResultE() (CalcResult, error)
}

// ResultOf returns the result of calc, surfacing the assembly error of a
// CheckedCalc.
func ResultOf(calc FeatureCalc) (CalcResult, error) {
	if c, ok := calc.(CheckedCalc); ok {
		return c.ResultE()
	}
	return calc.Result(), nil
}

// ExpressionVisitor is implemented by visitors that evaluate expressions, so
// drivers can tell which attributes a scan needs.
type ExpressionVisitor interface {
	Expressions() []expr.Expression
}

// skipCounters tallies values excluded from a computation. They are exposed
// for diagnostics only.
type skipCounters struct {
	nanCount  int
	nullCount int
}

func (c *skipCounters) NaNCount() int { return c.nanCount }

func (c *skipCounters) NullCount() int { return c.nullCount }

// skip reports whether v must be excluded, counting it when it is.
func (c *skipCounters) skip(v interface{}) bool {
	if v == nil {
		c.nullCount++
		return true
	}
	if cast.IsNaNOrInf(v) {
		c.nanCount++
		return true
	}
	return false
}

func (c *skipCounters) reset() {
	c.nanCount = 0
	c.nullCount = 0
}

func evaluate(e expr.Expression, record interface{}) (interface{}, error) {
	if e == nil {
		return nil, fmt.Errorf("visitor has no expression")
	}
	return e.Evaluate(record)
}

func expressions(exprs ...expr.Expression) []expr.Expression {
	out := make([]expr.Expression, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

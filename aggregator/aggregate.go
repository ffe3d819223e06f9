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

package aggregator

import (
	"strings"

	"github.com/rulego/featureagg/expr"
	"github.com/rulego/featureagg/utils/cast"
	"github.com/rulego/featureagg/visitor"
)

// Aggregate names one of the aggregations a group-by can compute.
type Aggregate string

const (
	Average Aggregate = "average"
	Count   Aggregate = "count"
	Max     Aggregate = "max"
	Median  Aggregate = "median"
	Min     Aggregate = "min"
	StdDev  Aggregate = "std_dev"
	Sum     Aggregate = "sum"
	SumArea Aggregate = "sum_area"
)

type aggregateDef struct {
	create func(e expr.Expression) visitor.FeatureCalc
	// wrap is nil when a single scalar cannot rebuild a mergeable result.
	wrap func(raw interface{}) (visitor.CalcResult, error)
	// result maps the class of the aggregated values to the class produced.
	result func(input cast.Class) cast.Class
}

var aggregates = map[Aggregate]aggregateDef{
	Average: {
		create: func(e expr.Expression) visitor.FeatureCalc { return visitor.NewAverageVisitor(e) },
		result: fixedClass(cast.ClassDouble),
	},
	Count: {
		create: func(expr.Expression) visitor.FeatureCalc { return visitor.NewCountVisitor() },
		wrap:   wrapCount,
		result: fixedClass(cast.ClassInteger),
	},
	Max: {
		create: func(e expr.Expression) visitor.FeatureCalc { return visitor.NewMaxVisitor(e) },
		wrap:   func(raw interface{}) (visitor.CalcResult, error) { return visitor.NewMaxResult(raw), nil },
		result: sameClass,
	},
	Median: {
		create: func(e expr.Expression) visitor.FeatureCalc { return visitor.NewMedianVisitor(e) },
		result: sameClass,
	},
	Min: {
		create: func(e expr.Expression) visitor.FeatureCalc { return visitor.NewMinVisitor(e) },
		wrap:   func(raw interface{}) (visitor.CalcResult, error) { return visitor.NewMinResult(raw), nil },
		result: sameClass,
	},
	StdDev: {
		create: func(e expr.Expression) visitor.FeatureCalc { return visitor.NewOnlineStdDevVisitor(e) },
		result: fixedClass(cast.ClassDouble),
	},
	Sum: {
		create: func(e expr.Expression) visitor.FeatureCalc { return visitor.NewSumVisitor(e) },
		wrap:   wrapSum,
		result: sameClass,
	},
	SumArea: {
		create: func(e expr.Expression) visitor.FeatureCalc { return visitor.NewSumAreaVisitor(e) },
		wrap:   wrapSum,
		result: fixedClass(cast.ClassDouble),
	},
}

// Aggregates lists every known aggregate in declaration order.
func Aggregates() []Aggregate {
	return []Aggregate{Average, Count, Max, Median, Min, StdDev, Sum, SumArea}
}

func (a Aggregate) def() (aggregateDef, error) {
	d, ok := aggregates[a]
	if !ok {
		return aggregateDef{}, visitor.NewError(visitor.ErrorKindUnknownAggregate, "unknown aggregate %q", string(a))
	}
	return d, nil
}

// Create returns a fresh accumulator computing a over e.
func (a Aggregate) Create(e expr.Expression) (visitor.FeatureCalc, error) {
	d, err := a.def()
	if err != nil {
		return nil, err
	}
	return d.create(e), nil
}

// Wrap turns a scalar computed elsewhere into the result a's accumulator
// would have produced. Average, Median and StdDev cannot be rebuilt from a
// scalar and fail with ErrUnsupportedWrap. A nil raw value wraps to
// NullResult.
func (a Aggregate) Wrap(e expr.Expression, raw interface{}) (visitor.CalcResult, error) {
	d, err := a.def()
	if err != nil {
		return nil, err
	}
	if d.wrap == nil {
		return nil, visitor.NewError(visitor.ErrorKindUnsupportedWrap,
			"%s over %v cannot be rebuilt from the scalar %v", a, e, raw)
	}
	if raw == nil {
		return visitor.NullResult, nil
	}
	return d.wrap(raw)
}

// ResultClass infers the class of a's values from the class of its input.
func (a Aggregate) ResultClass(input cast.Class) cast.Class {
	d, err := a.def()
	if err != nil {
		return cast.ClassUnknown
	}
	return d.result(input)
}

func (a Aggregate) String() string {
	return strings.ToUpper(string(a))
}

// Lookup resolves an aggregate name. Matching ignores case, underscores and
// spaces, and accepts "avg" for Average.
func Lookup(name string) (Aggregate, error) {
	key := normalizeName(name)
	if key == "avg" {
		return Average, nil
	}
	for _, a := range Aggregates() {
		if normalizeName(string(a)) == key {
			return a, nil
		}
	}
	return "", visitor.NewError(visitor.ErrorKindUnknownAggregate, "unknown aggregate %q", name)
}

func normalizeName(name string) string {
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}

func wrapCount(raw interface{}) (visitor.CalcResult, error) {
	if !cast.IsNumber(raw) {
		return nil, visitor.NewError(visitor.ErrorKindUnsupportedWrap, "count needs a number, got %T", raw)
	}
	n, err := cast.Convert(raw, cast.ClassInteger)
	if err != nil {
		return nil, err
	}
	return visitor.NewCountResult(n.(int)), nil
}

func wrapSum(raw interface{}) (visitor.CalcResult, error) {
	if !cast.IsNumber(raw) {
		return nil, visitor.NewError(visitor.ErrorKindUnsupportedWrap, "sum needs a number, got %T", raw)
	}
	return visitor.NewSumResult(raw), nil
}

func sameClass(input cast.Class) cast.Class { return input }

func fixedClass(c cast.Class) func(cast.Class) cast.Class {
	return func(cast.Class) cast.Class { return c }
}

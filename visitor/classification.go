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

// QuantileVisitor splits the values of an expression into bins holding the
// same number of values. NaN, infinite and null values are excluded.
type QuantileVisitor struct {
	skipCounters
	expr   expr.Expression
	bins   int
	values []interface{}
}

// NewQuantileVisitor requests the given number of bins; fewer than one bin
// is treated as one.
func NewQuantileVisitor(e expr.Expression, bins int) *QuantileVisitor {
	if bins < 1 {
		bins = 1
	}
	return &QuantileVisitor{expr: e, bins: bins}
}

func (v *QuantileVisitor) Expressions() []expr.Expression {
	return expressions(v.expr)
}

func (v *QuantileVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if v.skip(value) {
		return nil
	}
	if !IsComparable(value) {
		return NewError(ErrorKindNonComparableInput, "quantiles need ordered values, got %T", value)
	}
	v.values = append(v.values, value)
	return nil
}

func (v *QuantileVisitor) Result() CalcResult {
	if len(v.values) == 0 {
		return NullResult
	}
	return &BinsResult{bins: QuantileBins(v.values, v.bins)}
}

func (v *QuantileVisitor) Reset() {
	v.skipCounters.reset()
	v.values = nil
}

// QuantileBins sorts values and deals them into bins. The first n%bins bins
// hold ceil(n/bins) values and the rest one value fewer. When there are
// fewer values than bins, every value gets its own bin.
func QuantileBins(values []interface{}, bins int) [][]interface{} {
	n := len(values)
	if n == 0 || bins < 1 {
		return nil
	}
	sorted := sortValues(values)
	if bins > n {
		bins = n
	}
	size := (n + bins - 1) / bins
	lastBig := bins
	if n%bins != 0 {
		lastBig = n%bins - 1
	}
	out := make([][]interface{}, 0, bins)
	pos := 0
	for i := 0; i < bins; i++ {
		if i == lastBig+1 {
			size--
		}
		out = append(out, sorted[pos:pos+size:pos+size])
		pos += size
	}
	return out
}

func sortValues(values []interface{}) []interface{} {
	sorted := append([]interface{}(nil), values...)
	slices.SortStableFunc(sorted, func(a, b interface{}) int {
		c, _ := Compare(a, b)
		return c
	})
	return sorted
}

// EqualAreaVisitor splits the values of an expression into bins covering
// roughly the same total area. The area of a value comes from a second
// expression evaluating to a geometry or a number.
type EqualAreaVisitor struct {
	skipCounters
	expr  expr.Expression
	area  expr.Expression
	bins  int
	items []weighted
}

type weighted struct {
	value  interface{}
	weight float64
}

func NewEqualAreaVisitor(e, area expr.Expression, bins int) *EqualAreaVisitor {
	if bins < 1 {
		bins = 1
	}
	return &EqualAreaVisitor{expr: e, area: area, bins: bins}
}

func (v *EqualAreaVisitor) Expressions() []expr.Expression {
	return expressions(v.expr, v.area)
}

func (v *EqualAreaVisitor) Visit(record interface{}) error {
	value, err := evaluate(v.expr, record)
	if err != nil {
		return err
	}
	if v.skip(value) {
		return nil
	}
	if !IsComparable(value) {
		return NewError(ErrorKindNonComparableInput, "equal area bins need ordered values, got %T", value)
	}
	raw, err := evaluate(v.area, record)
	if err != nil {
		return err
	}
	if v.skip(raw) {
		return nil
	}
	a, err := areaOf(raw)
	if err != nil {
		return err
	}
	v.items = append(v.items, weighted{value: value, weight: a.(float64)})
	return nil
}

func (v *EqualAreaVisitor) Result() CalcResult {
	if len(v.items) == 0 {
		return NullResult
	}
	return &BinsResult{bins: equalAreaBins(v.items, v.bins)}
}

func (v *EqualAreaVisitor) Reset() {
	v.skipCounters.reset()
	v.items = nil
}

// equalAreaBins closes a bin once the running area reaches its share of the
// total. A trailing empty bin is dropped, so fewer bins than requested may
// come back.
func equalAreaBins(items []weighted, bins int) [][]interface{} {
	sorted := append([]weighted(nil), items...)
	slices.SortStableFunc(sorted, func(a, b weighted) int {
		c, _ := Compare(a.value, b.value)
		return c
	})
	var total float64
	for _, it := range sorted {
		total += it.weight
	}
	share := total / float64(bins)
	out := make([][]interface{}, 0, bins)
	var (
		current []interface{}
		running float64
	)
	for _, it := range sorted {
		current = append(current, it.value)
		running += it.weight
		if len(out) < bins-1 && running >= share*float64(len(out)+1) {
			out = append(out, current)
			current = nil
		}
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// BinsResult holds classification bins, each a sorted list of values. It
// merges only with NullResult.
type BinsResult struct {
	bins [][]interface{}
}

// Value returns the bins as [][]interface{}.
func (r *BinsResult) Value() interface{} {
	out := make([][]interface{}, len(r.bins))
	for i, b := range r.bins {
		out[i] = append([]interface{}(nil), b...)
	}
	return out
}

func (r *BinsResult) Bins() int {
	return len(r.bins)
}

// Sizes returns the number of values in each bin.
func (r *BinsResult) Sizes() []int {
	out := make([]int, len(r.bins))
	for i, b := range r.bins {
		out[i] = len(b)
	}
	return out
}

func (r *BinsResult) IsCompatible(other CalcResult) bool {
	return IsNull(other)
}

func (r *BinsResult) Merge(other CalcResult) (CalcResult, error) {
	if IsNull(other) {
		return r, nil
	}
	return nil, incompatible(r, other)
}

func (r *BinsResult) String() string {
	return fmt.Sprintf("Bins(%v)", r.Sizes())
}

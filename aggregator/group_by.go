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
	"fmt"
	"io"
	"strings"

	"github.com/rulego/featureagg/expr"
	"github.com/rulego/featureagg/logger"
	"github.com/rulego/featureagg/utils/cast"
	"github.com/rulego/featureagg/utils/table"
	"github.com/rulego/featureagg/visitor"
)

var log = logger.Named("aggregator")

// GroupKey is the ordered tuple of grouping values of a record. Two keys are
// equal when their values are equal element by element, types included.
type GroupKey struct {
	values []interface{}
	hash   string
}

func NewGroupKey(values ...interface{}) GroupKey {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = visitor.ValueKey(v)
	}
	return GroupKey{
		values: append([]interface{}(nil), values...),
		hash:   strings.Join(parts, "\x1f"),
	}
}

func (k GroupKey) Values() []interface{} {
	return append([]interface{}(nil), k.values...)
}

// Hash identifies the key; equal keys have equal hashes.
func (k GroupKey) Hash() string {
	return k.hash
}

func (k GroupKey) Equal(other GroupKey) bool {
	return k.hash == other.hash
}

// String joins the values with "|".
func (k GroupKey) String() string {
	parts := make([]string, len(k.values))
	for i, v := range k.values {
		parts[i] = cast.ToString(v)
	}
	return strings.Join(parts, "|")
}

// GroupByRawResult is one row computed by a backend: the grouping values and
// the aggregated scalar.
type GroupByRawResult struct {
	Keys  []interface{} `json:"keys"`
	Value interface{}   `json:"value"`
}

type group struct {
	key  GroupKey
	calc visitor.FeatureCalc
}

// GroupByVisitor splits records by the values of the grouping expressions and
// aggregates each group separately. Results injected with SetValue are
// merged with the visited groups when the result is built.
type GroupByVisitor struct {
	aggregate Aggregate
	expr      expr.Expression
	groupBy   []expr.Expression

	groups map[string]*group
	order  []string
	// optimization holds injected results; NullResult until SetValue.
	optimization visitor.CalcResult
}

// NewGroupByVisitor groups records by groupBy and computes aggregate over e.
func NewGroupByVisitor(aggregate Aggregate, e expr.Expression, groupBy ...expr.Expression) (*GroupByVisitor, error) {
	if _, err := aggregate.def(); err != nil {
		return nil, err
	}
	if len(groupBy) == 0 {
		return nil, fmt.Errorf("group by %s needs at least one grouping expression", aggregate)
	}
	v := &GroupByVisitor{
		aggregate: aggregate,
		expr:      e,
		groupBy:   append([]expr.Expression(nil), groupBy...),
	}
	v.Reset()
	return v, nil
}

func (v *GroupByVisitor) Aggregate() Aggregate {
	return v.aggregate
}

// Expressions returns the aggregated expression followed by the grouping
// expressions.
func (v *GroupByVisitor) Expressions() []expr.Expression {
	out := make([]expr.Expression, 0, len(v.groupBy)+1)
	if v.expr != nil {
		out = append(out, v.expr)
	}
	return append(out, v.groupBy...)
}

// ResultClass infers the class of the aggregated column.
func (v *GroupByVisitor) ResultClass(input cast.Class) cast.Class {
	return v.aggregate.ResultClass(input)
}

func (v *GroupByVisitor) Visit(record interface{}) error {
	values := make([]interface{}, len(v.groupBy))
	for i, e := range v.groupBy {
		value, err := e.Evaluate(record)
		if err != nil {
			return fmt.Errorf("evaluate group by %s: %w", e, err)
		}
		values[i] = value
	}
	key := NewGroupKey(values...)
	g, ok := v.groups[key.Hash()]
	if !ok {
		calc, err := v.aggregate.Create(v.expr)
		if err != nil {
			return err
		}
		g = &group{key: key, calc: calc}
		v.groups[key.Hash()] = g
		v.order = append(v.order, key.Hash())
		log.Debug("group by: new group %s", key)
	}
	return g.calc.Visit(record)
}

// SetValue injects rows aggregated elsewhere. Rows are wrapped through the
// aggregate and merged with any previously injected rows.
func (v *GroupByVisitor) SetValue(rows []GroupByRawResult) error {
	injected := newGroupByResult(v.aggregate, v.groupBy)
	for _, row := range rows {
		if len(row.Keys) != len(v.groupBy) {
			return fmt.Errorf("group by row has %d keys, expected %d", len(row.Keys), len(v.groupBy))
		}
		r, err := v.aggregate.Wrap(v.expr, row.Value)
		if err != nil {
			return err
		}
		if err := injected.add(NewGroupKey(row.Keys...), r); err != nil {
			return err
		}
	}
	merged, err := v.optimization.Merge(injected)
	if err != nil {
		return err
	}
	log.Info("group by: merged %d precomputed rows", len(rows))
	v.optimization = merged
	return nil
}

// ResultE builds a GroupByResult from the visited groups, merged into the
// injected rows when there are any. With nothing visited the result is an
// empty GroupByResult, not NullResult. A conflict between an injected row and
// a visited group fails the whole result.
func (v *GroupByVisitor) ResultE() (visitor.CalcResult, error) {
	visited := newGroupByResult(v.aggregate, v.groupBy)
	for _, hash := range v.order {
		g := v.groups[hash]
		visited.put(g.key, g.calc.Result())
	}
	if visitor.IsNull(v.optimization) {
		return visited, nil
	}
	merged, err := v.optimization.Merge(visited)
	if err != nil {
		return nil, fmt.Errorf("group by: cannot merge precomputed rows: %w", err)
	}
	return merged, nil
}

// Result is ResultE for callers bound to visitor.FeatureCalc. When ResultE
// fails the error is logged and NullResult is returned; drivers use
// visitor.ResultOf to get the error instead.
func (v *GroupByVisitor) Result() visitor.CalcResult {
	r, err := v.ResultE()
	if err != nil {
		log.Error("%v", err)
		return visitor.NullResult
	}
	return r
}

// GroupByResultE is ResultE as a GroupByResult.
func (v *GroupByVisitor) GroupByResultE() (*GroupByResult, error) {
	r, err := v.ResultE()
	if err != nil {
		return nil, err
	}
	if g, ok := r.(*GroupByResult); ok {
		return g, nil
	}
	return newGroupByResult(v.aggregate, v.groupBy), nil
}

// GroupByResult is GroupByResultE with the error logged. A failed merge
// yields an empty result.
func (v *GroupByVisitor) GroupByResult() *GroupByResult {
	g, err := v.GroupByResultE()
	if err != nil {
		log.Error("%v", err)
		return newGroupByResult(v.aggregate, v.groupBy)
	}
	return g
}

func (v *GroupByVisitor) Reset() {
	v.groups = make(map[string]*group)
	v.order = nil
	v.optimization = visitor.NullResult
}

// GroupByResult maps group keys to per-group results, in first seen order.
type GroupByResult struct {
	aggregate Aggregate
	groupBy   []expr.Expression
	keys      []GroupKey
	results   map[string]visitor.CalcResult
}

func newGroupByResult(aggregate Aggregate, groupBy []expr.Expression) *GroupByResult {
	return &GroupByResult{
		aggregate: aggregate,
		groupBy:   groupBy,
		results:   make(map[string]visitor.CalcResult),
	}
}

func (r *GroupByResult) put(key GroupKey, result visitor.CalcResult) {
	if _, ok := r.results[key.Hash()]; !ok {
		r.keys = append(r.keys, key)
	}
	r.results[key.Hash()] = result
}

// add merges result into the group of key.
func (r *GroupByResult) add(key GroupKey, result visitor.CalcResult) error {
	existing, ok := r.results[key.Hash()]
	if !ok {
		r.put(key, result)
		return nil
	}
	if !existing.IsCompatible(result) {
		return visitor.NewError(visitor.ErrorKindIncompatibleMerge,
			"group %s: cannot merge %T with %T", key, existing, result)
	}
	merged, err := existing.Merge(result)
	if err != nil {
		return fmt.Errorf("group %s: %w", key, err)
	}
	r.results[key.Hash()] = merged
	return nil
}

func (r *GroupByResult) Aggregate() Aggregate {
	return r.aggregate
}

func (r *GroupByResult) GroupBy() []expr.Expression {
	return append([]expr.Expression(nil), r.groupBy...)
}

func (r *GroupByResult) Groups() []GroupKey {
	return append([]GroupKey(nil), r.keys...)
}

func (r *GroupByResult) Len() int {
	return len(r.keys)
}

// Get returns the result of the group with the given grouping values.
func (r *GroupByResult) Get(values ...interface{}) (visitor.CalcResult, bool) {
	res, ok := r.results[NewGroupKey(values...).Hash()]
	return res, ok
}

// Value returns the same map as ToMap.
func (r *GroupByResult) Value() interface{} {
	return r.ToMap()
}

// ToArray returns one []interface{} row per group holding the grouping
// values followed by the aggregated value.
func (r *GroupByResult) ToArray() []interface{} {
	rows := make([]interface{}, 0, len(r.keys))
	for _, k := range r.keys {
		row := append(k.Values(), r.results[k.Hash()].Value())
		rows = append(rows, row)
	}
	return rows
}

// ToMap maps the string form of every key to its aggregated value. Keys whose
// string forms collide, such as 1 and "1", are keyed by their Hash instead.
func (r *GroupByResult) ToMap() map[string]interface{} {
	seen := make(map[string]int, len(r.keys))
	for _, k := range r.keys {
		seen[k.String()]++
	}
	out := make(map[string]interface{}, len(r.keys))
	for _, k := range r.keys {
		name := k.String()
		if seen[name] > 1 {
			name = k.Hash()
		}
		out[name] = r.results[k.Hash()].Value()
	}
	return out
}

// Columns names the grouping expressions followed by the aggregate.
func (r *GroupByResult) Columns() []string {
	cols := make([]string, 0, len(r.groupBy)+1)
	for _, e := range r.groupBy {
		cols = append(cols, e.String())
	}
	return append(cols, string(r.aggregate))
}

// WriteTable renders the groups as a text table, one row per group in first
// seen order.
func (r *GroupByResult) WriteTable(w io.Writer) error {
	rows := make([][]interface{}, 0, len(r.keys))
	for _, row := range r.ToArray() {
		rows = append(rows, row.([]interface{}))
	}
	return table.Render(w, r.Columns(), rows)
}

// IsCompatible holds for NullResult and for group-by results with the same
// aggregate over the same grouping expressions.
func (r *GroupByResult) IsCompatible(other visitor.CalcResult) bool {
	if visitor.IsNull(other) {
		return true
	}
	o, ok := other.(*GroupByResult)
	if !ok {
		return false
	}
	return r.aggregate == o.aggregate && expr.Equal(r.groupBy, o.groupBy)
}

// Merge combines two group-by results key by key. Groups present on one side
// only pass through unchanged.
func (r *GroupByResult) Merge(other visitor.CalcResult) (visitor.CalcResult, error) {
	if visitor.IsNull(other) {
		return r, nil
	}
	if !r.IsCompatible(other) {
		return nil, visitor.NewError(visitor.ErrorKindIncompatibleMerge,
			"cannot merge group by %s%v with %v", r.aggregate, r.groupBy, describe(other))
	}
	o := other.(*GroupByResult)
	merged := newGroupByResult(r.aggregate, r.groupBy)
	for _, k := range r.keys {
		merged.put(k, r.results[k.Hash()])
	}
	for _, k := range o.keys {
		if err := merged.add(k, o.results[k.Hash()]); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func (r *GroupByResult) String() string {
	return fmt.Sprintf("GroupBy(%s, %v)", r.aggregate, r.ToMap())
}

func describe(r visitor.CalcResult) string {
	if g, ok := r.(*GroupByResult); ok {
		return fmt.Sprintf("group by %s%v", g.aggregate, g.groupBy)
	}
	return fmt.Sprintf("%T", r)
}

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
	"errors"
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/rulego/featureagg/expr"
)

// Builder assembles a GroupByVisitor. Errors are collected and reported by
// Build.
type Builder struct {
	aggregate Aggregate
	attribute expr.Expression
	groupBy   []expr.Expression
	errs      []error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// WithAggregateAttribute sets the aggregated value from an attribute name or
// an expression source.
func (b *Builder) WithAggregateAttribute(source string) *Builder {
	e, err := expr.Parse(source)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("aggregate attribute %q: %w", source, err))
		return b
	}
	b.attribute = e
	return b
}

func (b *Builder) WithAggregateExpression(e expr.Expression) *Builder {
	b.attribute = e
	return b
}

// WithAggregateVisitor selects the aggregate by name, see Lookup.
func (b *Builder) WithAggregateVisitor(name string) *Builder {
	a, err := Lookup(name)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.aggregate = a
	return b
}

func (b *Builder) WithAggregate(a Aggregate) *Builder {
	b.aggregate = a
	return b
}

// WithGroupByAttribute appends a grouping attribute name or expression source.
func (b *Builder) WithGroupByAttribute(source string) *Builder {
	e, err := expr.Parse(source)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("group by attribute %q: %w", source, err))
		return b
	}
	b.groupBy = append(b.groupBy, e)
	return b
}

func (b *Builder) WithGroupByExpression(e expr.Expression) *Builder {
	b.groupBy = append(b.groupBy, e)
	return b
}

func (b *Builder) Build() (*GroupByVisitor, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if b.aggregate == "" {
		return nil, errors.New("group by: no aggregate selected")
	}
	if b.attribute == nil && b.aggregate != Count {
		return nil, fmt.Errorf("group by: %s needs an aggregate attribute", b.aggregate)
	}
	return NewGroupByVisitor(b.aggregate, b.attribute, b.groupBy...)
}

// GroupByConfig is the serializable form of a group-by. It is read from YAML
// or JSON.
//
//	aggregate: average
//	attribute: energy_consumption
//	groupBy: [building_type, energy_type]
//	filter: energy_consumption > 0
type GroupByConfig struct {
	Aggregate string   `json:"aggregate"`
	Attribute string   `json:"attribute,omitempty"`
	GroupBy   []string `json:"groupBy"`
	// Filter selects the records to aggregate; empty keeps them all.
	Filter    string   `json:"filter,omitempty"`
}

// LoadGroupByConfig parses a YAML or JSON document.
func LoadGroupByConfig(data []byte) (*GroupByConfig, error) {
	var c GroupByConfig
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("parse group by config: %w", err)
	}
	return &c, nil
}

// Marshal renders the configuration as YAML.
func (c *GroupByConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *GroupByConfig) Builder() *Builder {
	b := NewBuilder().WithAggregateVisitor(c.Aggregate)
	if c.Attribute != "" {
		b.WithAggregateAttribute(c.Attribute)
	}
	for _, g := range c.GroupBy {
		b.WithGroupByAttribute(g)
	}
	return b
}

func (c *GroupByConfig) Build() (*GroupByVisitor, error) {
	return c.Builder().Build()
}

// Where compiles the record filter, nil when there is none.
func (c *GroupByConfig) Where() (*expr.Filter, error) {
	if strings.TrimSpace(c.Filter) == "" {
		return nil, nil
	}
	return expr.NewFilter(c.Filter)
}

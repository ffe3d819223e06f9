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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/featureagg/visitor"
)

func TestLoadGroupByConfig(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		c, err := LoadGroupByConfig([]byte(`
aggregate: avg
attribute: energy_consumption
groupBy:
  - building_type
`))
		require.NoError(t, err)
		assert.Equal(t, &GroupByConfig{
			Aggregate: "avg",
			Attribute: "energy_consumption",
			GroupBy:   []string{"building_type"},
		}, c)

		v, err := c.Build()
		require.NoError(t, err)
		for _, r := range partitionA {
			require.NoError(t, v.Visit(r))
		}
		checkResults(t, v.Result(), map[string]interface{}{"SCHOOL": 30.0, "FABRIC": 175.0, "HOUSE": 5.0})
	})

	t.Run("json", func(t *testing.T) {
		c, err := LoadGroupByConfig([]byte(`{"aggregate":"count","groupBy":["building_type","energy_type"]}`))
		require.NoError(t, err)
		v, err := c.Build()
		require.NoError(t, err)
		assert.Equal(t, Count, v.Aggregate())
		assert.Len(t, v.Expressions(), 2)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadGroupByConfig([]byte("aggregate: sum\ncolumns: [a]\n"))
		assert.Error(t, err)
	})

	t.Run("filter", func(t *testing.T) {
		c, err := LoadGroupByConfig([]byte("aggregate: sum\nattribute: energy\ngroupBy: [region]\nfilter: energy > 10\n"))
		require.NoError(t, err)
		f, err := c.Where()
		require.NoError(t, err)
		require.NotNil(t, f)
		ok, err := f.Match(map[string]interface{}{"energy": 20})
		require.NoError(t, err)
		assert.True(t, ok)

		c.Filter = " "
		f, err = c.Where()
		require.NoError(t, err)
		assert.Nil(t, f)

		c.Filter = "energy >"
		_, err = c.Where()
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		c := &GroupByConfig{Aggregate: "max", Attribute: "energy * 2", GroupBy: []string{"region"}, Filter: "region != 'north'"}
		data, err := c.Marshal()
		require.NoError(t, err)
		back, err := LoadGroupByConfig(data)
		require.NoError(t, err)
		assert.Equal(t, c, back)
	})
}

func TestBuilderErrors(t *testing.T) {
	_, err := NewBuilder().WithAggregateVisitor("mode").WithAggregateAttribute("x").WithGroupByAttribute("g").Build()
	assert.ErrorIs(t, err, visitor.ErrUnknownAggregate)

	_, err = NewBuilder().WithAggregateAttribute("x").WithGroupByAttribute("g").Build()
	assert.Error(t, err)

	_, err = NewBuilder().WithAggregate(Sum).WithGroupByAttribute("g").Build()
	assert.Error(t, err)

	_, err = NewBuilder().WithAggregate(Sum).WithAggregateAttribute("x").Build()
	assert.Error(t, err)

	_, err = NewBuilder().WithAggregate(Sum).WithAggregateAttribute("x +").WithGroupByAttribute("g").Build()
	assert.Error(t, err)

	v, err := NewBuilder().WithAggregate(Count).WithGroupByAttribute("g").Build()
	require.NoError(t, err)
	assert.Len(t, v.Expressions(), 1)
}

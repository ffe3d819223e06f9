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

package featureagg

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/featureagg/aggregator"
	"github.com/rulego/featureagg/collector"
	"github.com/rulego/featureagg/logger"
	"github.com/rulego/featureagg/visitor"
)

func testRecords() []interface{} {
	return []interface{}{
		map[string]interface{}{"building_type": "SCHOOL", "energy_consumption": 50.0, "site": map[string]interface{}{"zone": "east"}},
		map[string]interface{}{"building_type": "SCHOOL", "energy_consumption": 10.0, "site": map[string]interface{}{"zone": "west"}},
		map[string]interface{}{"building_type": "FABRIC", "energy_consumption": 500.0, "site": map[string]interface{}{"zone": "east"}},
		map[string]interface{}{"building_type": "FABRIC", "energy_consumption": 150.0, "site": map[string]interface{}{"zone": "east"}},
		map[string]interface{}{"building_type": "HOUSE", "energy_consumption": 6.0, "site": map[string]interface{}{"zone": "west"}},
	}
}

func TestEngineAggregate(t *testing.T) {
	ctx := context.Background()
	engine := New(WithPartitions(3), WithConcurrency(2), WithDiscardLog())
	sources := func() []collector.RecordSource { return engine.Records(testRecords()) }

	tests := []struct {
		name      string
		aggregate string
		attribute string
		expected  interface{}
	}{
		{"sum", "sum", "energy_consumption", 716.0},
		{"average", "avg", "energy_consumption", 143.2},
		{"max", "Max", "energy_consumption", 500.0},
		{"min", "MIN", "energy_consumption", 6.0},
		{"count without attribute", "count", "", 5},
		{"expression", "sum", "energy_consumption / 2", 358.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := engine.Aggregate(ctx, tt.aggregate, tt.attribute, sources()...)
			require.NoError(t, err)
			if f, ok := tt.expected.(float64); ok {
				assert.InDelta(t, f, r.Value(), 0.0001)
				return
			}
			assert.Equal(t, tt.expected, r.Value())
		})
	}
}

func TestEngineAggregateErrors(t *testing.T) {
	ctx := context.Background()
	engine := New(WithDiscardLog())

	_, err := engine.Aggregate(ctx, "mode", "energy_consumption")
	assert.ErrorIs(t, err, visitor.ErrUnknownAggregate)

	_, err = engine.Aggregate(ctx, "sum", "")
	assert.Error(t, err)

	_, err = engine.Aggregate(ctx, "sum", "energy +")
	assert.Error(t, err)

	r, err := engine.Aggregate(ctx, "sum", "energy_consumption")
	require.NoError(t, err)
	assert.True(t, visitor.IsNull(r))
}

func TestEngineGroupBy(t *testing.T) {
	ctx := context.Background()
	engine := New(WithPartitions(2), WithDiscardLog())

	doc := []byte(`
aggregate: sum
attribute: energy_consumption
groupBy:
  - site.zone
`)
	r, err := engine.GroupByDocument(ctx, doc, engine.Records(testRecords())...)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"east": 700.0, "west": 16.0}, r.ToMap())
	assert.Equal(t, []string{"site.zone", "sum"}, r.Columns())

	cfg := &aggregator.GroupByConfig{Aggregate: "count", GroupBy: []string{"building_type"}}
	counts, err := engine.GroupBy(ctx, cfg, engine.Records(testRecords())...)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"SCHOOL": 2, "FABRIC": 2, "HOUSE": 1}, counts.ToMap())

	filtered, err := engine.GroupByDocument(ctx, []byte(`{"aggregate":"max","attribute":"energy_consumption","groupBy":["building_type"],"filter":"like_match(building_type, '%O%')"}`), engine.Records(testRecords())...)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"SCHOOL": 50.0, "HOUSE": 6.0}, filtered.ToMap())

	empty, err := engine.GroupBy(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = engine.GroupBy(ctx, nil)
	assert.Error(t, err)
	_, err = engine.GroupByDocument(ctx, []byte("aggregate: sum\nunknown: 1\n"))
	assert.Error(t, err)
	_, err = engine.GroupBy(ctx, &aggregator.GroupByConfig{Aggregate: "sum"})
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	previous := logger.GetDefault()
	defer logger.SetDefault(previous)

	var buf bytes.Buffer
	engine := New(WithLogOutput(&buf, logger.DEBUG), WithPartitions(0), WithConcurrency(1))
	assert.Equal(t, 1, engine.partitions)
	assert.Equal(t, 1, engine.concurrency)

	_, err := engine.Aggregate(context.Background(), "count", "", engine.Records(testRecords())...)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[DEBUG] [featureagg] scanning 1 sources")

	New(WithLogLevel(logger.ERROR))
	buf.Reset()
	_, err = engine.Aggregate(context.Background(), "count", "", engine.Records(testRecords())...)
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	custom := logger.NewDiscardLogger()
	New(WithLogger(custom))
	assert.Equal(t, custom, logger.GetDefault())
}

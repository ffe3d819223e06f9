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
	"context"
	"fmt"

	"github.com/rulego/featureagg/aggregator"
	"github.com/rulego/featureagg/collector"
	"github.com/rulego/featureagg/expr"
	"github.com/rulego/featureagg/logger"
	"github.com/rulego/featureagg/visitor"
)

var log = logger.Named("featureagg")

// Engine runs aggregations over record sources. Each source is scanned by
// its own accumulator and the partial results are merged.
//
// Example:
//
//	engine := featureagg.New(featureagg.WithConcurrency(4))
//	res, err := engine.Aggregate(ctx, "sum", "energy_consumption", sources...)
type Engine struct {
	concurrency int
	partitions  int
}

// New creates an engine configured by options.
func New(options ...Option) *Engine {
	e := &Engine{partitions: 1}
	for _, option := range options {
		option(e)
	}
	return e
}

// Aggregate computes the named aggregate over attribute. attribute may be a
// property name, a nested path or an expression; it may be empty for count.
func (e *Engine) Aggregate(ctx context.Context, name, attribute string, sources ...collector.RecordSource) (visitor.CalcResult, error) {
	a, err := aggregator.Lookup(name)
	if err != nil {
		return nil, err
	}
	var attr expr.Expression
	if attribute != "" {
		if attr, err = expr.Parse(attribute); err != nil {
			return nil, err
		}
	} else if a != aggregator.Count {
		return nil, fmt.Errorf("%s needs an attribute", a)
	}
	if _, err := a.Create(attr); err != nil {
		return nil, err
	}
	return e.run(ctx, sources, func() visitor.FeatureCalc {
		calc, _ := a.Create(attr)
		return calc
	})
}

// GroupBy runs the group-by described by cfg over the records matching its
// filter. An empty input yields an empty result rather than NullResult.
func (e *Engine) GroupBy(ctx context.Context, cfg *aggregator.GroupByConfig, sources ...collector.RecordSource) (*aggregator.GroupByResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("group by: no configuration")
	}
	first, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	filter, err := cfg.Where()
	if err != nil {
		return nil, err
	}
	r, err := e.run(ctx, collector.WhereAll(sources, filter), func() visitor.FeatureCalc {
		v, _ := cfg.Build()
		return v
	})
	if err != nil {
		return nil, err
	}
	if visitor.IsNull(r) {
		return first.GroupByResult(), nil
	}
	g, ok := r.(*aggregator.GroupByResult)
	if !ok {
		return nil, fmt.Errorf("group by: unexpected result %T", r)
	}
	return g, nil
}

// GroupByDocument parses a YAML or JSON group-by configuration and runs it.
func (e *Engine) GroupByDocument(ctx context.Context, doc []byte, sources ...collector.RecordSource) (*aggregator.GroupByResult, error) {
	cfg, err := aggregator.LoadGroupByConfig(doc)
	if err != nil {
		return nil, err
	}
	return e.GroupBy(ctx, cfg, sources...)
}

// Records wraps an in-memory slice as sources, split into the number of
// partitions the engine is configured with.
func (e *Engine) Records(records []interface{}) []collector.RecordSource {
	return collector.Partition(records, e.partitions)
}

func (e *Engine) run(ctx context.Context, sources []collector.RecordSource, newCalc func() visitor.FeatureCalc) (visitor.CalcResult, error) {
	log.Debug("scanning %d sources with concurrency %d", len(sources), e.concurrency)
	return collector.AcceptPartitions(ctx, sources, newCalc, collector.WithConcurrency(e.concurrency))
}

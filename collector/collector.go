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

package collector

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rulego/featureagg/expr"
	"github.com/rulego/featureagg/logger"
	"github.com/rulego/featureagg/visitor"
)

var log = logger.Named("collector")

// RecordSource yields records one at a time. Next reports ok == false once
// the source is exhausted.
type RecordSource interface {
	Next(ctx context.Context) (record interface{}, ok bool, err error)
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []interface{}
	pos     int
}

func NewSliceSource(records ...interface{}) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next(context.Context) (interface{}, bool, error) {
	if s.pos >= len(s.records) {
		return nil, false, nil
	}
	r := s.records[s.pos]
	s.pos++
	return r, true, nil
}

// SourceFunc adapts a function to RecordSource.
type SourceFunc func(ctx context.Context) (interface{}, bool, error)

func (f SourceFunc) Next(ctx context.Context) (interface{}, bool, error) {
	return f(ctx)
}

// Where passes on the records of source that match filter. A filter that
// fails to evaluate stops the source with its error.
func Where(source RecordSource, filter *expr.Filter) RecordSource {
	if filter == nil {
		return source
	}
	return SourceFunc(func(ctx context.Context) (interface{}, bool, error) {
		for {
			record, ok, err := source.Next(ctx)
			if err != nil || !ok {
				return record, ok, err
			}
			match, err := filter.Match(record)
			if err != nil {
				return nil, false, err
			}
			if match {
				return record, true, nil
			}
		}
	})
}

// WhereAll applies filter to every source.
func WhereAll(sources []RecordSource, filter *expr.Filter) []RecordSource {
	out := make([]RecordSource, len(sources))
	for i, s := range sources {
		out[i] = Where(s, filter)
	}
	return out
}

// Partition splits records into at most n contiguous sources of nearly equal
// size.
func Partition(records []interface{}, n int) []RecordSource {
	if n < 1 {
		n = 1
	}
	if n > len(records) {
		n = len(records)
	}
	sources := make([]RecordSource, 0, n)
	for i := 0; i < n; i++ {
		lo := i * len(records) / n
		hi := (i + 1) * len(records) / n
		sources = append(sources, NewSliceSource(records[lo:hi]...))
	}
	return sources
}

// Collector feeds records to a single accumulator. It is not safe for
// concurrent use.
type Collector struct {
	calc    visitor.FeatureCalc
	visited int
}

func NewCollector(calc visitor.FeatureCalc) *Collector {
	return &Collector{calc: calc}
}

// Collect visits one record.
func (c *Collector) Collect(ctx context.Context, record interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.calc.Visit(record); err != nil {
		return fmt.Errorf("record %d: %w", c.visited, err)
	}
	c.visited++
	return nil
}

// Drain collects every record of source.
func (c *Collector) Drain(ctx context.Context, source RecordSource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, ok, err := source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := c.Collect(ctx, record); err != nil {
			return err
		}
	}
}

// Visited returns the number of records collected since the last reset.
func (c *Collector) Visited() int {
	return c.visited
}

func (c *Collector) Result() (visitor.CalcResult, error) {
	return visitor.ResultOf(c.calc)
}

func (c *Collector) Reset() {
	c.calc.Reset()
	c.visited = 0
}

// Accept visits every record of source with calc and returns its result.
// Cancellation is checked between records.
func Accept(ctx context.Context, source RecordSource, calc visitor.FeatureCalc) (visitor.CalcResult, error) {
	c := NewCollector(calc)
	if err := c.Drain(ctx, source); err != nil {
		return nil, err
	}
	log.Debug("accepted %d records", c.Visited())
	return c.Result()
}

type options struct {
	concurrency int
}

// Option configures AcceptPartitions.
type Option func(*options)

// WithConcurrency bounds the number of partitions visited at once. Zero or
// less means one goroutine per partition.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// AcceptPartitions visits every source with its own accumulator on its own
// goroutine, then merges the partial results in source order. The first
// failure cancels the remaining partitions.
func AcceptPartitions(ctx context.Context, sources []RecordSource, newCalc func() visitor.FeatureCalc, opts ...Option) (visitor.CalcResult, error) {
	if newCalc == nil {
		return nil, errors.New("collector: no accumulator factory")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	results := make([]visitor.CalcResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			r, err := Accept(gctx, source, newCalc())
			if err != nil {
				return fmt.Errorf("partition %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("partitioned visit failed: %v", err)
		return nil, err
	}
	merged, err := visitor.MergeAll(results...)
	if err != nil {
		return nil, fmt.Errorf("merge partitions: %w", err)
	}
	log.Debug("merged %d partitions", len(sources))
	return merged, nil
}

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

/*
Package aggregator provides the aggregate registry and the group-by engine.

# Core Features

• Aggregate Registry - Average, Count, Max, Median, Min, StdDev, Sum and SumArea
• Permissive Lookup - names match ignoring case and underscores ("avg", "std_dev")
• Group-By - one accumulator per distinct tuple of grouping values
• Precomputed Rows - backend rows injected with SetValue merge with visited groups
• Mergeable Results - group-by results from separate partitions merge key by key
• Configuration - builder API and YAML/JSON configuration

# Aggregates

Every aggregate creates a fresh accumulator and, where possible, wraps a scalar
computed elsewhere into a mergeable result:

	acc, err := aggregator.Sum.Create(expr.NewProperty("energy"))
	res, err := aggregator.Max.Wrap(expr.NewProperty("energy"), 500.0)

Average, Median and StdDev cannot be rebuilt from a scalar; Wrap fails with
visitor.ErrUnsupportedWrap.

# Group-By

	v, err := aggregator.NewBuilder().
		WithAggregateAttribute("energy_consumption").
		WithAggregateVisitor("Average").
		WithGroupByAttribute("building_type").
		Build()
	for _, record := range records {
		if err := v.Visit(record); err != nil {
			return err
		}
	}
	rows := v.GroupByResult().ToArray() // [building_type, average] per group

Two group-by results merge only when they share the aggregate and the grouping
expressions. Groups present in one result only pass through; groups present
in both merge their per-group results.

# Configuration

	aggregate: average
	attribute: energy_consumption
	groupBy:
	  - building_type
	filter: energy_consumption > 0

LoadGroupByConfig reads the document above in YAML or JSON form. Where compiles
the optional filter; records failing it are left out of every group.
*/
package aggregator

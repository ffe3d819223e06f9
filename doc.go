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
Package featureagg computes mergeable aggregates over collections of records.

Records are opaque values such as maps, structs or anything implementing
expr.PropertyGetter. Attributes are read through expressions: a plain name,
a nested path like "site.zone" or "rooms[0].area", or an expr-lang
expression like "energy / 1000".

# Core Features

• Streaming Visitors - count, sum, average, min, max, median, standard deviation,
unique values, nearest value, bounds, quantile and equal area classification
• Mergeable Results - partial results from separate partitions merge into the
result a single scan would have produced
• Numeric Promotion - Integer, Long, Float, Double and String operands promote to
a common class before arithmetic and comparison
• Group-By - any aggregate computed per distinct tuple of grouping values
• Partitioned Scans - sources are scanned concurrently and merged in order
• Configuration - group-by described in YAML or JSON

# Getting Started

	engine := featureagg.New(featureagg.WithPartitions(4))
	sources := engine.Records(records)

	total, err := engine.Aggregate(ctx, "sum", "energy_consumption", sources...)
	if err != nil {
		return err
	}
	fmt.Println(total.Value())

	doc := []byte(`
	aggregate: average
	attribute: energy_consumption
	groupBy: [building_type]
	`)
	groups, err := engine.GroupByDocument(ctx, doc, engine.Records(records)...)
	if err != nil {
		return err
	}
	groups.WriteTable(os.Stdout)

# Packages

The visitor package holds the accumulators and their results, aggregator the
aggregate registry and the group-by engine, and collector the drivers feeding
record sources to accumulators. Engine wires the three together.
*/
package featureagg

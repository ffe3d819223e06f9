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
Package visitor provides streaming accumulators over record collections and
the mergeable results they produce.

Every accumulator implements FeatureCalc: Visit folds a record, Result
snapshots the state as an immutable CalcResult and Reset starts over. The
intended concurrency pattern is one accumulator per partition, with the
partial results merged afterwards:

	left := visitor.NewSumVisitor(expr.NewProperty("energy"))
	right := visitor.NewSumVisitor(expr.NewProperty("energy"))
	// ... visit each partition ...
	total, err := left.Result().Merge(right.Result())

NullResult is the merge identity. Results of different kinds merge only where
the combination is meaningful: a SumResult merged with a CountResult yields
an AverageResult. Averages and medians injected through SetValue are
"optimized" and refuse to merge.

Numeric operands are promoted along String > Double > Float > Long > Integer,
where Integer is int and the narrow integer types, Long is int64 and the wide
unsigned types, Float is float32 and Double is float64.
*/
package visitor

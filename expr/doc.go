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
Package expr evaluates values out of records for the aggregation visitors.

Records are opaque to the engine. An Expression turns a record into a
dynamically typed scalar (number, string, time, geometry or nil) and must be
free of side effects.

# Expression Kinds

	Property  - reads one named attribute from a map, struct, PropertyGetter or PropertyMap
	Literal   - a constant value
	Compiled  - any expr-lang/expr program evaluated with the record attributes as environment

Parse picks the cheapest kind for a source string:

	e, _ := expr.Parse("energy_consumption")       // *Property
	e, _ := expr.Parse("site.rooms[0].area")       // *Property walking a nested path
	e, _ := expr.Parse("energy_consumption * 1000") // *Compiled

Undefined attributes evaluate to nil in both kinds, matching how visitors
treat absent values.

# Filters

A Filter is a boolean expr-lang program used to select records before they
are visited. Besides the expr-lang operators it offers like_match(text,
pattern) with SQL LIKE wildcards and is_null(value):

	f, _ := expr.NewFilter("like_match(building_type, 'SCHOOL%') && !is_null(energy)")
	ok, err := f.Match(record)
*/
package expr

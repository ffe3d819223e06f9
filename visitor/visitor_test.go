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

package visitor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/featureagg/expr"
	"github.com/rulego/featureagg/geom"
)

var attr = expr.NewProperty("v")

func records(values ...interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = map[string]interface{}{"v": v}
	}
	return out
}

func visitAll(t *testing.T, calc FeatureCalc, values ...interface{}) CalcResult {
	t.Helper()
	for _, r := range records(values...) {
		require.NoError(t, calc.Visit(r))
	}
	return calc.Result()
}

func merge(t *testing.T, a, b CalcResult) CalcResult {
	t.Helper()
	require.True(t, a.IsCompatible(b))
	out, err := a.Merge(b)
	require.NoError(t, err)
	return out
}

func TestPartitionedMergeMatchesFullScan(t *testing.T) {
	left := []interface{}{1, 2, 3}
	right := []interface{}{4, 5, 6}

	tests := []struct {
		name string
		calc func() FeatureCalc
		want interface{}
	}{
		{"sum", func() FeatureCalc { return NewSumVisitor(attr) }, 21},
		{"count", func() FeatureCalc { return NewCountVisitor() }, 6},
		{"max", func() FeatureCalc { return NewMaxVisitor(attr) }, 6},
		{"min", func() FeatureCalc { return NewMinVisitor(attr) }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := visitAll(t, tt.calc(), left...)
			b := visitAll(t, tt.calc(), right...)
			full := visitAll(t, tt.calc(), append(append([]interface{}{}, left...), right...)...)

			assert.Equal(t, tt.want, merge(t, a, b).Value())
			assert.Equal(t, full.Value(), merge(t, b, a).Value())
		})
	}
}

func TestNullResultIdentity(t *testing.T) {
	avg, err := NewAverageResultFromCountSum(4, 10)
	require.NoError(t, err)
	results := []CalcResult{
		NewSumResult(21),
		NewCountResult(6),
		avg,
		NewOptimizedAverageResult(2.5),
		NewMinResult(1),
		NewMaxResult(6),
		NewUniqueResult("a", "b"),
		NewMedianResult(1, 2, 3),
		NewOptimizedMedianResult(2),
		NewBoundsResult(geom.NewEnvelope(0, 1, 0, 1)),
		&StdDevResult{value: 2},
		&NearestResult{value: 7},
		&BinsResult{bins: [][]interface{}{{1}, {2}}},
	}
	for _, r := range results {
		left, err := r.Merge(NullResult)
		require.NoError(t, err)
		right, err := NullResult.Merge(r)
		require.NoError(t, err)
		assert.Equal(t, r.Value(), left.Value(), "%v", r)
		assert.Equal(t, r.Value(), right.Value(), "%v", r)
	}
}

func TestSumVisitor(t *testing.T) {
	t.Run("integer and double promote", func(t *testing.T) {
		a := visitAll(t, NewSumVisitor(attr), 1)
		b := visitAll(t, NewSumVisitor(attr), 2.5)
		assert.Equal(t, 3.5, merge(t, a, b).Value())
	})

	t.Run("nulls skipped", func(t *testing.T) {
		assert.Equal(t, 3, visitAll(t, NewSumVisitor(attr), 1, nil, 2).Value())
	})

	t.Run("never visited", func(t *testing.T) {
		assert.True(t, IsNull(visitAll(t, NewSumVisitor(attr), nil, nil)))
	})

	t.Run("integral sums wrap around", func(t *testing.T) {
		assert.Equal(t, math.MinInt, visitAll(t, NewSumVisitor(attr), math.MaxInt, 1).Value())
		assert.Equal(t, int64(math.MinInt64), visitAll(t, NewSumVisitor(attr), int64(math.MaxInt64), int64(1)).Value())

		a := visitAll(t, NewSumVisitor(attr), math.MaxInt)
		b := visitAll(t, NewSumVisitor(attr), 1)
		assert.Equal(t, math.MinInt, merge(t, a, b).Value())
	})

	t.Run("strategy fixed by first value", func(t *testing.T) {
		assert.Equal(t, float32(3.5), visitAll(t, NewSumVisitor(attr), float32(1), 2.5).Value())
	})

	t.Run("non numeric value", func(t *testing.T) {
		v := NewSumVisitor(attr)
		assert.Error(t, v.Visit(map[string]interface{}{"v": "x"}))
	})

	t.Run("set value and reset", func(t *testing.T) {
		v := NewSumVisitor(attr)
		require.NoError(t, v.SetValue(int64(40)))
		assert.Equal(t, int64(42), visitAll(t, v, 2).Value())
		v.Reset()
		assert.True(t, IsNull(v.Result()))
	})
}

func TestAverageReconstruction(t *testing.T) {
	avg := merge(t, NewSumResult(21), NewCountResult(6))
	require.IsType(t, &AverageResult{}, avg)
	assert.Equal(t, 3.5, avg.Value())

	avg = merge(t, NewCountResult(6), NewSumResult(21))
	assert.Equal(t, 3.5, avg.Value())

	more, err := NewAverageResultFromCountSum(2, 11)
	require.NoError(t, err)
	assert.Equal(t, 4.0, merge(t, avg, more).Value())
}

func TestAverageVisitor(t *testing.T) {
	t.Run("partitions", func(t *testing.T) {
		a := visitAll(t, NewAverageVisitor(attr), 1, 2)
		b := visitAll(t, NewAverageVisitor(attr), 3, nil, 4)
		assert.Equal(t, 2.5, merge(t, a, b).Value())
	})

	t.Run("float strategy", func(t *testing.T) {
		assert.Equal(t, float32(1.5), visitAll(t, NewAverageVisitor(attr), float32(1), float32(2)).Value())
	})

	t.Run("count and sum injection merges", func(t *testing.T) {
		v := NewAverageVisitor(attr)
		require.NoError(t, v.SetCountSum(4, 10))
		other := visitAll(t, NewAverageVisitor(attr), 5)
		assert.Equal(t, 3.0, merge(t, v.Result(), other).Value())
	})

	t.Run("optimized average refuses to merge", func(t *testing.T) {
		v := NewAverageVisitor(attr)
		v.SetValue(3.0)
		optimized := v.Result()
		assert.Equal(t, 3.0, optimized.Value())

		plain := visitAll(t, NewAverageVisitor(attr), 1, 2)
		_, err := optimized.Merge(plain)
		assert.ErrorIs(t, err, ErrIllegalOptimizedMerge)
		_, err = plain.Merge(optimized)
		assert.ErrorIs(t, err, ErrIllegalOptimizedMerge)
		_, err = optimized.Merge(NewOptimizedAverageResult(1.0))
		assert.ErrorIs(t, err, ErrIllegalOptimizedMerge)
	})

	t.Run("incompatible with sum", func(t *testing.T) {
		avg := visitAll(t, NewAverageVisitor(attr), 1)
		assert.False(t, avg.IsCompatible(NewSumResult(1)))
		_, err := avg.Merge(NewSumResult(1))
		assert.ErrorIs(t, err, ErrIncompatibleMerge)
	})
}

func TestCountVisitor(t *testing.T) {
	v := NewCountVisitor()
	assert.True(t, IsNull(v.Result()))
	assert.Equal(t, 3, visitAll(t, v, 1, nil, "x").Value())

	v.SetValue(10)
	assert.Equal(t, 10, v.Count())
	v.Reset()
	assert.True(t, IsNull(v.Result()))

	_, err := NewCountResult(1).Merge(NewMaxResult(2))
	assert.ErrorIs(t, err, ErrIncompatibleMerge)
}

func TestMinMaxVisitor(t *testing.T) {
	t.Run("nan and null excluded", func(t *testing.T) {
		v := NewMaxVisitor(attr)
		r := visitAll(t, v, 1.0, math.NaN(), nil, 5.0)
		assert.Equal(t, 5.0, r.Value())
		assert.Equal(t, 1, v.NaNCount())
		assert.Equal(t, 1, v.NullCount())

		m := NewMinVisitor(attr)
		assert.Equal(t, -2.0, visitAll(t, m, math.Inf(1), 3.0, -2.0).Value())
		assert.Equal(t, 1, m.NaNCount())
	})

	t.Run("mixed classes promote", func(t *testing.T) {
		assert.Equal(t, 2.5, visitAll(t, NewMaxVisitor(attr), 1, 2.5, int64(2)).Value())
		assert.Equal(t, 1.0, visitAll(t, NewMinVisitor(attr), 1, 2.5).Value())
		assert.Equal(t, "b", visitAll(t, NewMaxVisitor(attr), "a", "b").Value())
	})

	t.Run("merge promotes", func(t *testing.T) {
		assert.Equal(t, int64(9), merge(t, NewMaxResult(3), NewMaxResult(int64(9))).Value())
		assert.Equal(t, 1.5, merge(t, NewMinResult(2), NewMinResult(1.5)).Value())
	})

	t.Run("premature access", func(t *testing.T) {
		_, err := NewMaxVisitor(attr).Max()
		assert.ErrorIs(t, err, ErrPrematureResultAccess)
		_, err = NewMinVisitor(attr).Min()
		assert.ErrorIs(t, err, ErrPrematureResultAccess)
		assert.True(t, IsNull(NewMinVisitor(attr).Result()))
	})

	t.Run("direct access and set value", func(t *testing.T) {
		v := NewMinVisitor(attr)
		visitAll(t, v, 4, 2)
		got, err := v.Min()
		require.NoError(t, err)
		assert.Equal(t, 2, got)
		v.SetValue(-1)
		assert.Equal(t, -1, v.Result().Value())
	})

	t.Run("non comparable value", func(t *testing.T) {
		err := NewMaxVisitor(attr).Visit(map[string]interface{}{"v": struct{}{}})
		assert.ErrorIs(t, err, ErrNonComparableInput)
	})

	t.Run("min and max do not merge", func(t *testing.T) {
		_, err := NewMinResult(1).Merge(NewMaxResult(2))
		assert.ErrorIs(t, err, ErrIncompatibleMerge)
	})
}

func TestStdDevVisitor(t *testing.T) {
	values := []interface{}{2, 4, 4, 4, 5, 5, 7, 9}

	t.Run("known mean", func(t *testing.T) {
		r := visitAll(t, NewStdDevVisitor(attr, 5), values...)
		assert.Equal(t, 2.0, r.Value())
	})

	t.Run("online", func(t *testing.T) {
		v := NewOnlineStdDevVisitor(attr)
		r := visitAll(t, v, append(values, nil, math.NaN())...)
		assert.InDelta(t, 2.0, r.Value().(float64), 1e-12)
		assert.Equal(t, 8, v.Count())
		assert.Equal(t, 1, v.NaNCount())
		assert.Equal(t, 1, v.NullCount())
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, IsNull(NewOnlineStdDevVisitor(attr).Result()))
	})

	t.Run("not mergeable", func(t *testing.T) {
		r := visitAll(t, NewOnlineStdDevVisitor(attr), 1, 2)
		assert.False(t, r.IsCompatible(r))
		_, err := r.Merge(r)
		assert.ErrorIs(t, err, ErrIncompatibleMerge)
	})
}

func TestUniqueVisitor(t *testing.T) {
	t.Run("sorted by default", func(t *testing.T) {
		r := visitAll(t, NewUniqueVisitor(attr), "b", "a", "b", nil, "c")
		list, ok := ToList(r)
		require.True(t, ok)
		assert.Equal(t, []interface{}{"a", "b", "c"}, list)
	})

	t.Run("preserve order and paging", func(t *testing.T) {
		v := NewUniqueVisitor(attr)
		v.SetPreserveOrder(true)
		r := visitAll(t, v, "b", "a", "b", "c")
		list, _ := ToList(r)
		assert.Equal(t, []interface{}{"b", "a", "c"}, list)

		v.SetPaging(1, 1)
		list, _ = ToList(v.Result())
		assert.Equal(t, []interface{}{"a"}, list)
	})

	t.Run("merge is a union", func(t *testing.T) {
		a := visitAll(t, NewUniqueVisitor(attr), 1, 2)
		b := visitAll(t, NewUniqueVisitor(attr), 2, 3)
		set, ok := ToSet(merge(t, a, b))
		require.True(t, ok)
		assert.Equal(t, 3, set.Len())
		assert.True(t, set.Contains(3))
		assert.False(t, set.Contains(int64(3)))
	})

	t.Run("empty", func(t *testing.T) {
		assert.True(t, IsNull(visitAll(t, NewUniqueVisitor(attr), nil)))
	})

	t.Run("unique count", func(t *testing.T) {
		v := NewUniqueCountVisitor(attr)
		r := visitAll(t, v, "x", "y", "x")
		assert.Equal(t, 2, r.Value())
		assert.Equal(t, 5, merge(t, r, NewCountResult(3)).Value())

		v.SetValue(7)
		assert.Equal(t, 7, v.Result().Value())
		v.Reset()
		assert.True(t, IsNull(v.Result()))
	})
}

func TestSumAreaVisitor(t *testing.T) {
	square := geom.Polygon{Shell: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}}
	big := geom.Polygon{Shell: []geom.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}}
	r := visitAll(t, NewSumAreaVisitor(attr), square, big, -3.0, nil, 2)
	assert.Equal(t, 7.0, r.Value())
	assert.Equal(t, 10.0, merge(t, r, NewSumResult(3.0)).Value())
}

func TestNearestVisitor(t *testing.T) {
	t.Run("numbers", func(t *testing.T) {
		assert.Equal(t, 7, visitAll(t, NewNearestVisitor(attr, 8), 1, 12, 7).Value())
	})

	t.Run("exact match short circuits", func(t *testing.T) {
		v := NewNearestVisitor(attr, 8)
		visitAll(t, v, 3, 8)
		require.NoError(t, v.Visit(map[string]interface{}{"v": "not a number"}))
		assert.Equal(t, 8, v.Nearest())
	})

	t.Run("times", func(t *testing.T) {
		t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		r := visitAll(t, NewNearestVisitor(attr, t0), t0.Add(5*time.Minute), t0.Add(-2*time.Minute))
		assert.Equal(t, t0.Add(-2*time.Minute), r.Value())
	})

	t.Run("geometries", func(t *testing.T) {
		r := visitAll(t, NewNearestVisitor(attr, geom.Point{}), geom.Point{X: 3, Y: 4}, geom.Point{X: 1, Y: 1})
		assert.Equal(t, geom.Point{X: 1, Y: 1}, r.Value())
	})

	t.Run("strings pick the closer side", func(t *testing.T) {
		r := visitAll(t, NewNearestVisitor(attr, "mango"), "apple", "zebra", "melon")
		assert.Equal(t, "melon", r.Value())
	})

	t.Run("only one side", func(t *testing.T) {
		assert.Equal(t, "b", visitAll(t, NewNearestVisitor(attr, "z"), "a", "b").Value())
	})

	t.Run("nothing visited and reset", func(t *testing.T) {
		v := NewNearestVisitor(attr, 1)
		assert.True(t, IsNull(v.Result()))
		visitAll(t, v, 1)
		v.Reset()
		assert.Nil(t, v.Nearest())
	})

	t.Run("not mergeable", func(t *testing.T) {
		r := visitAll(t, NewNearestVisitor(attr, 1), 2)
		_, err := r.Merge(r)
		assert.ErrorIs(t, err, ErrIncompatibleMerge)
	})
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/featureagg/geom"
)

func TestNumericCoercions(t *testing.T) {
	sum := NewSumResult(21)

	i, ok := ToInt(sum)
	assert.True(t, ok)
	assert.Equal(t, 21, i)

	l, ok := ToLong(sum)
	assert.True(t, ok)
	assert.Equal(t, int64(21), l)

	f, ok := ToFloat(NewSumResult(2.5))
	assert.True(t, ok)
	assert.Equal(t, float32(2.5), f)

	d, ok := ToDouble(NewCountResult(6))
	assert.True(t, ok)
	assert.Equal(t, 6.0, d)

	i, ok = ToInt(NewUniqueResult("a"))
	assert.False(t, ok)
	assert.Zero(t, i)

	_, ok = ToDouble(NullResult)
	assert.False(t, ok)

	_, ok = ToBool(NewMaxResult(true))
	assert.True(t, ok)
}

func TestGeometryCoercions(t *testing.T) {
	bounds := NewBoundsResult(geom.NewEnvelope(0, 2, 0, 4))

	g, ok := ToGeometry(bounds)
	require.True(t, ok)
	assert.Equal(t, 8.0, g.Area())

	p, ok := ToPoint(bounds)
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 1, Y: 2}, p)

	_, ok = ToPoint(NullResult)
	assert.False(t, ok)

	env, ok := ToEnvelope(NewSumResult(1))
	assert.False(t, ok)
	assert.True(t, env.IsEmpty())
}

func TestCollectionCoercions(t *testing.T) {
	median := NewMedianResult(3, 1)

	list, ok := ToList(NewUniqueResult(2, 1))
	require.True(t, ok)
	assert.Equal(t, []interface{}{1, 2}, list)

	set, ok := ToSet(NewMaxResult([]string{"a", "b", "a"}))
	require.True(t, ok)
	assert.Equal(t, 2, set.Len())

	arr, ok := ToArray(NewMaxResult([]int{1, 2}))
	require.True(t, ok)
	assert.Equal(t, []interface{}{1, 2}, arr)

	_, ok = ToList(median)
	assert.False(t, ok)

	m, ok := ToMap(NewMaxResult(map[string]interface{}{"k": 1}))
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"k": 1}, m)

	_, ok = ToMap(median)
	assert.False(t, ok)
}

func TestMergeAll(t *testing.T) {
	r, err := MergeAll(NullResult, NewSumResult(1), nil, NewSumResult(2), NewCountResult(3))
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Value())

	r, err = MergeAll()
	require.NoError(t, err)
	assert.True(t, IsNull(r))

	_, err = MergeAll(NewSumResult(1), NewMinResult(2))
	assert.ErrorIs(t, err, ErrIncompatibleMerge)
}

func TestValueSet(t *testing.T) {
	s := NewValueSet(1, "1", 1, nil)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("1"))
	assert.True(t, s.Contains(nil))
	assert.False(t, s.Contains(1.0))

	u := s.Union(NewValueSet(2, 1))
	assert.Equal(t, []interface{}{1, "1", nil, 2}, u.Values())
	assert.Equal(t, 3, s.Len())
}

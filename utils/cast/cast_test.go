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

package cast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		expect Class
	}{
		{"int", 1, ClassInteger},
		{"int8", int8(1), ClassInteger},
		{"int32", int32(1), ClassInteger},
		{"uint16", uint16(1), ClassInteger},
		{"int64", int64(1), ClassLong},
		{"uint64", uint64(1), ClassLong},
		{"float32", float32(1), ClassFloat},
		{"float64", 1.0, ClassDouble},
		{"string", "1", ClassString},
		{"time", time.Now(), ClassUnknown},
		{"nil", nil, ClassUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ClassOf(tt.input))
		})
	}
}

func TestBestClass(t *testing.T) {
	c, ok := BestClass(1, 2.5)
	assert.True(t, ok)
	assert.Equal(t, ClassDouble, c)

	c, ok = BestClass(int64(1), float32(2))
	assert.True(t, ok)
	assert.Equal(t, ClassFloat, c)

	c, ok = BestClass(1, "a", 2.0)
	assert.True(t, ok)
	assert.Equal(t, ClassString, c)

	c, ok = BestClass(1, int64(2))
	assert.True(t, ok)
	assert.Equal(t, ClassLong, c)

	_, ok = BestClass(time.Now(), nil)
	assert.False(t, ok)
}

func TestConvert(t *testing.T) {
	v, err := Convert(3.9, ClassInteger)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = Convert(7, ClassLong)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = Convert(2, ClassFloat)
	require.NoError(t, err)
	assert.Equal(t, float32(2), v)

	v, err = Convert(int64(5), ClassDouble)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	v, err = Convert(12, ClassString)
	require.NoError(t, err)
	assert.Equal(t, "12", v)

	v, err = Convert("2.5", ClassDouble)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = Convert("abc", ClassInteger)
	assert.Error(t, err)

	_, err = Convert(1, ClassUnknown)
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestToFloatAndNaN(t *testing.T) {
	f, ok := ToFloat(int64(4))
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)

	_, ok = ToFloat("4")
	assert.False(t, ok)

	assert.True(t, IsNaNOrInf(math.NaN()))
	assert.True(t, IsNaNOrInf(float32(math.Inf(-1))))
	assert.False(t, IsNaNOrInf(1.5))
	assert.False(t, IsNaNOrInf(1))
}

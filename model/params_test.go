// Copyright 2025 latrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"testing"

	"github.com/latrec-io/latrec/config"
	"github.com/stretchr/testify/assert"
)

func TestParams_Copy(t *testing.T) {
	// Create parameters
	a := Params{
		NFactors:    1,
		Lr:          float32(0.1),
		RandomState: 0,
	}
	// Create copy
	b := a.Copy()
	b[NFactors] = 2
	b[Lr] = float32(0.2)
	b[RandomState] = 1
	// Check original parameters
	assert.Equal(t, 1, a.GetInt(NFactors, -1))
	assert.Equal(t, float32(0.1), a.GetFloat32(Lr, -0.1))
	assert.Equal(t, int64(0), a.GetInt64(RandomState, -1))
	// Check copy parameters
	assert.Equal(t, 2, b.GetInt(NFactors, -1))
	assert.Equal(t, float32(0.2), b.GetFloat32(Lr, -0.1))
	assert.Equal(t, int64(1), b.GetInt64(RandomState, -1))
}

func TestParams_GetFloat32(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, float32(0.1), p.GetFloat32(Lr, 0.1))
	// Normal case
	p[Lr] = float32(1.0)
	assert.Equal(t, float32(1.0), p.GetFloat32(Lr, 0.1))
	// Converted cases
	p[Lr] = 1.0
	assert.Equal(t, float32(1.0), p.GetFloat32(Lr, 0.1))
	p[Lr] = 1
	assert.Equal(t, float32(1.0), p.GetFloat32(Lr, 0.1))
	// Wrong type case
	p[Lr] = "hello"
	assert.Equal(t, float32(0.1), p.GetFloat32(Lr, 0.1))
}

func TestParams_GetInt(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, -1, p.GetInt(NFactors, -1))
	// Normal case
	p[NFactors] = 0
	assert.Equal(t, 0, p.GetInt(NFactors, -1))
	// Wrong type case
	p[NFactors] = "hello"
	assert.Equal(t, -1, p.GetInt(NFactors, -1))
}

func TestParams_GetInt64(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, int64(-1), p.GetInt64(RandomState, -1))
	// Normal case
	p[RandomState] = int64(0)
	assert.Equal(t, int64(0), p.GetInt64(RandomState, -1))
	// Converted case
	p[RandomState] = 0
	assert.Equal(t, int64(0), p.GetInt64(RandomState, -1))
	// Wrong type case
	p[RandomState] = "hello"
	assert.Equal(t, int64(-1), p.GetInt64(RandomState, -1))
}

func TestParams_GetBool(t *testing.T) {
	p := Params{}
	// Empty case
	assert.True(t, p.GetBool(DropoutP, true))
	// Normal case
	p[DropoutP] = false
	assert.False(t, p.GetBool(DropoutP, true))
	// Wrong type case
	p[DropoutP] = "hello"
	assert.True(t, p.GetBool(DropoutP, true))
}

func TestParams_GetString(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, "default", p.GetString(InitMean, "default"))
	// Normal case
	p[InitMean] = "value"
	assert.Equal(t, "value", p.GetString(InitMean, "default"))
	// Wrong type case
	p[InitMean] = 1
	assert.Equal(t, "default", p.GetString(InitMean, "default"))
}

func TestNewParamsFromConfig(t *testing.T) {
	conf := config.GetDefaultConfig()
	conf.Model.NFactors = 16
	conf.Train.Lr = 0.05
	conf.Train.RandomState = 7
	params := NewParamsFromConfig(conf)
	assert.Equal(t, 16, params.GetInt(NFactors, -1))
	assert.Equal(t, float32(0.05), params.GetFloat32(Lr, -1))
	assert.Equal(t, int64(7), params.GetInt64(RandomState, -1))
	assert.Equal(t, 1024, params.GetInt(BatchSize, -1))
}

func TestParams_Overwrite(t *testing.T) {
	a := Params{
		NFactors: 10,
		NEpochs:  5,
	}
	b := Params{
		NEpochs: 20,
		Lr:      float32(0.01),
	}
	merged := a.Overwrite(b)
	assert.Equal(t, 10, merged.GetInt(NFactors, -1))
	assert.Equal(t, 20, merged.GetInt(NEpochs, -1))
	assert.Equal(t, float32(0.01), merged.GetFloat32(Lr, -1))
	// The receiver must stay untouched.
	assert.Equal(t, 5, a.GetInt(NEpochs, -1))
}

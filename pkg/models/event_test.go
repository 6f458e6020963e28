/*
 * Copyright 2025 Skytrace Systems.
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

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventFlagsPairingBits(t *testing.T) {
	assert.True(t, (FlagTakeoff | FlagFlying).IsTakeoff())
	assert.False(t, (FlagTakeoff | FlagFlying).IsLanding())
	assert.True(t, (FlagLanding | FlagEngineStop).IsLanding())

	touchAndGo := FlagTakeoff | FlagLanding
	assert.True(t, touchAndGo.IsTakeoff())
	assert.True(t, touchAndGo.IsLanding())
}

func TestEventFlagsNames(t *testing.T) {
	flags := FlagEngineStart | FlagTakeoff | FlagFlushAndLink

	assert.Equal(t, []string{"EngineStart", "Takeoff", "FlushAndLink"}, flags.Names())
	assert.Equal(t, "EngineStart,Takeoff,FlushAndLink", flags.String())
}

func TestEventFlagsUnknownBitsKept(t *testing.T) {
	flags := FlagTakeoff | EventFlags(1<<12)

	assert.True(t, flags.IsTakeoff())
	assert.True(t, flags.Has(EventFlags(1<<12)))
	assert.Equal(t, []string{"Takeoff"}, flags.Names())
}

func TestEventFlagsNone(t *testing.T) {
	assert.Empty(t, EventFlags(0).Names())
	assert.Equal(t, "None", EventFlags(0).String())
}

func TestLogTime(t *testing.T) {
	tests := []struct {
		totalTime int64
		want      string
	}{
		{0, "0:00:00"},
		{1000, "0:00:01"},
		{61000, "0:01:01"},
		{5400000, "1:30:00"},
		{360000000, "100:00:00"},
	}

	for _, tt := range tests {
		e := Event{TotalTime: tt.totalTime}
		assert.Equal(t, tt.want, e.LogTime())
	}
}

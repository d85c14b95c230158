package app

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"freqcount/pkg/app/config"
	"freqcount/pkg/monitor"
	"freqcount/pkg/mqtt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExceeds(t *testing.T) {
	t0 := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	last := monitor.Snapshot{Time: t0, Frequency: 50, DutyCycle: 0.5}

	tests := map[string]struct {
		current monitor.Snapshot
		want    bool
	}{
		"unchanged": {
			current: monitor.Snapshot{Time: t0.Add(time.Second), Frequency: 50.5, DutyCycle: 0.52},
		},
		"interval elapsed": {
			current: monitor.Snapshot{Time: t0.Add(time.Minute), Frequency: 50, DutyCycle: 0.5},
			want:    true,
		},
		"frequency changed": {
			current: monitor.Snapshot{Time: t0.Add(time.Second), Frequency: 51, DutyCycle: 0.5},
			want:    true,
		},
		"duty cycle changed": {
			current: monitor.Snapshot{Time: t0.Add(time.Second), Frequency: 50, DutyCycle: 0.4},
			want:    true,
		},
		"signal lost": {
			current: monitor.Snapshot{Time: t0.Add(time.Second), Frequency: 0, DutyCycle: 1, Period: math.Inf(1)},
			want:    true,
		},
		"measurement failed": {
			current: monitor.Snapshot{Time: t0.Add(time.Second), Frequency: 50, DutyCycle: 0.5, Err: "wait for edge event"},
			want:    true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, exceeds(last, tc.current, time.Minute, 1, 0.05))
		})
	}
}

func TestChanged(t *testing.T) {
	assert.False(t, changed(math.Inf(1), math.Inf(1), 1))
	assert.True(t, changed(50, math.Inf(1), 1))
	assert.True(t, changed(math.Inf(1), 50, 1))
	assert.False(t, changed(50, 50.99, 1))
	assert.True(t, changed(50, 49, 1))
}

func TestValidateMeasurements(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MQTT.Interval = time.Minute

	a, err := New(cfg)
	require.NoError(t, err)

	t0 := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	a.validateMeasurements(monitor.Snapshot{Time: t0, Frequency: 50, Period: 0.02, DutyCycle: 0.5})
	a.validateMeasurements(monitor.Snapshot{Time: t0.Add(time.Second), Frequency: 50.1, Period: 0.02, DutyCycle: 0.5})
	a.validateMeasurements(monitor.Snapshot{Time: t0.Add(2 * time.Second), Frequency: 60, Period: 1.0 / 60, DutyCycle: 0.5})

	msgs := drain(a.mqtt)
	require.Len(t, msgs, 2, "the first snapshot and the frequency step are sent")
	assert.Equal(t, "/gpio/frequency", msgs[0].Topic)

	var d map[string]interface{}
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &d))
	assert.Equal(t, 60.0, d["frequency"])
}

func TestValidateMeasurementsAfterReload(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MQTT.Interval = time.Minute

	a, err := New(cfg)
	require.NoError(t, err)

	t0 := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	a.validateMeasurements(monitor.Snapshot{Time: t0, Frequency: 50, DutyCycle: 0.5})

	n := config.NewConfig()
	n.MQTT.Interval = time.Minute
	n.MQTT.DeltaHertz = 0.1
	n.Debug.Flag = a.config.Debug.Flag
	a.applyConfig(n)

	a.validateMeasurements(monitor.Snapshot{Time: t0.Add(time.Second), Frequency: 50.2, DutyCycle: 0.5})
	assert.Len(t, drain(a.mqtt), 2)
}

// drain returns the queued messages of a handler without a running service.
func drain(h *mqtt.Handler) []mqtt.Message {
	var msgs []mqtt.Message
	for {
		select {
		case m := <-h.C:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacer_WithinBounds(t *testing.T) {
	p := NewPacer(10*time.Millisecond, 50*time.Millisecond, 0, 0)
	for range 200 {
		d := p.Next()
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	}
}

func TestPacer_FixedWhenMinEqualsMax(t *testing.T) {
	p := NewPacer(time.Second, time.Second, 0, 0)
	assert.Equal(t, time.Second, p.Next())
}

func TestPacer_SwappedBoundsClamp(t *testing.T) {
	p := NewPacer(2*time.Second, time.Second, 0, 0)
	assert.Equal(t, 2*time.Second, p.Next())
}

func TestPacer_LongPauseEveryN(t *testing.T) {
	p := NewPacer(0, 0, 3, time.Minute)
	got := []time.Duration{p.Next(), p.Next(), p.Next(), p.Next(), p.Next(), p.Next()}
	assert.Equal(t, []time.Duration{0, 0, time.Minute, 0, 0, time.Minute}, got)
}

func TestPacer_WaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPacer(time.Hour, time.Hour, 0, 0)
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestPacer_NilDoesNotWait(t *testing.T) {
	var p *Pacer
	assert.NoError(t, p.Wait(context.Background()))
}

package main

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/plus3/scenecs/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	var s Stats
	for i := 1; i <= 100; i++ {
		s.Samples = append(s.Samples, time.Duration(i)*time.Millisecond)
	}
	s.Finalize()

	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Equal(t, 50500*time.Microsecond, s.Avg)
	assert.Equal(t, 99*time.Millisecond, s.P99)
	assert.Equal(t, time.Millisecond, s.Samples[0], "samples keep their order")
}

func TestStressScene(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := scene.New()
	registerSystems(s, rng, 0.1)
	for range 200 {
		spawnRandomEntity(s, rng)
	}

	for range 20 {
		s.Simulate(16 * time.Millisecond)
	}

	// churn replaces what it destroys; one more frame applies its last destroys
	scene.GetSystem[churnSystem](s).SetActive(false)
	s.Simulate(16 * time.Millisecond)
	assert.Equal(t, 201, s.Entities().Count())
	assert.Positive(t, scene.GetSystem[cullSystem](s).visible)

	report := &Report{
		Duration:    time.Second,
		Entities:    200,
		Churn:       0.1,
		Systems:     s.Systems().Stats().Systems,
		EntityStats: s.Entities().CollectStats(),
	}
	report.UpdateTime.Samples = []time.Duration{time.Millisecond}
	report.UpdateTime.Finalize()

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	assert.Contains(t, buf.String(), "| movementSystem |")
	assert.Contains(t, buf.String(), "**Alive:** 201")
}

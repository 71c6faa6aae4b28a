package cluster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHPAStatus(t *testing.T) {
	cur, des, cpu, err := parseHPAStatus("3,5,78")
	require.NoError(t, err)
	assert.Equal(t, 3, cur)
	assert.Equal(t, 5, des)
	assert.Equal(t, 78, cpu)
}

func TestParseHPAStatusEmptyFieldsAreZero(t *testing.T) {
	cur, des, cpu, err := parseHPAStatus(",,")
	require.NoError(t, err)
	assert.Zero(t, cur)
	assert.Zero(t, des)
	assert.Zero(t, cpu)

	// CPU not yet reported by the HPA.
	cur, des, cpu, err = parseHPAStatus("2,2,")
	require.NoError(t, err)
	assert.Equal(t, 2, cur)
	assert.Equal(t, 2, des)
	assert.Zero(t, cpu)

	// Short output still parses.
	cur, des, cpu, err = parseHPAStatus("4")
	require.NoError(t, err)
	assert.Equal(t, 4, cur)
	assert.Zero(t, des)
	assert.Zero(t, cpu)
}

func TestParseHPAStatusMalformed(t *testing.T) {
	_, _, _, err := parseHPAStatus("three,5,78")
	assert.Error(t, err)
}

func TestCountLines(t *testing.T) {
	assert.Zero(t, countLines(""))
	assert.Equal(t, 1, countLines("pod/cloudapp-1"))
	assert.Equal(t, 3, countLines("pod/a\npod/b\npod/c"))
}

func TestKubectlProviderQueryFailureReturnsZeroSample(t *testing.T) {
	p := NewKubectlProvider(KubectlConfig{
		Binary:  "definitely-not-a-kubectl-binary",
		Timeout: time.Second,
	}, nil)

	s := p.Query(context.Background())

	assert.False(t, s.OK)
	assert.Zero(t, s.RunningPods)
	assert.Zero(t, s.CurrentReplicas)
	assert.Zero(t, s.DesiredReplicas)
	assert.Zero(t, s.CPUUtilizationPct)
	assert.False(t, s.SampledAt.IsZero())
}

func TestSampleStatusLabel(t *testing.T) {
	assert.Equal(t, "Scaling Up", Sample{CurrentReplicas: 2, DesiredReplicas: 5}.StatusLabel())
	assert.Equal(t, "Scaling Down", Sample{CurrentReplicas: 5, DesiredReplicas: 2}.StatusLabel())
	assert.Equal(t, "Stable", Sample{CurrentReplicas: 3, DesiredReplicas: 3}.StatusLabel())
}

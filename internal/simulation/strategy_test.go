package simulation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigsim/internal/distribution"
	"sigsim/internal/significance"
)

func TestRunnerGrowAndRestore(t *testing.T) {
	x, err := distribution.NewNormal(50, 0, 1)
	require.NoError(t, err)
	y, err := distribution.NewGamma(7, 2, 1)
	require.NoError(t, err)

	r := &runner{x: x, y: y, growRatio: 1.1}
	restore, err := r.grow()
	require.NoError(t, err)
	assert.Equal(t, 55, x.SampleSize())
	assert.Equal(t, 7, y.SampleSize(), "int(7.7) rounds down")

	restore()
	assert.Equal(t, 50, x.SampleSize())
	assert.Equal(t, 7, y.SampleSize())
}

func TestRunnerGrownAttemptRestoresOnError(t *testing.T) {
	x, err := distribution.NewNormal(1, 0, 1)
	require.NoError(t, err)
	y, err := distribution.NewNormal(1, 0, 1)
	require.NoError(t, err)
	test, err := significance.New(significance.Spec{Family: "brunner_munzel_test", Alpha: 0.05})
	require.NoError(t, err)

	// Ratio 1.5 grows 1 to 1, so the grown attempt still fails.
	r := &runner{test: test, x: x, y: y, src: rand.NewPCG(1, 2), strategy: GrowSample, growRatio: 1.5}
	_, err = r.grownAttempt()
	require.Error(t, err)
	assert.Equal(t, 1, x.SampleSize())
	assert.Equal(t, 1, y.SampleSize())

	x2, err := distribution.NewNormal(2, 0, 1)
	require.NoError(t, err)
	y2, err := distribution.NewNormal(1, 0, 1)
	require.NoError(t, err)
	r = &runner{test: test, x: x2, y: y2, src: rand.NewPCG(1, 2), strategy: GrowSample, growRatio: 1.5}
	_, err = r.grownAttempt()
	require.Error(t, err)
	assert.Equal(t, 2, x2.SampleSize(), "restored after a failed grown attempt")
	assert.Equal(t, 1, y2.SampleSize())
}

package guard

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestPolicyDuration(t *testing.T) {
	assert := assert.New(t)
	p := DefaultPolicy()

	assert.Equal(time.Duration(0), p.Duration(0))
	assert.Equal(time.Duration(0), p.Duration(-3))
	assert.Equal(10*time.Minute, p.Duration(1))
	assert.Equal(20*time.Minute, p.Duration(2))
	assert.Equal(50*time.Minute, p.Duration(5))
	assert.Equal(1430*time.Minute, p.Duration(143))
	assert.Equal(24*time.Hour, p.Duration(144))
	assert.Equal(24*time.Hour, p.Duration(200))
	assert.Equal(24*time.Hour, p.Duration(math.MaxInt))
}

func TestPolicyCustomUnits(t *testing.T) {
	assert := assert.New(t)
	p := Policy{BaseUnit: 7 * time.Minute, Cap: time.Hour}

	assert.Equal(56*time.Minute, p.Duration(8))
	assert.Equal(time.Hour, p.Duration(9))
	assert.Equal(time.Duration(0), Policy{}.Duration(4))
}

func TestPolicyMonotonicAndCapped(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	p := DefaultPolicy()

	properties.Property("duration never decreases as the count grows", prop.ForAll(
		func(c1, c2 int) bool {
			if c1 > c2 {
				c1, c2 = c2, c1
			}
			return p.Duration(c1) <= p.Duration(c2)
		},
		gen.IntRange(-10, math.MaxInt32),
		gen.IntRange(-10, math.MaxInt32),
	))

	properties.Property("duration never exceeds the cap", prop.ForAll(
		func(c int) bool {
			d := p.Duration(c)
			return d >= 0 && d <= p.Cap
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}

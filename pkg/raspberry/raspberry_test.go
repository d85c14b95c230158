package raspberry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChipName(t *testing.T) {
	assert.Equal(t, "gpiochip0", ChipName("0"))
	assert.Equal(t, "gpiochip12", ChipName("12"))
	assert.Equal(t, "gpiochip1", ChipName("gpiochip1"))
	assert.Equal(t, "gpiochip2", ChipName("/dev/gpiochip2"))
	assert.Equal(t, "pinctrl-bcm2835", ChipName("pinctrl-bcm2835"))
}

func TestCheckBias(t *testing.T) {
	for in, want := range map[string]string{
		"":         BiasNone,
		"none":     BiasNone,
		"pullup":   BiasPullUp,
		"pulldown": BiasPullDown,
	} {
		got, err := CheckBias(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := CheckBias("pullsideways")
	assert.ErrorIs(t, err, ErrInvalidParam)
}

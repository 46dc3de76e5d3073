package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser_Stable(t *testing.T) {
	a := ForUser("usr-abc")
	assert.Regexp(t, hexPattern, a)
	assert.Equal(t, a, ForUser("usr-abc"))
	assert.NotEqual(t, a, ForUser("usr-abd"))
}

func TestHSL_RGB(t *testing.T) {
	tests := []struct {
		name string
		c    HSL
		want string
	}{
		{"red", HSL{H: 0, S: 1, L: 0.5}, "#FF0000"},
		{"green", HSL{H: 120, S: 1, L: 0.5}, "#00FF00"},
		{"blue", HSL{H: 240, S: 1, L: 0.5}, "#0000FF"},
		{"grey", HSL{H: 200, S: 0, L: 0.5}, "#808080"},
		{"white", HSL{H: 0, S: 0, L: 1}, "#FFFFFF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Hex())
		})
	}
}

func TestHue_Range(t *testing.T) {
	for _, s := range []string{"", "a", "usr-1", "usr-zzzzzzzz"} {
		h := Hue(s)
		assert.GreaterOrEqual(t, h, 0.0)
		assert.Less(t, h, 360.0)
	}
}

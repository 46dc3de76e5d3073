// Package color derives stable avatar colours from user IDs.
package color

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Avatar saturation and lightness. Hue varies per user.
const (
	avatarSaturation = 0.45
	avatarLightness  = 0.6
)

// HSL is a colour in hue (degrees), saturation and lightness (0-1).
type HSL struct {
	H, S, L float64
}

// ForUser returns the "#RRGGBB" avatar colour for userID. The same ID
// always maps to the same colour.
func ForUser(userID string) string {
	return HSL{H: Hue(userID), S: avatarSaturation, L: avatarLightness}.Hex()
}

// Hue maps s onto [0, 360).
func Hue(s string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum32() % 360)
}

// Hex formats c as "#RRGGBB".
func (c HSL) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// RGB converts c to 8-bit channels.
func (c HSL) RGB() (r, g, b uint8) {
	chroma := (1 - math.Abs(2*c.L-1)) * c.S
	hp := math.Mod(c.H, 360) / 60
	x := chroma * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r1, g1, b1 float64
	switch {
	case hp < 1:
		r1, g1, b1 = chroma, x, 0
	case hp < 2:
		r1, g1, b1 = x, chroma, 0
	case hp < 3:
		r1, g1, b1 = 0, chroma, x
	case hp < 4:
		r1, g1, b1 = 0, x, chroma
	case hp < 5:
		r1, g1, b1 = x, 0, chroma
	default:
		r1, g1, b1 = chroma, 0, x
	}

	m := c.L - chroma/2
	return channel(r1 + m), channel(g1 + m), channel(b1 + m)
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

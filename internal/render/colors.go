package render

import (
	"fmt"
	"math"
)

// DefaultPalette holds the soft fills used to tell date groups apart.
var DefaultPalette = []string{
	"FFC7CE", "C6EFCE", "FFEB9C", "9CC3E6", "F4CCCC",
	"D9EAD3", "FFE699", "D0E0E3", "FCE5CD", "D9D2E9",
}

const (
	goldenAngle     = 137.50776405003785
	maxColorRetries = 64
)

// ColorCache hands out one color per distinct value. The first time a value
// is seen decides its color for the whole document. New values take the
// next palette entry; once every entry is in use, further values get
// generated pastel colors that differ from all colors handed out so far.
type ColorCache struct {
	palette  []string
	start    int
	issued   int
	hue      float64
	used     map[string]bool
	assigned map[string]string
}

// NewColorCache creates a cache over palette. seed rotates the starting
// entry and the generated hues so that different runs can use different
// colors while staying reproducible.
func NewColorCache(palette []string, seed int) *ColorCache {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	start := seed % len(palette)
	if start < 0 {
		start += len(palette)
	}
	return &ColorCache{
		palette:  palette,
		start:    start,
		hue:      math.Mod(float64(seed)*goldenAngle, 360),
		used:     make(map[string]bool),
		assigned: make(map[string]string),
	}
}

// Color returns the color of value, assigning one on first sight.
func (c *ColorCache) Color(value string) string {
	if color, ok := c.assigned[value]; ok {
		return color
	}
	var color string
	if c.issued < len(c.palette) {
		color = c.palette[(c.start+c.issued)%len(c.palette)]
	} else {
		color = c.generate()
	}
	c.issued++
	c.used[color] = true
	c.assigned[value] = color
	return color
}

// generate steps the hue by the golden angle until it lands on an unused
// color, giving up after maxColorRetries attempts.
func (c *ColorCache) generate() string {
	var color string
	for range maxColorRetries {
		c.hue = math.Mod(c.hue+goldenAngle, 360)
		if c.hue < 0 {
			c.hue += 360
		}
		color = pastel(c.hue)
		if !c.used[color] {
			break
		}
	}
	return color
}

// Len returns how many distinct values have a color.
func (c *ColorCache) Len() int {
	return len(c.assigned)
}

// pastel converts a hue in degrees to a light RGB hex color.
func pastel(hue float64) string {
	const saturation, lightness = 0.7, 0.85
	chroma := (1 - math.Abs(2*lightness-1)) * saturation
	x := chroma * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := lightness - chroma/2

	var r, g, b float64
	switch {
	case hue < 60:
		r, g, b = chroma, x, 0
	case hue < 120:
		r, g, b = x, chroma, 0
	case hue < 180:
		r, g, b = 0, chroma, x
	case hue < 240:
		r, g, b = 0, x, chroma
	case hue < 300:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	channel := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return fmt.Sprintf("%02X%02X%02X", channel(r), channel(g), channel(b))
}

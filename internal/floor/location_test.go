package floor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	testCorrections = map[string]string{"F0": "OF", "0F": "OF", "IF": "IF", "1F": "IF"}
	testCodeNames   = map[string]string{
		"BF": "Basement",
		"GF": "Ground Floor",
		"OF": "Fourth Floor",
		"IF": "Fifth Floor",
	}
)

func TestDecodeLocation(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"mapped code", "ABCDEFGH01GF", "Ground Floor"},
		{"lower case code", "ABCDEFGH01gf", "Ground Floor"},
		{"zero for letter O", "ABCDEFGH01F0", "Fourth Floor"},
		{"digit one for letter I", "ABCDEFGH011F", "Fifth Floor"},
		{"unknown code passes through", "ABCDEFGH01ZZ", "ZZ"},
		{"truncated slice", "ABCDEFGH01B", "B"},
		{"offset past end", "ABCDEFGH01", ""},
		{"empty code", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeLocation(tt.code, 10, 2, testCorrections, testCodeNames))
		})
	}
}

func TestLocationDecoder_RequireFull(t *testing.T) {
	zone := LocationDecoder{Offset: 8, Width: 2, RequireFull: true}

	assert.Equal(t, "03", zone.Decode("ABCDEFGH03GF"))
	assert.Equal(t, "03", zone.Decode("ABCDEFGH03"))
	assert.Equal(t, "", zone.Decode("ABCDEFGH0"))

	partial := LocationDecoder{Offset: 8, Width: 2}
	assert.Equal(t, "0", partial.Decode("ABCDEFGH0"))
}

func TestLocationDecoder_Upper(t *testing.T) {
	zone := LocationDecoder{Offset: 8, Width: 2, RequireFull: true}
	floor := LocationDecoder{Offset: 10, Width: 2, Upper: true, Corrections: testCorrections, Names: testCodeNames}

	assert.Equal(t, "0a", zone.Decode("abcdefgh0agf"))
	assert.Equal(t, "Ground Floor", floor.Decode("abcdefgh0agf"))
	assert.Equal(t, "Fourth Floor", floor.Decode("abcdefgh0af0"))

	plain := LocationDecoder{Offset: 10, Width: 2, Names: testCodeNames}
	assert.Equal(t, "gf", plain.Decode("abcdefgh0agf"))
}

func TestSlice(t *testing.T) {
	assert.Equal(t, "cd", Slice("abcdef", 2, 2))
	assert.Equal(t, "ef", Slice("abcdef", 4, 5))
	assert.Equal(t, "", Slice("abcdef", 6, 2))
	assert.Equal(t, "", Slice("abcdef", -1, 2))
	assert.Equal(t, "", Slice("abcdef", 1, 0))
}

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"전기", "수리가", "필요해요"},
		Tokenize("전기 수리가, 필요해요!"),
	)
	assert.Equal(t,
		[]string{"fix", "my", "wi", "fi", "router", "it"},
		Tokenize("Fix my Wi-Fi router, FIX it"),
	)
	assert.Empty(t, Tokenize("a b . ,"))
	assert.Empty(t, Tokenize(""))
}

func TestOverlaps(t *testing.T) {
	tokens := Tokenize("화장실 변기가 막혔어요")
	// token contains keyword
	assert.True(t, Overlaps(tokens, "변기"))
	// keyword contains token
	assert.True(t, Overlaps([]string{"수리"}, "수리기사"))
	assert.False(t, Overlaps(tokens, "청소"))
	assert.False(t, Overlaps(nil, "청소"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.2, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.3, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

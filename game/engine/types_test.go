package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
	}{
		{"up", Up},
		{"W", Up},
		{"north", Up},
		{" down ", Down},
		{"a", Left},
		{"Right", Right},
		{"east", Right},
		{"none", None},
		{"stop", None},
		{"", None},
	}

	for _, test := range tests {
		got, err := ParseDirection(test.input)
		require.NoError(t, err, test.input)
		assert.Equal(t, test.want, got, test.input)
	}

	_, err := ParseDirection("diagonal")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestDirection_String(t *testing.T) {
	for _, d := range Compass {
		parsed, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	assert.Equal(t, "none", None.String())
	assert.Equal(t, Position{0, 1}, Position{1, 1}.Add(Up))
	assert.Equal(t, Position{2, 1}, Position{1, 1}.Add(Down))
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#fab3fa")
	require.NoError(t, err)
	assert.Equal(t, AdversaryColor, c)
	assert.Equal(t, "#93f0fa", ItemColor.Hex())

	for _, bad := range []string{"", "fab3fa", "#fab3f", "#zzzzzz"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestKind_JSON(t *testing.T) {
	data, err := json.Marshal([]Kind{KindCollectible, KindPlayer, KindAdversary})
	require.NoError(t, err)
	assert.JSONEq(t, `["collectible","player","adversary"]`, string(data))

	var kinds []Kind
	require.NoError(t, json.Unmarshal(data, &kinds))
	assert.Equal(t, []Kind{KindCollectible, KindPlayer, KindAdversary}, kinds)

	var k Kind
	assert.Error(t, json.Unmarshal([]byte(`"ghost"`), &k))
}

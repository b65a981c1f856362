package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Command
	}{
		{
			name:     "verb with one arg",
			line:     "PLAYER|1|",
			expected: Command{Verb: VerbPlayer, Args: []string{"1"}},
		},
		{
			name:     "verb alone",
			line:     "WAIT|",
			expected: Command{Verb: VerbWait, Args: []string{}},
		},
		{
			name:     "bare ships token",
			line:     "SHIPS",
			expected: Command{Verb: VerbShips, Args: []string{}},
		},
		{
			name:     "fire is space separated",
			line:     "FIRE 3 4|",
			expected: Command{Verb: VerbFire, Args: []string{"3", "4"}},
		},
		{
			name:     "shot broadcast",
			line:     "SHOT|1|3|4|HIT|",
			expected: Command{Verb: VerbShot, Args: []string{"1", "3", "4", "HIT"}},
		},
		{
			name:     "crlf line ending",
			line:     "PING|\r\n",
			expected: Command{Verb: VerbPing, Args: []string{}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd, err := Parse(test.line)
			require.NoError(t, err)
			assert.Equal(t, test.expected, cmd)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, line := range []string{"", "|", "FIRE 3|", "FIRE 3 4 5|"} {
		t.Run(line, func(t *testing.T) {
			_, err := Parse(line)
			assert.Error(t, err)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	cmds := []Command{
		{Verb: VerbPlayer, Args: []string{"2"}},
		{Verb: VerbStart, Args: []string{"1"}},
		{Verb: VerbShips, Args: []string{}},
		{Verb: VerbWait, Args: []string{}},
		{Verb: VerbFire, Args: []string{"3", "4"}},
		{Verb: VerbShot, Args: []string{"2", "3", "4", "MISS"}},
		{Verb: VerbQuit, Args: []string{}},
	}

	for _, cmd := range cmds {
		t.Run(cmd.Verb, func(t *testing.T) {
			parsed, err := Parse(Format(cmd))
			require.NoError(t, err)
			assert.Equal(t, cmd, parsed)
		})
	}
}

func TestFireCoords(t *testing.T) {
	cmd, err := Parse("FIRE 5 9|")
	require.NoError(t, err)

	row, col, err := FireCoords(cmd)
	require.NoError(t, err)
	assert.Equal(t, 5, row)
	assert.Equal(t, 9, col)

	_, _, err = FireCoords(Command{Verb: VerbFire, Args: []string{"x", "1"}})
	assert.Error(t, err)

	_, _, err = FireCoords(Command{Verb: VerbShot, Args: []string{"1", "2"}})
	assert.Error(t, err)
}

package control

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Command
		err     error
	}{
		{"empty", "", Command{}, ErrShortPacket},
		{"one byte", "1", Command{}, ErrShortPacket},
		{"setting", "13", Command{Kind: SettingCommand, ColorIndex: 1, BrightnessLevel: 3}, nil},
		{"brightness zero", "30", Command{Kind: SettingCommand, ColorIndex: 3, BrightnessLevel: 0}, nil},
		{"brightness nine", "09", Command{Kind: SettingCommand, ColorIndex: 0, BrightnessLevel: 9}, nil},
		{"color out of palette", "45", Command{}, ErrColorOutOfRange},
		{"non digit color", "a5", Command{}, ErrInvalidSetting},
		{"non digit brightness", "1x", Command{}, ErrInvalidSetting},
		{"text", "25HELLO", Command{Kind: TextCommand, Text: "HELLO"}, nil},
		{"text with one byte", "xyZ", Command{Kind: TextCommand, Text: "Z"}, nil},
		{"text keeps spaces", "00 hi ", Command{Kind: TextCommand, Text: " hi "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.payload))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestDecodeTruncatesText(t *testing.T) {
	long := strings.Repeat("x", 400)
	cmd, err := Decode([]byte("00" + long))
	require.NoError(t, err)
	assert.Len(t, cmd.Text, MaxTextLength)
	assert.Equal(t, long[:MaxTextLength], cmd.Text)
}

func TestEncode(t *testing.T) {
	b, err := EncodeSetting(2, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("27"), b)

	_, err = EncodeSetting(4, 0)
	assert.ErrorIs(t, err, ErrColorOutOfRange)
	_, err = EncodeSetting(0, 10)
	assert.ErrorIs(t, err, ErrInvalidSetting)

	b, err = EncodeText("HELLO")
	require.NoError(t, err)
	assert.Equal(t, []byte("00HELLO"), b)

	_, err = EncodeText("")
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestSettingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := rapid.IntRange(0, 9).Draw(t, "color")
		b := rapid.IntRange(0, 9).Draw(t, "brightness")

		cmd, err := Decode([]byte{byte('0' + c), byte('0' + b)})
		if c >= PaletteSize {
			if err == nil {
				t.Fatalf("color %d accepted", c)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Kind != SettingCommand || cmd.ColorIndex != c || cmd.BrightnessLevel != b {
			t.Fatalf("got %+v for %d%d", cmd, c, b)
		}
	})
}

func TestTextProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), PrefixLength+1, 600).Draw(t, "payload")

		cmd, err := Decode(payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := payload[PrefixLength:]
		if len(want) > MaxTextLength {
			want = want[:MaxTextLength]
		}
		if cmd.Kind != TextCommand || cmd.Text != string(want) {
			t.Fatalf("text %q, want %q", cmd.Text, want)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[ -~]{1,255}`).Draw(t, "text")

		b, err := EncodeText(text)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		cmd, err := Decode(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if cmd.Text != text {
			t.Fatalf("got %q, want %q", cmd.Text, text)
		}
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "setting", SettingCommand.String())
	assert.Equal(t, "text", TextCommand.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

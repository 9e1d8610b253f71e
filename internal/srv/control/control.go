// Package control decodes the datagram protocol used to configure the panel.
//
// A two byte payload "CB" of ASCII digits sets the palette color C and the
// brightness level B. A longer payload carries override text: its first two
// bytes are a reserved prefix and the rest, capped at MaxTextLength bytes,
// is the text. Shorter payloads are ignored.
package control

import (
	"errors"
	"fmt"
)

const (
	PrefixLength  = 2
	MaxTextLength = 255
	PaletteSize   = 4
	MaxBrightness = 9

	defaultPrefix = "00"
)

var (
	ErrShortPacket     = errors.New("packet too short")
	ErrInvalidSetting  = errors.New("setting must be two decimal digits")
	ErrColorOutOfRange = errors.New("color index out of range")
)

type Kind int

const (
	SettingCommand Kind = iota
	TextCommand
)

func (k Kind) String() string {
	switch k {
	case SettingCommand:
		return "setting"
	case TextCommand:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Command is a decoded control packet. Only the fields matching Kind are set.
type Command struct {
	Kind            Kind
	ColorIndex      int
	BrightnessLevel int
	Text            string
}

// Decode parses one datagram payload.
func Decode(payload []byte) (Command, error) {
	switch {
	case len(payload) < PrefixLength:
		return Command{}, ErrShortPacket
	case len(payload) == PrefixLength:
		return decodeSetting(payload)
	}

	text := payload[PrefixLength:]
	if len(text) > MaxTextLength {
		text = text[:MaxTextLength]
	}
	return Command{Kind: TextCommand, Text: string(text)}, nil
}

func decodeSetting(payload []byte) (Command, error) {
	c, b := payload[0], payload[1]
	if !isDigit(c) || !isDigit(b) {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidSetting, payload)
	}

	cmd := Command{
		Kind:            SettingCommand,
		ColorIndex:      int(c - '0'),
		BrightnessLevel: int(b - '0'),
	}
	if err := ValidateSetting(cmd.ColorIndex, cmd.BrightnessLevel); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// ValidateSetting checks a color/brightness pair, whatever transport it came from.
func ValidateSetting(colorIndex, brightnessLevel int) error {
	if colorIndex < 0 || colorIndex >= PaletteSize {
		return fmt.Errorf("%w: %d", ErrColorOutOfRange, colorIndex)
	}
	if brightnessLevel < 0 || brightnessLevel > MaxBrightness {
		return fmt.Errorf("%w: brightness %d", ErrInvalidSetting, brightnessLevel)
	}
	return nil
}

func EncodeSetting(colorIndex, brightnessLevel int) ([]byte, error) {
	if err := ValidateSetting(colorIndex, brightnessLevel); err != nil {
		return nil, err
	}
	return []byte{byte('0' + colorIndex), byte('0' + brightnessLevel)}, nil
}

// EncodeText builds a text packet. Empty text can't be encoded since it would
// be read back as a setting.
func EncodeText(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text: %w", ErrShortPacket)
	}
	return append([]byte(defaultPrefix), text...), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

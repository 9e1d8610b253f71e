package config

import (
	"github.com/jypelle/vekimatrix/internal/syncutil"
)

// DisplaySettings is always read and written as a pair.
type DisplaySettings struct {
	ColorIndex      int
	BrightnessLevel int
}

// ServerState is the runtime state shared between the event loop and the
// network devices. It is never persisted.
type ServerState struct {
	lock syncutil.RWMutex

	settings     DisplaySettings
	overrideText string
	generation   uint64
	displayOn    bool
}

func NewServerState(colorIndex int, brightnessLevel int) *ServerState {
	return &ServerState{
		settings: DisplaySettings{
			ColorIndex:      colorIndex,
			BrightnessLevel: brightnessLevel,
		},
		displayOn: true,
	}
}

func (ss *ServerState) DisplaySettings() DisplaySettings {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.settings
}

func (ss *ServerState) SetDisplaySettings(settings DisplaySettings) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.settings = settings
}

// OverrideText returns the current text and its generation. The text is
// active when non empty.
func (ss *ServerState) OverrideText() (string, uint64) {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.overrideText, ss.generation
}

// SetOverrideText replaces the text and returns its new generation.
func (ss *ServerState) SetOverrideText(text string) uint64 {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.overrideText = text
	ss.generation++
	return ss.generation
}

// ClearOverrideText clears the text only if nothing was written since
// generation was observed.
func (ss *ServerState) ClearOverrideText(generation uint64) bool {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.generation != generation {
		return false
	}
	ss.overrideText = ""
	return true
}

func (ss *ServerState) DisplayOn() bool {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.displayOn
}

// SetDisplayOn records whether the panel is lit.
func (ss *ServerState) SetDisplayOn(on bool) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.displayOn = on
}

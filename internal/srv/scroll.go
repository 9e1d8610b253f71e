package srv

// scrollState is owned by the event loop. It keeps its own copy of the text
// so that the geometry always matches what is drawn.
type scrollState struct {
	text            string
	cursorX         int
	messageLengthPx int
	scrolling       bool
	generation      uint64
}

// messageLength is the width a text occupies on the panel, one blank
// character of margin on each side included.
func messageLength(text string) int {
	return (len(text) + 2) * pixelsPerChar
}

// needsEntry reports whether the geometry must be recomputed for the text
// of the given generation.
func (ss *scrollState) needsEntry(generation uint64) bool {
	return !ss.scrolling || ss.generation != generation
}

func (ss *scrollState) enter(text string, generation uint64, panelWidth int) {
	ss.text = text
	ss.cursorX = panelWidth
	ss.messageLengthPx = messageLength(text)
	ss.scrolling = true
	ss.generation = generation
}

// advance moves the cursor left by step and reports whether the pass is
// over. A finished pass leaves the cursor back at the right edge.
func (ss *scrollState) advance(step int, panelWidth int) bool {
	ss.cursorX -= step
	if ss.cursorX < -(ss.messageLengthPx + panelWidth) {
		ss.reset(panelWidth)
		return true
	}
	return false
}

func (ss *scrollState) reset(panelWidth int) {
	ss.cursorX = panelWidth
	ss.scrolling = false
}

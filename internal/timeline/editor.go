package timeline

import "errors"

// ErrEditorClosed is returned by Save when no block is open.
var ErrEditorClosed = errors.New("timeline: editor has no open block")

// Draft is the pending, uncommitted state of the block editor.
type Draft struct {
	StartTime  float64
	Duration   float64
	Annotation string
}

// BlockEditor is the explicit edit path for a single block. Edits accumulate
// in a Draft and reach the store only on Save.
type BlockEditor struct {
	store  *BlockStore
	id     string
	orig   Block
	draft  Draft
	isOpen bool
}

// Open starts editing the block with the given id.
func (e *BlockEditor) Open(store *BlockStore, id string) error {
	b, ok := store.Get(id)
	if !ok {
		return ErrUnknownBlock
	}
	e.store = store
	e.id = id
	e.orig = b
	e.draft = Draft{StartTime: b.StartTime, Duration: b.Duration, Annotation: b.Annotation}
	e.isOpen = true
	return nil
}

// IsOpen reports whether a block is being edited.
func (e *BlockEditor) IsOpen() bool {
	return e.isOpen
}

// Block returns the block as it was when the editor opened.
func (e *BlockEditor) Block() Block {
	return e.orig
}

// Draft returns the pending values.
func (e *BlockEditor) Draft() Draft {
	return e.draft
}

// SetStart parses a time string into the draft start time. Malformed input
// leaves the previous value and returns false.
func (e *BlockEditor) SetStart(s string) bool {
	v, ok := ParseClock(s)
	if !ok {
		return false
	}
	e.draft.StartTime = v
	return true
}

// SetDuration parses seconds into the draft duration. Malformed input leaves
// the previous value and returns false.
func (e *BlockEditor) SetDuration(s string) bool {
	v, ok := ParseSeconds(s)
	if !ok {
		return false
	}
	e.draft.Duration = clampDuration(v)
	return true
}

// SetAnnotation replaces the draft annotation.
func (e *BlockEditor) SetAnnotation(s string) {
	e.draft.Annotation = s
}

// Save writes the draft in a single update and closes the editor.
func (e *BlockEditor) Save() (Block, error) {
	if !e.isOpen {
		return Block{}, ErrEditorClosed
	}
	d := e.draft
	b, ok := e.store.Update(e.id, Patch{
		StartTime:  &d.StartTime,
		Duration:   &d.Duration,
		Annotation: &d.Annotation,
	})
	e.close()
	if !ok {
		return Block{}, ErrUnknownBlock
	}
	return b, nil
}

// Cancel discards the draft and closes the editor.
func (e *BlockEditor) Cancel() {
	e.close()
}

func (e *BlockEditor) close() {
	*e = BlockEditor{}
}

package state

import (
	"fmt"
	"time"
)

// Cursor is a resume position: rows modified at or after Watermark, skipping Offset of them.
// Offset only has meaning for the current Watermark.
type Cursor struct {
	Watermark time.Time
	Offset    int
}

// At returns a cursor positioned at the start of t.
func At(t time.Time) Cursor {
	return Cursor{Watermark: t.UTC()}
}

// Advance moves the cursor past a page whose last row was modified at last.
// If the page ended on the current watermark more rows may share it, so only the
// offset moves. Otherwise the watermark jumps to last and the offset starts over.
func (c Cursor) Advance(last time.Time, pageLen int) Cursor {
	if pageLen == 0 {
		return c
	}
	if last.Equal(c.Watermark) {
		return Cursor{Watermark: c.Watermark, Offset: c.Offset + pageLen}
	}
	return Cursor{Watermark: last.UTC()}
}

func (c Cursor) String() string {
	return fmt.Sprintf("(%s, %d)", FormatTime(c.Watermark), c.Offset)
}

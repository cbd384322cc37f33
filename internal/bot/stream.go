package bot

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"stock_advisor/internal/ai"
)

// Renderer incrementally re-renders one chat message with accumulating
// generated text. Edits are coalesced: the destination is rewritten only
// when MinInterval has elapsed since the last edit, which keeps the bot
// inside the chat platform's edit-rate limits.
type Renderer struct {
	// Edit rewrites the destination message. A failed edit is swallowed;
	// the next flush carries the newer, longer buffer anyway.
	Edit        func(text string) error
	MinInterval time.Duration

	// Cancelled reports whether consumption should stop early. May be
	// nil. On cancellation the partial buffer is flushed and returned
	// as final rather than discarded.
	Cancelled func() bool
}

// Render consumes the token stream to exhaustion, returning the full
// accumulated text. The buffer content is authoritative regardless of
// how many intermediate edits succeeded; a final flush runs whenever
// the last edit is behind the buffer. A stream transport failure is
// returned together with whatever text arrived before it.
func (r *Renderer) Render(stream ai.TokenStream) (string, error) {
	defer stream.Close()

	var buf strings.Builder
	lastEdit := time.Now()
	flushed := ""

	for {
		if r.Cancelled != nil && r.Cancelled() {
			break
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.flush(buf.String(), flushed)
			return buf.String(), fmt.Errorf("token stream: %w", err)
		}

		buf.WriteString(chunk)
		if buf.Len() > 0 && time.Since(lastEdit) >= r.MinInterval {
			if editErr := r.Edit(buf.String()); editErr == nil {
				flushed = buf.String()
			}
			lastEdit = time.Now()
		}
	}

	r.flush(buf.String(), flushed)
	return buf.String(), nil
}

func (r *Renderer) flush(content, flushed string) {
	if content != "" && content != flushed {
		_ = r.Edit(content)
	}
}

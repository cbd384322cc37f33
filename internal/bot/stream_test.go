package bot

import (
	"errors"
	"io"
	"testing"
	"time"
)

// fakeStream replays tokens and then terminates with io.EOF, or with
// err if set.
type fakeStream struct {
	tokens []string
	err    error
	closed bool
}

func (s *fakeStream) Recv() (string, error) {
	if len(s.tokens) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	tok := s.tokens[0]
	s.tokens = s.tokens[1:]
	return tok, nil
}

func (s *fakeStream) Close() { s.closed = true }

func TestRender_SingleFlushWhenIntervalNeverElapses(t *testing.T) {
	stream := &fakeStream{tokens: []string{"A", "B", "C"}}

	var edits []string
	r := &Renderer{
		Edit:        func(text string) error { edits = append(edits, text); return nil },
		MinInterval: time.Hour, // longer than the whole stream
	}

	final, err := r.Render(stream)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if final != "ABC" {
		t.Errorf("expected final text ABC, got %q", final)
	}
	if len(edits) != 1 || edits[0] != "ABC" {
		t.Errorf("expected exactly one render with ABC, got %v", edits)
	}
	if !stream.closed {
		t.Error("stream must be closed after rendering")
	}
}

func TestRender_CoalescesPerInterval(t *testing.T) {
	stream := &fakeStream{tokens: []string{"A", "B", "C"}}

	var edits []string
	r := &Renderer{
		Edit:        func(text string) error { edits = append(edits, text); return nil },
		MinInterval: 0, // every token is due for a render
	}

	final, err := r.Render(stream)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if final != "ABC" {
		t.Errorf("expected ABC, got %q", final)
	}
	want := []string{"A", "AB", "ABC"}
	if len(edits) != len(want) {
		t.Fatalf("expected %d edits, got %v", len(want), edits)
	}
	for i := range want {
		if edits[i] != want[i] {
			t.Errorf("edit %d: expected %q, got %q", i, want[i], edits[i])
		}
	}
}

func TestRender_SwallowsEditFailures(t *testing.T) {
	stream := &fakeStream{tokens: []string{"A", "B", "C"}}

	attempts := 0
	r := &Renderer{
		Edit:        func(string) error { attempts++; return errors.New("429 too many requests") },
		MinInterval: 0,
	}

	final, err := r.Render(stream)
	if err != nil {
		t.Fatalf("edit failures must not fail rendering: %v", err)
	}
	if final != "ABC" {
		t.Errorf("the buffer is authoritative regardless of edit failures, got %q", final)
	}
	if attempts == 0 {
		t.Error("edits should still have been attempted")
	}
}

func TestRender_StreamErrorReturnsPartialBuffer(t *testing.T) {
	stream := &fakeStream{tokens: []string{"A"}, err: errors.New("backend reset")}

	var edits []string
	r := &Renderer{
		Edit:        func(text string) error { edits = append(edits, text); return nil },
		MinInterval: time.Hour,
	}

	final, err := r.Render(stream)
	if err == nil {
		t.Fatal("expected stream error to surface")
	}
	if final != "A" {
		t.Errorf("expected the partial buffer, got %q", final)
	}
	if len(edits) != 1 || edits[0] != "A" {
		t.Errorf("partial buffer should still be flushed, got %v", edits)
	}
}

func TestRender_CancellationKeepsPartialBuffer(t *testing.T) {
	stream := &fakeStream{tokens: []string{"A", "B", "C"}}

	calls := 0
	var edits []string
	r := &Renderer{
		Edit:        func(text string) error { edits = append(edits, text); return nil },
		MinInterval: time.Hour,
		Cancelled: func() bool {
			calls++
			return calls > 1 // allow exactly one token through
		},
	}

	final, err := r.Render(stream)
	if err != nil {
		t.Fatalf("cancellation is not an error: %v", err)
	}
	if final != "A" {
		t.Errorf("expected partial buffer A, got %q", final)
	}
	if len(edits) != 1 || edits[0] != "A" {
		t.Errorf("partial buffer should be rendered as final, got %v", edits)
	}
}

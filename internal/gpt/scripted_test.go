package gpt

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestScriptedStreamConcatenates(t *testing.T) {
	s := NewScripted("one two three", 0)
	stream, err := s.Stream(context.Background(), nil, "")
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	var got string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if frag == "" {
			t.Fatal("stream yielded an empty fragment")
		}
		got += frag
	}
	if got != "one two three" {
		t.Fatalf("fragments concatenate to %q", got)
	}
}

func TestScriptedStreamEOFIsSticky(t *testing.T) {
	s := NewScripted("only", 0)
	stream, err := s.Stream(context.Background(), nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stream.Recv(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	}
}

func TestScriptedStreamObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScripted("", 0)
	stream, err := s.Stream(ctx, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	if _, err := stream.Recv(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScriptedDefaultText(t *testing.T) {
	s := NewScripted("", 0)
	text, err := s.Complete(context.Background(), nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if text != DefaultScript {
		t.Fatal("empty text should fall back to the default script")
	}
}

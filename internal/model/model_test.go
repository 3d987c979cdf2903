package model

import (
	"encoding/json"
	"testing"
)

func TestLineKind_JSON(t *testing.T) {
	line := Combined([]ChordToken{{Symbol: "G", Column: 0}}, "hello")

	data, err := json.Marshal(line)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"type":"combined","chords":[{"symbol":"G","column":0}],"lyric":"hello"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back Line
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Kind != LineCombined || back.Lyric != "hello" || len(back.Chords) != 1 {
		t.Errorf("Unmarshal() = %+v", back)
	}
}

func TestLineKind_UnmarshalUnknown(t *testing.T) {
	var k LineKind
	if err := k.UnmarshalText([]byte("verse")); err == nil {
		t.Error("expected error for unknown kind")
	}
	if err := k.UnmarshalText([]byte("CHORDS")); err != nil || k != LineChords {
		t.Errorf("UnmarshalText(CHORDS) = %v, %v", k, err)
	}
}

func TestLineKind_String(t *testing.T) {
	if got := LineLyric.String(); got != "lyric" {
		t.Errorf("String() = %q", got)
	}
	if got := LineKind(9).String(); got != "LineKind(9)" {
		t.Errorf("String() out of range = %q", got)
	}
}

func TestLine_IsBlank(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want bool
	}{
		{"blank", Blank(), true},
		{"lyric", Lyric("hello"), false},
		{"whitespace lyric", Lyric("   "), true},
		{"chords", ChordRun([]ChordToken{{Symbol: "Am"}}), false},
		{"no chords", ChordRun(nil), true},
		{"combined lyric only", Combined(nil, "x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.IsBlank(); got != tt.want {
				t.Errorf("IsBlank() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTab_HasContent(t *testing.T) {
	empty := &Tab{Metadata: NewMetadata(), Lines: []Line{Blank(), Lyric(" ")}}
	if empty.HasContent() {
		t.Error("HasContent() = true for blank lines")
	}

	full := &Tab{Metadata: NewMetadata(), Lines: []Line{Blank(), Lyric("la")}}
	if !full.HasContent() {
		t.Error("HasContent() = false with a lyric")
	}
}

func TestNewMetadata(t *testing.T) {
	m := NewMetadata()
	if m.Title != Unknown || m.Artist != Unknown || m.Author != Unknown {
		t.Errorf("NewMetadata() = %+v", m)
	}
	if m.Capo != "" || m.Key != "" {
		t.Errorf("optional fields set: %+v", m)
	}
}

func TestAttempt_String(t *testing.T) {
	ok := Attempt{Strategy: "fast", Number: 1, Succeeded: true}
	if got := ok.String(); got != "fast#1: ok" {
		t.Errorf("String() = %q", got)
	}

	failed := Attempt{Strategy: "rendered", Number: 2, Reason: "too short"}
	if got := failed.String(); got != "rendered#2: too short" {
		t.Errorf("String() = %q", got)
	}
}

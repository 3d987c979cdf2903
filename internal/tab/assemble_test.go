package tab

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/handiism/ultimate-tab/internal/model"
)

func TestAssemble(t *testing.T) {
	lines := []model.Line{
		model.Blank(),
		model.Combined([]model.ChordToken{{Symbol: "G", Column: 0}, {Symbol: "D", Column: 4}}, "I found a love"),
		model.Blank(),
		model.Blank(),
		model.ChordRun([]model.ChordToken{{Symbol: "Em", Column: 2}}),
		model.Lyric("for me"),
		model.Blank(),
		model.Blank(),
	}

	got := Assemble(lines)

	wantStructured := []model.Line{lines[1], model.Blank(), lines[4], lines[5]}
	if !reflect.DeepEqual(got.Structured, wantStructured) {
		t.Errorf("Structured = %+v, want %+v", got.Structured, wantStructured)
	}

	wantLyrics := []string{"I found a love", "", "", "for me"}
	wantTabs := []string{"G   D", "", "  Em", ""}
	if !reflect.DeepEqual(got.DualTrack.Lyrics, wantLyrics) {
		t.Errorf("Lyrics = %q, want %q", got.DualTrack.Lyrics, wantLyrics)
	}
	if !reflect.DeepEqual(got.DualTrack.Tabs, wantTabs) {
		t.Errorf("Tabs = %q, want %q", got.DualTrack.Tabs, wantTabs)
	}

	wantCombined := []model.AlignedPair{
		{Lyric: "I found a love", Chords: "G   D"},
		{},
		{Chords: "  Em"},
		{Lyric: "for me"},
	}
	if !reflect.DeepEqual(got.Combined, wantCombined) {
		t.Errorf("Combined = %+v, want %+v", got.Combined, wantCombined)
	}
}

func TestAssemble_TrimsEnds(t *testing.T) {
	tests := []struct {
		name  string
		lines []model.Line
		want  int
	}{
		{"all blank", []model.Line{model.Blank(), model.Blank()}, 0},
		{"empty", nil, 0},
		{"leading and trailing", []model.Line{model.Blank(), model.Lyric("x"), model.Blank()}, 1},
		{"whitespace lyric counts as blank", []model.Line{model.Lyric("x"), model.Lyric("   "), model.Blank(), model.Lyric("y")}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(tt.lines)
			if len(got.Combined) != tt.want {
				t.Errorf("len(Combined) = %d, want %d", len(got.Combined), tt.want)
			}
			if len(got.DualTrack.Lyrics) != len(got.DualTrack.Tabs) {
				t.Errorf("tracks differ in length: %d vs %d", len(got.DualTrack.Lyrics), len(got.DualTrack.Tabs))
			}
			if n := len(got.Combined); n > 0 {
				if pairIsBlank(got.Combined[0]) || pairIsBlank(got.Combined[n-1]) {
					t.Errorf("Combined has blank ends: %+v", got.Combined)
				}
			}
		})
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	raw := []string{"[Intro]", "G   D", "I found a love", "", "", "Em", "for me somebody", "C  D", ""}

	first, err := json.Marshal(Assemble(Reconstruct(raw)))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Assemble(Reconstruct(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("output differs between runs:\n%s\n%s", first, second)
	}
}

func TestAssemble_DoesNotModifyInput(t *testing.T) {
	lines := []model.Line{model.Blank(), model.Lyric("a"), model.Blank(), model.Blank()}
	before := append([]model.Line(nil), lines...)
	Assemble(lines)
	if !reflect.DeepEqual(lines, before) {
		t.Errorf("input modified: %+v", lines)
	}
}

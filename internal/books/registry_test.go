package books

import (
	"slices"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	list := r.Books()
	if len(list) != 66 {
		t.Fatalf("expected 66 books, got %d", len(list))
	}

	var ot, nt int
	for i, b := range list {
		if b.Order != i+1 {
			t.Errorf("%s: order = %d, want %d", b.ID, b.Order, i+1)
		}
		if b.Chapters <= 0 {
			t.Errorf("%s: chapters = %d", b.ID, b.Chapters)
		}
		switch b.Testament {
		case OldTestament:
			ot++
		case NewTestament:
			nt++
		}
	}
	if ot != 39 || nt != 27 {
		t.Errorf("testaments: got OT=%d NT=%d, want 39/27", ot, nt)
	}
}

func TestLookup(t *testing.T) {
	r := Default()
	tests := []struct {
		input string
		want  string
	}{
		{"genesis", "genesis"},
		{"Genesis", "genesis"},
		{"Gen", "genesis"},
		{"1 Samuel", "1-samuel"},
		{"1samuel", "1-samuel"},
		{"samuel1", "1-samuel"},
		{"1Sam", "1-samuel"},
		{"Song of Solomon", "song-of-solomon"},
		{"בראשית", "genesis"},
		{"ΚΑΤΑ ΙΩΑΝΝΗΝ", "john"},
		{"  Rev ", "revelation"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			b, ok := r.Lookup(tt.input)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.input)
			}
			if b.ID != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.input, b.ID, tt.want)
			}
		})
	}

	if _, ok := r.Lookup("maccabees"); ok {
		t.Error("expected unknown book to miss")
	}
}

func TestCanonical(t *testing.T) {
	r := Default()
	if got := r.Canonical("1 Kings"); got != "1-kings" {
		t.Errorf("got %q, want %q", got, "1-kings")
	}
	if got := r.Canonical("Book of Enoch"); got != "book-of-enoch" {
		t.Errorf("got %q, want %q", got, "book-of-enoch")
	}
}

func TestMatchHeading(t *testing.T) {
	r := Default()
	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{"Genesis", "genesis", true},
		{"GENESIS 1:1-5", "genesis", true},
		{"בראשית", "genesis", true},
		{"דניאל", "daniel", true},
		{"Genesis 1", "genesis", true},
		{"בְּרֵאשִׁית בָּרָא אֱלֹהִים", "", false},
		{"וַיִּקְרָא אֱלֹהִים לָאוֹר יוֹם", "", false},
		{"בראשית ברא אלהים", "", false},
		{"Job answered the LORD", "", false},
		{"Numbers of the people", "", false},
		{"1 John 2", "1-john", true},
		{"John 3:16", "john", true},
		{"ΚΑΤΑ ΜΑΡΚΟΝ", "mark", true},
		{"Jobs were scarce", "", false},
		{"In the beginning", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			b, ok := r.MatchHeading(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("MatchHeading(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && b.ID != tt.want {
				t.Errorf("MatchHeading(%q) = %q, want %q", tt.line, b.ID, tt.want)
			}
		})
	}
}

func TestVerseKey(t *testing.T) {
	tests := []struct {
		input string
		want  VerseKey
	}{
		{"genesis-1-1", VerseKey{"genesis", 1, 1}},
		{"1-samuel-3-4", VerseKey{"1-samuel", 3, 4}},
		{"song-of-solomon-2-1", VerseKey{"song-of-solomon", 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVerseKey(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}

	for _, bad := range []string{"", "genesis", "genesis-1", "genesis-x-1", "genesis-0-1", "-1-1"} {
		if _, err := ParseVerseKey(bad); err == nil {
			t.Errorf("ParseVerseKey(%q): expected error", bad)
		}
	}
}

func TestCompare(t *testing.T) {
	r := Default()
	keys := []VerseKey{
		{"exodus", 1, 1},
		{"genesis", 2, 1},
		{"unknown", 1, 1},
		{"genesis", 1, 10},
		{"genesis", 1, 2},
		{"revelation", 22, 21},
	}
	slices.SortFunc(keys, r.Compare)

	want := []string{
		"genesis-1-2",
		"genesis-1-10",
		"genesis-2-1",
		"exodus-1-1",
		"revelation-22-21",
		"unknown-1-1",
	}
	for i, k := range keys {
		if k.String() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, k, want[i])
		}
	}
}

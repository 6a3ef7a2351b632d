package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableAlignsWideCells(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "TYPE", "LABEL")
	tbl.AddRow("acompañamiento", "Marcación")
	tbl.AddRow("fill", "Fill")
	tbl.Render()

	want := []string{
		"  TYPE            LABEL",
		"  --------------  ---------",
		"  acompañamiento  Marcación",
		"  fill            Fill",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(got), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf, true)
	if !f.IsJSON() {
		t.Fatal("IsJSON() = false")
	}
	if err := f.JSON(map[string]string{"label": "A & B"}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "{\n  \"label\": \"A & B\"\n}\n"; got != want {
		t.Errorf("JSON = %q, want %q", got, want)
	}
}

func TestFormatterText(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf, false)
	if f.IsJSON() || f.Writer() != &buf {
		t.Fatal("text formatter misconfigured")
	}
	f.Textln("mta version %s", "dev")
	f.Print("a", "b")
	f.Println()
	f.Println("done")
	if got, want := buf.String(), "mta version dev\nab\n\ndone\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCountStr(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 blocks"},
		{1, "1 block"},
		{7, "7 blocks"},
	}
	for _, tt := range tests {
		if got := CountStr(tt.n, "block", "blocks"); got != tt.want {
			t.Errorf("CountStr(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

package frontmatter

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_NoDelimiter(t *testing.T) {
	inputs := []string{
		"# Just a heading\nSome text.\n",
		"--- not a block\nbody",
		"---\nunclosed: block\nno end delimiter",
		"",
	}
	for _, in := range inputs {
		fm := Parse(in)
		if len(fm.Meta) != 0 {
			t.Errorf("Parse(%q): expected empty metadata, got %v", in, fm.Meta)
		}
		if want := strings.TrimSpace(in); fm.Body != want {
			t.Errorf("Parse(%q): body = %q, want %q", in, fm.Body, want)
		}
	}
}

func TestParse_ScalarsAndBody(t *testing.T) {
	input := "---\ntitle: Hello World\nweight: 3\ndraft: false\nquoted: \"keep inner\"\n---\n\n# Hello\nBody text.\n"
	fm := Parse(input)

	if got := fm.Meta["title"]; got != "Hello World" {
		t.Errorf("title = %v, want Hello World", got)
	}
	if got := fm.Meta["weight"]; got != float64(3) {
		t.Errorf("weight = %v (%T), want 3", got, got)
	}
	if got := fm.Meta["draft"]; got != false {
		t.Errorf("draft = %v, want false", got)
	}
	if got := fm.Meta["quoted"]; got != "keep inner" {
		t.Errorf("quoted = %v, want keep inner", got)
	}
	if fm.Body != "# Hello\nBody text." {
		t.Errorf("body = %q", fm.Body)
	}
}

func TestParse_InlineList(t *testing.T) {
	fm := Parse("---\ntags: [a, b, b]\nempty: []\n---\nbody")
	want := []any{"a", "b", "b"}
	if !reflect.DeepEqual(fm.Meta["tags"], want) {
		t.Errorf("tags = %v, want %v", fm.Meta["tags"], want)
	}
	if got, ok := fm.Meta["empty"].([]any); !ok || len(got) != 0 {
		t.Errorf("empty = %v, want empty list", fm.Meta["empty"])
	}
}

func TestParse_OpenList(t *testing.T) {
	fm := Parse("---\ntags:\n- x\n- y\ntitle: After\n---\nbody")
	want := []any{"x", "y"}
	if !reflect.DeepEqual(fm.Meta["tags"], want) {
		t.Errorf("tags = %v, want %v", fm.Meta["tags"], want)
	}
	if fm.Meta["title"] != "After" {
		t.Errorf("title = %v, a key line should close the open list", fm.Meta["title"])
	}
}

func TestParse_DashAfterScalarIgnored(t *testing.T) {
	fm := Parse("---\ntitle: Scalar\n- stray item\n---\nbody")
	if fm.Meta["title"] != "Scalar" {
		t.Errorf("title = %v", fm.Meta["title"])
	}
	if _, exists := fm.Meta["- stray item"]; exists {
		t.Error("stray dash line must not become a key")
	}
	if len(fm.Meta) != 1 {
		t.Errorf("meta = %v, stray dash line should be ignored", fm.Meta)
	}
}

func TestParse_GarbageLinesIgnored(t *testing.T) {
	fm := Parse("---\ntitle: Ok\n{{{ not yaml at all\n???\n\ntags: [go]\n---\nbody")
	if fm.Meta["title"] != "Ok" {
		t.Errorf("title = %v", fm.Meta["title"])
	}
	if !reflect.DeepEqual(fm.Meta["tags"], []any{"go"}) {
		t.Errorf("tags = %v", fm.Meta["tags"])
	}
}

func TestCleanScalar(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"TRUE", "TRUE"},
		{"42", float64(42)},
		{"3.5", 3.5},
		{"1.2.3", "1.2.3"},
		{`"hello"`, "hello"},
		{"'hi'", "hi"},
		{`"mismatched'`, `"mismatched'`},
		{"plain", "plain"},
		{"", ""},
	}
	for _, c := range cases {
		if got := cleanScalar(c.in); got != c.want {
			t.Errorf("cleanScalar(%q) = %v (%T), want %v", c.in, got, got, c.want)
		}
	}
}

func TestParse_CRLF(t *testing.T) {
	fm := Parse("---\r\ntitle: Windows\r\n---\r\nbody\r\n")
	if fm.Meta["title"] != "Windows" {
		t.Errorf("title = %v", fm.Meta["title"])
	}
	if fm.Body != "body" {
		t.Errorf("body = %q", fm.Body)
	}
}

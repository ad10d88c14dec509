package outline

import (
	"reflect"
	"strings"
	"testing"
)

func TestEnhance_SlugCollisions(t *testing.T) {
	markup := "<h2>Setup</h2><p>a</p><h2>Setup</h2><h3></h3>"
	_, headings, err := Enhance(markup)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	var slugs []string
	for _, h := range headings {
		slugs = append(slugs, h.Slug)
	}
	want := []string{"setup", "setup-1", "section-3"}
	if !reflect.DeepEqual(slugs, want) {
		t.Errorf("slugs = %v, want %v", slugs, want)
	}
}

func TestEnhance_LevelsAndOrder(t *testing.T) {
	markup := "<h2>First</h2><h3>Nested</h3><h2>Second</h2><h1>Ignored</h1><h4>Also ignored</h4>"
	_, headings, err := Enhance(markup)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if len(headings) != 3 {
		t.Fatalf("headings = %v, want 3 (h2/h3 only)", headings)
	}
	if headings[0].Level != 2 || headings[1].Level != 3 || headings[2].Level != 2 {
		t.Errorf("levels = %d %d %d", headings[0].Level, headings[1].Level, headings[2].Level)
	}
	if headings[1].Text != "Nested" {
		t.Errorf("text = %q", headings[1].Text)
	}
}

func TestEnhance_ExistingIDKept(t *testing.T) {
	markup := `<h2 id="custom-anchor">Setup</h2><h2>Setup</h2>`
	out, headings, err := Enhance(markup)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if headings[0].Slug != "custom-anchor" {
		t.Errorf("slug = %q, existing id must win", headings[0].Slug)
	}
	// The counter still advanced for the first heading.
	if headings[1].Slug != "setup-1" {
		t.Errorf("slug = %q, want setup-1", headings[1].Slug)
	}
	if !strings.Contains(out, `id="custom-anchor"`) {
		t.Errorf("markup lost the existing id: %s", out)
	}
}

func TestEnhance_IDsInjected(t *testing.T) {
	out, _, err := Enhance("<h2>Install Guide</h2>")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if !strings.Contains(out, `id="install-guide"`) {
		t.Errorf("markup missing injected id: %s", out)
	}
}

func TestEnhance_NoHeadingsMeansAbsentOutline(t *testing.T) {
	_, headings, err := Enhance("<p>no headings here</p>")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if headings != nil {
		t.Errorf("headings = %v, want nil (outline absent)", headings)
	}
}

func TestEnhance_ExternalLinksHardened(t *testing.T) {
	markup := `<p><a href="https://example.com">ext</a> and <a href="#local">local</a> and <a href="/docs/a.md">relative</a></p>`
	out, _, err := Enhance(markup)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if !strings.Contains(out, `href="https://example.com" target="_blank" rel="noopener"`) &&
		!strings.Contains(out, `target="_blank"`) {
		t.Errorf("external link not hardened: %s", out)
	}
	if strings.Contains(out, `href="#local" target`) || strings.Contains(out, `href="/docs/a.md" target`) {
		t.Errorf("non-absolute links must not be altered: %s", out)
	}
}

func TestEnhance_SpecialCharactersStripped(t *testing.T) {
	_, headings, err := Enhance("<h2>What's New? (v2)</h2>")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if headings[0].Slug != "whats-new-v2" {
		t.Errorf("slug = %q, want whats-new-v2", headings[0].Slug)
	}
}

package markdown

import (
	"strings"
	"testing"
)

func render(t *testing.T, source string) string {
	t.Helper()
	out, err := New().Render([]byte(source))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return out
}

func TestRender_Basic(t *testing.T) {
	out := render(t, "# Hello\n\nSome **bold** text.")

	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello") {
		t.Errorf("missing heading in output: %s", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("missing bold text in output: %s", out)
	}
}

func TestRender_AutoHeadingID(t *testing.T) {
	out := render(t, "## Section Title")

	if !strings.Contains(out, `id="section-title"`) {
		t.Errorf("heading missing auto id: %s", out)
	}
}

func TestRender_GFMTable(t *testing.T) {
	out := render(t, "| a | b |\n|---|---|\n| 1 | 2 |")

	if !strings.Contains(out, "<table>") {
		t.Errorf("table not rendered: %s", out)
	}
}

func TestRender_CodeBlockWrapper(t *testing.T) {
	out := render(t, "```go\nfunc main() {}\n```")

	if !strings.Contains(out, `<div class="code-wrapper" data-lang="go">`) {
		t.Errorf("missing code wrapper: %s", out)
	}
	if !strings.Contains(out, "</div>") {
		t.Errorf("wrapper not closed: %s", out)
	}
	// Classes, not inline styles
	if strings.Contains(out, "style=") {
		t.Errorf("highlighting should emit classes, got inline styles: %s", out)
	}
}

func TestRender_CodeBlockNoLanguage(t *testing.T) {
	out := render(t, "```\nplain\n```")

	if !strings.Contains(out, `data-lang="text"`) {
		t.Errorf("language-less block should be labeled text: %s", out)
	}
}

func TestRender_MathPassthrough(t *testing.T) {
	out := render(t, "Euler: $e^{i\\pi} + 1 = 0$")

	if !strings.Contains(out, "$e^{i\\pi} + 1 = 0$") {
		t.Errorf("inline math not passed through: %s", out)
	}
}

func TestRender_FrontmatterStripped(t *testing.T) {
	out := render(t, "---\ntitle: Hidden\n---\n\nBody text.")

	if strings.Contains(out, "Hidden") {
		t.Errorf("frontmatter leaked into output: %s", out)
	}
	if !strings.Contains(out, "Body text.") {
		t.Errorf("body missing: %s", out)
	}
}

func TestRender_RawHTMLKept(t *testing.T) {
	out := render(t, `<figure class="wide">content</figure>`)

	if !strings.Contains(out, `<figure class="wide">`) {
		t.Errorf("raw HTML should pass through: %s", out)
	}
}

func TestRender_Minified(t *testing.T) {
	out := render(t, "# A\n\n\nparagraph one\n\n\nparagraph two\n")

	if strings.Contains(out, "\n\n") {
		t.Errorf("output not minified: %q", out)
	}
}

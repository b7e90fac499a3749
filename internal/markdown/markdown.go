// Package markdown renders post bodies to HTML for the detail view.
package markdown

import (
	"bytes"
	"fmt"

	chroma_html "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/tdewolff/minify/v2"
	minify_html "github.com/tdewolff/minify/v2/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// codeBlockWrapper wraps highlighted code in a div carrying the language,
// which the detail view styles into a labeled code card.
func codeBlockWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if entering {
		langBytes, _ := c.Language()
		lang := string(langBytes)
		if lang == "" {
			lang = "text"
		}
		_, _ = w.WriteString(`<div class="code-wrapper" data-lang="` + lang + `">`)
	} else {
		_, _ = w.WriteString(`</div>`)
	}
}

// Renderer converts Markdown post bodies to minified HTML. Construct once
// and reuse; it is safe for concurrent use.
type Renderer struct {
	md  goldmark.Markdown
	min *minify.M
}

// New creates a renderer with the full post pipeline: GFM, frontmatter
// metadata, syntax highlighting with chroma classes, admonition blocks, and
// math passthrough for client-side typesetting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			meta.Meta,
			highlighting.NewHighlighting(
				highlighting.WithStyle("nord"),
				highlighting.WithFormatOptions(
					chroma_html.WithClasses(true),
				),
				highlighting.WithWrapperRenderer(codeBlockWrapper),
			),
			&admonitions.Extender{},
			passthrough.New(passthrough.Config{
				InlineDelimiters: []passthrough.Delimiters{{Open: "$", Close: "$"}, {Open: "\\(", Close: "\\)"}},
				BlockDelimiters:  []passthrough.Delimiters{{Open: "$$", Close: "$$"}, {Open: "\\[", Close: "\\]"}},
			}),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	m := minify.New()
	m.AddFunc("text/html", minify_html.Minify)

	return &Renderer{md: md, min: m}
}

// Render converts Markdown source to minified HTML.
func (r *Renderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	out, err := r.min.Bytes("text/html", buf.Bytes())
	if err != nil {
		// Minification is best-effort; serve the unminified HTML
		return buf.String(), nil
	}
	return string(out), nil
}

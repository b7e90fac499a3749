package images

import (
	"fmt"
	"image/color"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/zeebo/blake3"
)

const (
	cardWidth  = 1200
	cardHeight = 630

	cardMarginX   = 80.0
	titleStartY   = 220.0
	titleFontSize = 72.0
	labelY        = 110.0
	labelFontSize = 32.0
)

// palette of card background colors; a post's category picks one by hash so
// every post in a category shares a color.
var palette = []color.RGBA{
	{0x2e, 0x34, 0x40, 0xff},
	{0x3b, 0x42, 0x52, 0xff},
	{0x4c, 0x56, 0x6a, 0xff},
	{0x5e, 0x81, 0xac, 0xff},
	{0xbf, 0x61, 0x6a, 0xff},
	{0xa3, 0xbe, 0x8c, 0xff},
}

var textColor = color.RGBA{0xec, 0xef, 0xf4, 0xff}

// Placeholder renders cover cards for posts without a cover image. A TTF
// font is optional: without one the card carries background and pattern
// only.
type Placeholder struct {
	fontPath string

	fontOnce sync.Once
	font     *truetype.Font
}

// NewPlaceholder creates a generator. fontPath may be empty.
func NewPlaceholder(fontPath string) *Placeholder {
	return &Placeholder{fontPath: fontPath}
}

func (p *Placeholder) loadFont() *truetype.Font {
	p.fontOnce.Do(func() {
		if p.fontPath == "" {
			return
		}
		data, err := os.ReadFile(p.fontPath)
		if err != nil {
			return
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return
		}
		p.font = f
	})
	return p.font
}

func (p *Placeholder) setFace(dc *gg.Context, points float64) bool {
	f := p.loadFont()
	if f == nil {
		return false
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: points, DPI: 72}))
	return true
}

// cardName derives the stored file name from the card inputs, so identical
// cards are generated once.
func cardName(title, category string) string {
	sum := blake3.Sum256([]byte(title + "\x00" + category))
	return fmt.Sprintf("placeholder-%x.webp", sum[:8])
}

// Ensure generates the card for (title, category) if it is not already in
// the store, and returns its file name.
func (p *Placeholder) Ensure(store *Store, title, category string) (string, error) {
	name := cardName(title, category)
	if store.Exists(name) {
		return name, nil
	}

	data, err := p.render(title, category)
	if err != nil {
		return "", err
	}
	if err := store.SaveRaw(name, data); err != nil {
		return "", err
	}
	return name, nil
}

func (p *Placeholder) render(title, category string) ([]byte, error) {
	dc := gg.NewContext(cardWidth, cardHeight)

	sum := blake3.Sum256([]byte(category))
	bg := palette[int(sum[0])%len(palette)]
	dc.SetColor(bg)
	dc.Clear()

	drawDotPattern(dc)

	if p.setFace(dc, labelFontSize) && category != "" {
		dc.SetColor(textColor)
		dc.DrawString(category, cardMarginX, labelY)
	}
	if p.setFace(dc, titleFontSize) {
		dc.SetColor(textColor)
		maxWidth := float64(cardWidth) - cardMarginX*2
		dc.DrawStringWrapped(title, cardMarginX, titleStartY, 0, 0, maxWidth, 1.15, gg.AlignLeft)
	}

	return encodeWebp(dc.Image())
}

// drawDotPattern adds a faint dot grid so fontless cards are not flat
// rectangles.
func drawDotPattern(dc *gg.Context) {
	dc.SetRGBA255(255, 255, 255, 28)

	spacing := 32
	dotRadius := 2.0
	for x := spacing / 2; x < cardWidth; x += spacing {
		for y := spacing / 2; y < cardHeight; y += spacing {
			dc.DrawCircle(float64(x), float64(y), dotRadius)
			dc.Fill()
		}
	}
}

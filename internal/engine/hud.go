package engine

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawLabel stamps a caption into a rendered frame. A one pixel drop
// shadow keeps the text readable over bright fog.
func DrawLabel(img *image.RGBA, x, y int, text string) {
	drawString(img, x+1, y+1, text, color.RGBA{0, 0, 0, 255})
	drawString(img, x, y, text, color.RGBA{255, 255, 255, 255})
}

// DrawHUD writes the caption lines down the top-left corner.
func DrawHUD(img *image.RGBA, lines []string) {
	face := basicfont.Face7x13
	for i, line := range lines {
		DrawLabel(img, 8, 8+face.Ascent+i*(face.Height+2), line)
	}
}

func drawString(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/scene

/*****************************************************************************************************************/

package scene

/*****************************************************************************************************************/

import (
	"image"

	"golang.org/x/image/draw"
)

/*****************************************************************************************************************/

// maxTextureDimension bounds how large a billboard texture is kept resident
// at; source images larger than this are downsampled once at load time so
// the per-pixel nearest-neighbor sample at render time is a plain array
// index rather than a resize.
const maxTextureDimension = 1024

/*****************************************************************************************************************/

// Texture is a billboard's decoded, pre-scaled source image. Sampling is
// nearest-neighbor; fully transparent texels produce no scene hit.
type Texture struct {
	img *image.NRGBA
}

/*****************************************************************************************************************/

// NewTexture decodes src into a Texture, downsampling it to at most
// maxTextureDimension on its longest side via golang.org/x/image/draw's
// nearest-neighbor scaler.
func NewTexture(src image.Image) *Texture {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}

	if longest <= maxTextureDimension || longest == 0 {
		dst := image.NewNRGBA(b)
		draw.Draw(dst, b, src, b.Min, draw.Src)
		return &Texture{img: dst}
	}

	scale := float64(maxTextureDimension) / float64(longest)
	dstW, dstH := int(float64(w)*scale), int(float64(h)*scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return &Texture{img: dst}
}

/*****************************************************************************************************************/

// Sample returns the nearest-neighbor texel at normalized coordinates
// (u, v), both expected in [0, 1]; ok is false if (u, v) falls outside the
// texture. Color channels are normalized to [0, 1].
func (t *Texture) Sample(u, v float64) (r, g, b, a float64, ok bool) {
	if t == nil || t.img == nil {
		return 0, 0, 0, 0, false
	}
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0, 0, 0, 0, false
	}

	bounds := t.img.Bounds()
	x := bounds.Min.X + int(u*float64(bounds.Dx()-1)+0.5)
	y := bounds.Min.Y + int(v*float64(bounds.Dy()-1)+0.5)

	c := t.img.NRGBAAt(x, y)
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255, true
}

/*****************************************************************************************************************/

/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/shading

/*****************************************************************************************************************/

package shading

/*****************************************************************************************************************/

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

/*****************************************************************************************************************/

// TickDef is a visual azimuth marker drawn on the output image.
type TickDef struct {
	AzimuthDeg float64
	Size       float64 // larger size wins precedence when two ticks resolve to the same column
	Label      string
}

/*****************************************************************************************************************/

// ResolveTickColumns maps each tick definition to the column whose center
// azimuth is nearest it; when two ticks resolve to the same column, the
// one with larger Size occupies it.
func ResolveTickColumns(ticks []TickDef, columnAzimuths []float64) map[int]TickDef {
	resolved := make(map[int]TickDef)

	for _, tick := range ticks {
		col := nearestColumn(columnAzimuths, tick.AzimuthDeg)
		if col < 0 {
			continue
		}
		if existing, ok := resolved[col]; !ok || tick.Size > existing.Size {
			resolved[col] = tick
		}
	}
	return resolved
}

/*****************************************************************************************************************/

func nearestColumn(columnAzimuths []float64, azimuth float64) int {
	best := -1
	bestDelta := math.Inf(1)
	for col, az := range columnAzimuths {
		delta := angularDelta(az, azimuth)
		if delta < bestDelta {
			bestDelta, best = delta, col
		}
	}
	return best
}

/*****************************************************************************************************************/

func angularDelta(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

/*****************************************************************************************************************/

// DrawTicks draws a vertical tick mark and label at the top of the image
// for each resolved column, on top of the already-composited raster.
func DrawTicks(dc *gg.Context, resolved map[int]TickDef) {
	for col, tick := range resolved {
		dc.SetColor(color.White)
		dc.SetLineWidth(1)
		length := 6.0 + tick.Size
		dc.DrawLine(float64(col), 0, float64(col), length)
		dc.Stroke()
		if tick.Label != "" {
			dc.DrawStringAnchored(tick.Label, float64(col), length+12, 0.5, 0)
		}
	}
}

/*****************************************************************************************************************/

// DrawEyeLevelLine draws the horizontal line marking the ray elevation
// angle equal to zero, the observer's own eye level.
func DrawEyeLevelLine(dc *gg.Context, y, width int) {
	dc.SetColor(color.RGBA{R: 255, G: 255, B: 255, A: 160})
	dc.SetLineWidth(1)
	dc.DrawLine(0, float64(y), float64(width), float64(y))
	dc.Stroke()
}

/*****************************************************************************************************************/

/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/internal/output

/*****************************************************************************************************************/

// Package output encodes a finished render to its two file formats: an
// 8-bit RGB PNG and a binary per-pixel metadata stream, optionally
// annotated with azimuth ticks and an eye-level line drawn over the raster
// with fogleman/gg.
package output

/*****************************************************************************************************************/

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"

	"github.com/terrainscope/terrainscope/pkg/pipeline"
	"github.com/terrainscope/terrainscope/pkg/shading"
)

/*****************************************************************************************************************/

// IOError wraps a failed image or metadata write, fatal at the end of a
// render.
type IOError struct {
	Path string
	Err  error
}

/*****************************************************************************************************************/

func (e *IOError) Error() string {
	return fmt.Sprintf("output: failed to write %q: %v", e.Path, e.Err)
}

/*****************************************************************************************************************/

func (e *IOError) Unwrap() error { return e.Err }

/*****************************************************************************************************************/

var metadataMagic = [4]byte{'T', 'S', 'C', 'P'}

/*****************************************************************************************************************/

const metadataVersion uint16 = 1

/*****************************************************************************************************************/

// Annotations carries the optional post-composite overlay drawn on top of
// the finished raster before PNG encoding.
type Annotations struct {
	Ticks          []shading.TickDef
	ColumnAzimuths []float64 // one entry per output column, the column's center azimuth
	ShowEyeLevel   bool
	EyeLevelRow    int
}

/*****************************************************************************************************************/

// WriteImage encodes img as an 8-bit RGB PNG at path, first drawing any
// requested tick marks and eye-level line over a copy of the raster via a
// fogleman/gg context.
func WriteImage(path string, img *image.NRGBA, ann Annotations) error {
	dc := gg.NewContextForImage(img)

	if len(ann.Ticks) > 0 && len(ann.ColumnAzimuths) > 0 {
		resolved := shading.ResolveTickColumns(ann.Ticks, ann.ColumnAzimuths)
		shading.DrawTicks(dc, resolved)
	}
	if ann.ShowEyeLevel {
		shading.DrawEyeLevelLine(dc, ann.EyeLevelRow, img.Bounds().Dx())
	}

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer f.Close()

	if err := png.Encode(f, dc.Image()); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

/*****************************************************************************************************************/

// WriteMetadata writes the binary per-pixel record stream: a
// little-endian header (magic(4) | version(u16) | width(u32) | height(u32))
// followed by width*height records of {lat,lon,elevation,distance,
// path_length} f64, NaN for pixels that never hit anything opaque.
func WriteMetadata(path string, width, height int, meta []pipeline.Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	if _, err := w.Write(metadataMagic[:]); err != nil {
		return &IOError{Path: path, Err: err}
	}
	if err := binary.Write(w, binary.LittleEndian, metadataVersion); err != nil {
		return &IOError{Path: path, Err: err}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(width)); err != nil {
		return &IOError{Path: path, Err: err}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(height)); err != nil {
		return &IOError{Path: path, Err: err}
	}

	for _, m := range meta {
		fields := [5]float64{m.Lat, m.Lon, m.Elevation, m.Distance, m.PathLength}
		for _, f64 := range fields {
			if err := binary.Write(w, binary.LittleEndian, f64); err != nil {
				return &IOError{Path: path, Err: err}
			}
		}
	}

	if err := w.Flush(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

/*****************************************************************************************************************/

// ReadMetadata parses a metadata stream written by WriteMetadata, the
// reader half any external metadata viewer would build on.
func ReadMetadata(path string) (width, height int, meta []pipeline.Metadata, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, 0, nil, &IOError{Path: path, Err: err}
	}
	if magic != metadataMagic {
		return 0, 0, nil, &IOError{Path: path, Err: fmt.Errorf("unrecognized metadata magic %q", magic)}
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, 0, nil, &IOError{Path: path, Err: err}
	}

	var w, h uint32
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		return 0, 0, nil, &IOError{Path: path, Err: err}
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return 0, 0, nil, &IOError{Path: path, Err: err}
	}

	records := make([]pipeline.Metadata, w*h)
	for i := range records {
		var fields [5]float64
		for j := range fields {
			if err := binary.Read(r, binary.LittleEndian, &fields[j]); err != nil {
				return 0, 0, nil, &IOError{Path: path, Err: err}
			}
		}
		records[i] = pipeline.Metadata{
			Lat: fields[0], Lon: fields[1], Elevation: fields[2], Distance: fields[3], PathLength: fields[4],
		}
	}

	return int(w), int(h), records, nil
}

/*****************************************************************************************************************/

// IsMissing reports whether a metadata record encodes a missing-hit pixel.
func IsMissing(m pipeline.Metadata) bool {
	return math.IsNaN(m.Lat)
}

/*****************************************************************************************************************/

/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/internal/config

/*****************************************************************************************************************/

package config

/*****************************************************************************************************************/

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"

	"github.com/terrainscope/terrainscope/pkg/geodesy"
	"github.com/terrainscope/terrainscope/pkg/scene"
)

/*****************************************************************************************************************/

// BuildObjects converts scene.objects[] into the concrete pkg/scene.Object
// values the pixel pipeline tests against, decoding any billboard texture
// files via the standard image package's registered decoders (plus
// golang.org/x/image/bmp, blank-imported above for its side-effect
// registration). heightAt resolves a relative object altitude to absolute
// MSL immediately after the DEM lookup it implies; pass
// dem.Cache.Height once the render's cache is constructed.
func (c *Config) BuildObjects(heightAt func(lat, lon float64) float64) ([]scene.Object, error) {
	objects := make([]scene.Object, 0, len(c.Scene.Objects))
	for _, oc := range c.Scene.Objects {
		obj, err := oc.build(heightAt)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

/*****************************************************************************************************************/

func (oc ObjectConfig) build(heightAt func(lat, lon float64) float64) (scene.Object, error) {
	center := geodesy.Point{Lat: oc.Lat, Lon: oc.Lon, Alt: oc.Alt}
	if oc.IsRelative() {
		center = center.ResolveAltitude(heightAt(oc.Lat, oc.Lon), true)
	}

	switch oc.Type {
	case "cylinder":
		return scene.Cylinder{
			Center: center,
			Radius: oc.Radius,
			Height: oc.Height,
			Color:  oc.color(),
		}, nil
	case "billboard":
		tex, err := loadTexture(oc.TextureFile)
		if err != nil {
			return nil, err
		}
		return scene.Billboard{
			Center:  center,
			Width:   oc.Width,
			Height:  oc.Height,
			Texture: tex,
		}, nil
	default:
		return nil, &Error{Reason: fmt.Sprintf("scene object type %q is not recognized", oc.Type)}
	}
}

/*****************************************************************************************************************/

func (oc ObjectConfig) color() color.RGBA {
	rgba := [4]int{255, 0, 0, 255}
	for i := 0; i < len(oc.Color) && i < 4; i++ {
		rgba[i] = oc.Color[i]
	}
	return color.RGBA{R: uint8(rgba[0]), G: uint8(rgba[1]), B: uint8(rgba[2]), A: uint8(rgba[3])}
}

/*****************************************************************************************************************/

func loadTexture(path string) (*scene.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("failed to open billboard texture %q: %v", path, err)}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("failed to decode billboard texture %q: %v", path, err)}
	}
	return scene.NewTexture(img), nil
}

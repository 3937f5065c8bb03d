// Package whitelight loads the whitelight JPEG attached to a measurement and
// extracts the WiRE vendor EXIF tags describing where on the sample it was
// taken.
package whitelight

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Vendor EXIF tags written by the WiRE desktop software.
const (
	tagPosition    = 0xfea0 // two rationals: x, y stage position
	tagFieldOfView = 0xfea1 // two rationals: x, y field of view at 1x
	tagObjective   = 0xfea2 // one rational: objective magnification
)

// Image is the parameter set for Measurement.SetImage.
type Image struct {
	Data         string // base64-encoded JPEG bytes
	Objective    float64
	XPosition    float64
	YPosition    float64
	XFieldOfView float64
	YFieldOfView float64
}

// Params returns the named parameter map for Measurement.SetImage, minus the
// measurement handle.
func (img *Image) Params() map[string]any {
	return map[string]any{
		"Image":        img.Data,
		"Objective":    img.Objective,
		"XPosition":    img.XPosition,
		"YPosition":    img.YPosition,
		"XFieldOfView": img.XFieldOfView,
		"YFieldOfView": img.YFieldOfView,
	}
}

// Load reads a JPEG file and builds the SetImage parameter set from its EXIF
// data. The vendor tags are looked up by numeric id: goexif's field-name
// table only covers the standard tags.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("whitelight %s: %w", path, err)
	}

	img := &Image{Data: base64.StdEncoding.EncodeToString(data)}
	if err := img.readGeometry(x.Tiff); err != nil {
		return nil, fmt.Errorf("whitelight %s: %w", path, err)
	}
	return img, nil
}

// readGeometry fills the sample geometry fields from the vendor tags.
func (img *Image) readGeometry(t *tiff.Tiff) error {
	fields := []struct {
		dst *float64
		id  uint16
		idx int
	}{
		{&img.Objective, tagObjective, 0},
		{&img.XPosition, tagPosition, 0},
		{&img.YPosition, tagPosition, 1},
		{&img.XFieldOfView, tagFieldOfView, 0},
		{&img.YFieldOfView, tagFieldOfView, 1},
	}
	for _, f := range fields {
		v, err := ratValue(t, f.id, f.idx)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

// ratValue finds a tag by id in any IFD and returns rational element i as a
// float.
func ratValue(t *tiff.Tiff, id uint16, i int) (float64, error) {
	for _, dir := range t.Dirs {
		for _, tag := range dir.Tags {
			if tag.Id != id {
				continue
			}
			num, den, err := tag.Rat2(i)
			if err != nil {
				return 0, fmt.Errorf("EXIF tag %#x: %w", id, err)
			}
			if den == 0 {
				return 0, fmt.Errorf("EXIF tag %#x: zero denominator", id)
			}
			return float64(num) / float64(den), nil
		}
	}
	return 0, fmt.Errorf("EXIF tag %#x not present", id)
}

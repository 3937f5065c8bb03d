package config

import (
	"encoding/json"
	"fmt"
)

// The Measurement.SetMap* methods take their geometry positionally. The
// command line accepts the same values as named JSON objects and these
// parsers do the reordering.

// MapArea is the rectangle-map geometry accepted by --map-area.
type MapArea struct {
	XStart   float64
	YStart   float64
	XStep    float64
	YStep    float64
	XCount   int
	YCount   int
	RowMajor bool
	Snake    bool
}

// Params returns the positional array Measurement.SetMap expects as
// rectangleParam.
func (m *MapArea) Params() []any {
	return []any{m.XStart, m.YStart, m.XStep, m.YStep, m.XCount, m.YCount, m.RowMajor, m.Snake}
}

// Series is the series geometry accepted by --series.
type Series struct {
	Count int
	Start float64
	Step  float64
	Units string
	Label string
}

// Params returns the positional array Measurement.SetMap expects as
// seriesParam.
func (s *Series) Params() []any {
	return []any{s.Count, s.Start, s.Step, s.Units, s.Label}
}

// CustomAxis is a custom data origin accepted by --custom.
type CustomAxis struct {
	Index int
	Type  string
	Units string
	Label string
}

// Params returns the positional array Measurement.SetMapCustomAxis expects
// as custom_axes.
func (c *CustomAxis) Params() []any {
	return []any{c.Index, c.Type, c.Units, c.Label}
}

// ParseMapArea parses the --map-area JSON object.
func ParseMapArea(blob string) (*MapArea, error) {
	var m MapArea
	err := decodeFields(blob, map[string]any{
		"xStart":    &m.XStart,
		"yStart":    &m.YStart,
		"xStep":     &m.XStep,
		"yStep":     &m.YStep,
		"xCount":    &m.XCount,
		"yCount":    &m.YCount,
		"row_major": &m.RowMajor,
		"snake":     &m.Snake,
	})
	if err != nil {
		return nil, fmt.Errorf("map area: %w", err)
	}
	return &m, nil
}

// ParseSeries parses the --series JSON object.
func ParseSeries(blob string) (*Series, error) {
	var s Series
	err := decodeFields(blob, map[string]any{
		"count": &s.Count,
		"start": &s.Start,
		"step":  &s.Step,
		"units": &s.Units,
		"label": &s.Label,
	})
	if err != nil {
		return nil, fmt.Errorf("series: %w", err)
	}
	return &s, nil
}

// ParseCustomAxis parses the --custom JSON object.
func ParseCustomAxis(blob string) (*CustomAxis, error) {
	var c CustomAxis
	err := decodeFields(blob, map[string]any{
		"index": &c.Index,
		"type":  &c.Type,
		"units": &c.Units,
		"label": &c.Label,
	})
	if err != nil {
		return nil, fmt.Errorf("custom axis: %w", err)
	}
	return &c, nil
}

// decodeFields unmarshals blob as a JSON object and requires every listed
// key to be present.
func decodeFields(blob string, fields map[string]any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return err
	}
	for key, dst := range fields {
		val, ok := raw[key]
		if !ok {
			return fmt.Errorf("missing key %q", key)
		}
		if err := json.Unmarshal(val, dst); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}
	return nil
}

package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Faultbox/prt-relight/pkg/prt"
)

// Payloads holds the raw bytes of every part of one model.
type Payloads map[Part][]byte

// Decode parses the six JSON arrays and builds a validated asset.
func Decode(modelID string, p Payloads) (*prt.Asset, error) {
	floats := make(map[Part][]float32, len(Parts))
	for _, part := range Parts {
		if part == PartIndices {
			continue
		}
		data, ok := p[part]
		if !ok {
			return nil, fmt.Errorf("%w: model %q is missing part %s", prt.ErrMalformedInput, modelID, part)
		}
		v, err := decodeFloats(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", prt.ErrMalformedInput, FileName(modelID, part), err)
		}
		floats[part] = v
	}

	raw, ok := p[PartIndices]
	if !ok {
		return nil, fmt.Errorf("%w: model %q is missing part %s", prt.ErrMalformedInput, modelID, PartIndices)
	}
	indices, err := decodeIndices(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", prt.ErrMalformedInput, FileName(modelID, PartIndices), err)
	}

	return prt.NewAsset(modelID,
		floats[PartPositions], indices, floats[PartColors],
		floats[PartPRT1], floats[PartPRT2], floats[PartPRT3])
}

// decodeFloats accepts a flat array or an array of 3-tuples.
func decodeFloats(data []byte) ([]float32, error) {
	nums, err := decodeNumbers(data)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(nums))
	for i, n := range nums {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("value %d is not finite", i)
		}
		out[i] = float32(n)
	}
	return out, nil
}

func decodeIndices(data []byte) ([]uint32, error) {
	nums, err := decodeNumbers(data)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(nums))
	for i, n := range nums {
		if n < 0 || n > math.MaxUint32 || n != math.Trunc(n) {
			return nil, fmt.Errorf("index %d: %v is not a valid vertex index", i, n)
		}
		out[i] = uint32(n)
	}
	return out, nil
}

// decodeNumbers flattens a JSON array of numbers or of 3-tuples.
func decodeNumbers(data []byte) ([]float64, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) < 2 || trimmed[0] != '[' {
		return nil, fmt.Errorf("expected a JSON array")
	}

	var flat []float64
	if err := json.Unmarshal(trimmed, &flat); err == nil {
		return flat, nil
	}

	var nested [][]float64
	if err := json.Unmarshal(trimmed, &nested); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(nested)*3)
	for i, row := range nested {
		if len(row) != 3 {
			return nil, fmt.Errorf("row %d has %d values, want 3", i, len(row))
		}
		out = append(out, row...)
	}
	return out, nil
}

package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
)

// Codec serializes the storage blob. Encodings must be deterministic so that
// equal states produce byte-identical blobs.
type Codec interface {
	Name() string
	Marshal(fields map[string]float64) ([]byte, error)
	// Unmarshal decodes a flat record. Values are returned untyped so that
	// DecodeBlob can reject non-numeric fields.
	Unmarshal(data []byte) (map[string]any, error)
}

// JSONCodec encodes the blob as a flat JSON object with sorted keys.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(fields map[string]float64) ([]byte, error) {
	return json.Marshal(fields)
}

func (JSONCodec) Unmarshal(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	if m == nil {
		return nil, fmt.Errorf("blob is not a JSON object")
	}
	return m, nil
}

// MsgpackCodec encodes the blob as a MessagePack map with sorted keys.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(fields map[string]float64) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte) (map[string]any, error) {
	r := bytes.NewReader(data)
	var m map[string]any
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("trailing data after msgpack map")
	}
	if m == nil {
		return nil, fmt.Errorf("blob is not a msgpack map")
	}
	return m, nil
}

// CodecByName returns the codec for "json" (or "") and "msgpack".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unknown blob codec %q", name)
}

// EncodeBlob serializes s with codec.
func EncodeBlob(codec Codec, s State) ([]byte, error) {
	return codec.Marshal(s.Map())
}

// DecodeBlob reads a State from a storage blob. The blob must decode to a flat
// record holding all ten keys as finite numbers; extra keys are ignored.
func DecodeBlob(codec Codec, data []byte) (State, error) {
	if len(data) == 0 {
		return State{}, errs.New(errs.ErrCodeIncompleteState, "empty blob")
	}
	m, err := codec.Unmarshal(data)
	if err != nil {
		return State{}, errs.Wrap(errs.ErrCodeInvalidEncoding, err, "decode %s blob", codec.Name())
	}

	var v [10]float64
	for i, k := range Keys {
		raw, ok := m[k]
		if !ok {
			return State{}, errs.New(errs.ErrCodeIncompleteState, "blob is missing %q", k)
		}
		f, ok := toFloat(raw)
		if !ok {
			return State{}, errs.New(errs.ErrCodeInvalidState, "blob field %q is %T, not a number", k, raw)
		}
		if err := errs.ValidateFinite(k, f); err != nil {
			return State{}, err
		}
		v[i] = f
	}
	return fromValues(v), nil
}

// toFloat accepts the numeric kinds the codecs produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return math.NaN(), false
}

// Package graph - codec converts Node/Edge records to and from the bytes
// stored under backend keys.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// encodeNode converts a Node to JSON bytes for storage.
//
// Floats in the property map are rewritten as json.Number literals that
// always carry a decimal point or exponent. json.Marshal would otherwise
// render float64(2) as the bare literal 2, and the decode side would hand
// it back as an int64.
func encodeNode(node *Node) ([]byte, error) {
	out := *node
	out.Properties = encodeMap(node.Properties)
	return json.Marshal(&out)
}

// decodeNode converts stored bytes back to a Node.
//
// Numbers inside the property map are decoded through json.Number and
// normalized so integers come back as int64 and fractional values as
// float64, matching what encodeNode was given. Malformed bytes fail with
// ErrCorruptRecord.
func decodeNode(data []byte) (*Node, error) {
	var node Node
	if err := decodeStrictNumbers(data, &node); err != nil {
		return nil, fmt.Errorf("%w: decoding node: %v", ErrCorruptRecord, err)
	}
	node.Properties = normalizeMap(node.Properties)
	return &node, nil
}

// encodeEdge converts an Edge to JSON bytes for storage.
func encodeEdge(edge *Edge) ([]byte, error) {
	out := *edge
	out.Properties = encodeMap(edge.Properties)
	return json.Marshal(&out)
}

// decodeEdge converts stored bytes back to an Edge.
func decodeEdge(data []byte) (*Edge, error) {
	var edge Edge
	if err := decodeStrictNumbers(data, &edge); err != nil {
		return nil, fmt.Errorf("%w: decoding edge: %v", ErrCorruptRecord, err)
	}
	edge.Properties = normalizeMap(edge.Properties)
	return &edge, nil
}

// decodeStrictNumbers unmarshals data into v, keeping numeric literals as
// json.Number so int/float distinction is not lost to float64 coercion.
// Data must hold exactly one JSON value; trailing bytes fail the decode.
func decodeStrictNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return fmt.Errorf("trailing data after record")
	}
	return nil
}

// encodeMap returns a copy of m (recursively) in which every float is
// rewritten as a json.Number whose literal keeps it a float across a round
// trip. The input map is never mutated; it may be shared with a cache.
func encodeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case float64:
		return floatNumber(val)
	case float32:
		return floatNumber(float64(val))
	case map[string]any:
		return encodeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

// floatNumber formats f so the literal always contains a decimal point or
// exponent. Whole-valued floats get an explicit ".0"; non-finite values
// produce an invalid literal and fail at Marshal, same as a raw float64.
func floatNumber(f float64) json.Number {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}

// normalizeMap rewrites every json.Number in m (recursively) as int64 or
// float64. Integer literals (no fraction, no exponent) become int64;
// everything else becomes float64.
func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		return normalizeNumber(val)
	case map[string]any:
		return normalizeMap(val)
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item)
		}
		return val
	default:
		return v
	}
}

func normalizeNumber(n json.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f, err := n.Float64()
	if err != nil {
		// Unparseable numbers can't come out of encoding/json's own
		// scanner; keep the literal rather than invent a value.
		return s
	}
	return f
}

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeFields parses a stored JSON payload back into a field map.
//
// Numbers decode through json.Number to int64 - going through float64
// would lose precision on millisecond timestamps past 2^53 and reintroduce
// the floats the value model forbids. Objects carrying exactly
// {"collectionId", "id"} decode as Refs.
func DecodeFields(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		decoded, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = decoded
	}
	return out, nil
}

func decodeValue(v any) (any, error) {
	switch val := v.(type) {
	case string, bool:
		return val, nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %q", val.String())
		}
		return n, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			decoded, err := decodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = decoded
		}
		return out, nil
	case map[string]any:
		if ref, ok := decodeRef(val); ok {
			return ref, nil
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			decoded, err := decodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = decoded
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("null is forbidden in record fields")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func decodeRef(m map[string]any) (Ref, bool) {
	if len(m) != 2 {
		return Ref{}, false
	}
	collection, ok := m["collectionId"].(string)
	if !ok {
		return Ref{}, false
	}
	id, ok := m["id"].(string)
	if !ok {
		return Ref{}, false
	}
	return Ref{Collection: collection, ID: id}, true
}

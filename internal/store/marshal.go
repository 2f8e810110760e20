package store

import (
	"fmt"
	"strconv"

	"github.com/hearthside/hangouts/internal/record"
	"github.com/hearthside/hangouts/internal/schema"
)

// encodeRecord converts a record's fields to canonical JSON TEXT for
// storage. RFC 8785 serialization keeps the stored bytes stable for any
// logically-equal document.
func encodeRecord(rec *record.Record) (string, error) {
	data, err := record.MarshalCanonical(rec.Fields)
	if err != nil {
		return "", fmt.Errorf("marshal record %s/%s: %w", rec.Collection, rec.ID, err)
	}
	return string(data), nil
}

// decodeRecord rebuilds a record from its stored document.
func decodeRecord(collection, id, data string) (*record.Record, error) {
	fields, err := record.DecodeFields([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", collection, id, err)
	}
	rec := record.New(collection, id)
	rec.Fields = fields
	return rec, nil
}

// indexValue renders a field's value as the TEXT stored in
// index_entries. References index by their target id, matching how
// queries address them.
func indexValue(spec *schema.FieldSpec, v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case record.Ref:
		return val.ID, true
	default:
		return "", false
	}
}

// queryValue renders a caller-supplied query value the same way
// indexValue renders stored fields, so comparisons line up.
func queryValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case record.Ref:
		return val.ID, nil
	default:
		return "", fmt.Errorf("unsupported query value type %T", v)
	}
}

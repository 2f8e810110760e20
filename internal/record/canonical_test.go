package record

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysByUTF16(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"b": int64(2),
		"a": int64(1),
		"c": int64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"content": "<b>5 & 6</b>"})
	require.NoError(t, err)
	assert.Equal(t, `{"content":"<b>5 & 6</b>"}`, string(data))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	decomposed := "café"
	precomposed := "café"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_LineSeparatorsStayLiteral(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(data))

	// Backslash followed by the text "u2028" is not a separator and must
	// keep its escaped backslash.
	data, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(data))
}

func TestMarshalCanonical_RefSerializesAsObject(t *testing.T) {
	data, err := MarshalCanonical(NewRef("Club", "club-1"))
	require.NoError(t, err)
	assert.Equal(t, `{"collectionId":"Club","id":"club-1"}`, string(data))
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"score": 4.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"missing": nil})
	assert.Error(t, err)
}

func TestMarshalCanonical_ByteStableAcrossLogicallyEqualMaps(t *testing.T) {
	first, err := MarshalCanonical(map[string]any{
		"id":   "x",
		"club": NewRef("Club", "c1"),
		"tags": []any{"a", "b"},
	})
	require.NoError(t, err)

	second, err := MarshalCanonical(map[string]any{
		"tags": []any{"a", "b"},
		"club": NewRef("Club", "c1"),
		"id":   "x",
	})
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestMarshalCanonical_GoldenRecord(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"id":              "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B/club-1",
		"club":            NewRef("Club", "club-1"),
		"member":          NewRef("UserProfile", "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"),
		"memberPublicKey": "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		"canRevoke":       []any{"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"},
	})
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "membership_record", data)
}

func TestDecodeFields_RoundTripsRefsAndInts(t *testing.T) {
	fields := map[string]any{
		"id":        "p1",
		"club":      NewRef("Club", "c1"),
		"createdAt": int64(1717200000000),
		"open":      true,
		"genres":    []any{"mystery", "cozy"},
		"reactions": map[string]any{"0xabc": int64(1)},
	}
	data, err := MarshalCanonical(fields)
	require.NoError(t, err)

	decoded, err := DecodeFields(data)
	require.NoError(t, err)
	assert.Equal(t, fields, decoded)
}

func TestDecodeFields_RejectsNonIntegerNumbers(t *testing.T) {
	_, err := DecodeFields([]byte(`{"score": 4.5}`))
	assert.Error(t, err)
}

func TestValidateValue_RejectsFloats(t *testing.T) {
	assert.Error(t, ValidateValue(4.5))
	assert.Error(t, ValidateValue([]any{"ok", 1.0}))
	assert.NoError(t, ValidateValue(map[string]any{"n": int64(4)}))
}

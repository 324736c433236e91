package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyExcludeValue(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		raw           any
		expectedOwned bool
	}{
		{name: "ownership tag", raw: OwnershipTag, expectedOwned: true},
		{name: "true", raw: true},
		{name: "false", raw: false},
		{name: "other string", raw: "explorerExcludedFiles.show"},
		{name: "object", raw: NewObject()},
		{name: "number", raw: json.Number("1")},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			value := ClassifyExcludeValue(testCase.raw)
			assert.Equal(t, testCase.expectedOwned, value.IsOwned())
			assert.Equal(t, testCase.raw, value.Raw())
		})
	}
}

func TestRemoveOwnedEntriesKeepsUserEntries(t *testing.T) {
	t.Parallel()

	root, err := Parse([]byte(`{"a": "explorerExcludedFiles", "b": true, "c": false, "d": "explorerExcludedFiles", "e": "keep"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, RemoveOwnedEntries(root))
	assert.Equal(t, []string{"b", "c", "e"}, root.Keys())
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value    any
		expected bool
	}{
		{value: nil, expected: false},
		{value: false, expected: false},
		{value: true, expected: true},
		{value: "", expected: false},
		{value: "yes", expected: true},
		{value: json.Number("0"), expected: false},
		{value: json.Number("2"), expected: true},
		{value: []any{}, expected: true},
		{value: NewObject(), expected: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, Truthy(testCase.value), "Truthy(%#v)", testCase.value)
	}
}

func TestStringList(t *testing.T) {
	t.Parallel()

	values, isArray := StringList([]any{"a", json.Number("1"), "b"})
	require.True(t, isArray)
	assert.Equal(t, []string{"a", "b"}, values)

	_, isArray = StringList("file://.gitignore")
	assert.False(t, isArray)
}

func TestZeroValueObjectAcceptsMembers(t *testing.T) {
	t.Parallel()

	var object Object
	assert.False(t, object.Has("a"))
	object.Set("a", true)
	object.Set("b", "x")
	object.Set("a", false)

	assert.Equal(t, []string{"a", "b"}, object.Keys())
	value, exists := object.Get("a")
	require.True(t, exists)
	assert.Equal(t, false, value)
}

package settings

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Object is a JSON object that remembers the order in which its keys were first seen.
// Nested objects decode as *Object, arrays as []any, numbers as json.Number.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Len reports the number of members.
func (object *Object) Len() int {
	if object == nil {
		return 0
	}
	return len(object.keys)
}

// Keys returns the member names in document order.
func (object *Object) Keys() []string {
	if object == nil {
		return nil
	}
	return append([]string(nil), object.keys...)
}

// Has reports whether key is a member.
func (object *Object) Has(key string) bool {
	if object == nil {
		return false
	}
	_, exists := object.values[key]
	return exists
}

// Get returns the value stored under key.
func (object *Object) Get(key string) (any, bool) {
	if object == nil {
		return nil, false
	}
	value, exists := object.values[key]
	return value, exists
}

// Object returns the nested object stored under key.
// The boolean is false when the key is absent or holds another JSON type.
func (object *Object) Object(key string) (*Object, bool) {
	value, exists := object.Get(key)
	if !exists {
		return nil, false
	}
	nested, isObject := value.(*Object)
	return nested, isObject
}

// Set stores value under key. A new key is appended; an existing key keeps its position.
func (object *Object) Set(key string, value any) {
	if object.values == nil {
		object.values = make(map[string]any)
	}
	if _, exists := object.values[key]; !exists {
		object.keys = append(object.keys, key)
	}
	object.values[key] = value
}

// Delete removes key and reports whether it was present.
func (object *Object) Delete(key string) bool {
	if object == nil {
		return false
	}
	if _, exists := object.values[key]; !exists {
		return false
	}
	delete(object.values, key)
	for keyIndex, existingKey := range object.keys {
		if existingKey == key {
			object.keys = append(object.keys[:keyIndex], object.keys[keyIndex+1:]...)
			break
		}
	}
	return true
}

// Equal reports deep structural equality. Member order is ignored.
func (object *Object) Equal(other *Object) bool {
	if object.Len() != other.Len() {
		return false
	}
	if object == nil || other == nil {
		return object.Len() == 0 && other.Len() == 0
	}
	for key, value := range object.values {
		otherValue, exists := other.values[key]
		if !exists || !cmp.Equal(value, otherValue) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the members in document order without HTML escaping.
func (object *Object) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for keyIndex, key := range object.Keys() {
		if keyIndex > 0 {
			buffer.WriteByte(',')
		}
		encodedKey, keyError := marshalUnescaped(key)
		if keyError != nil {
			return nil, keyError
		}
		encodedValue, valueError := marshalUnescaped(object.values[key])
		if valueError != nil {
			return nil, fmt.Errorf("encode %q: %w", key, valueError)
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(':')
		buffer.Write(encodedValue)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// UnmarshalJSON replaces the receiver's members with the decoded object.
func (object *Object) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	value, decodeError := decodeValue(decoder)
	if decodeError != nil {
		return decodeError
	}
	decoded, isObject := value.(*Object)
	if !isObject {
		return ErrNotObject
	}
	*object = *decoded
	return nil
}

func marshalUnescaped(value any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

func decodeValue(decoder *json.Decoder) (any, error) {
	token, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, tokenError
	}
	delimiter, isDelimiter := token.(json.Delim)
	if !isDelimiter {
		return token, nil
	}
	switch delimiter {
	case '{':
		return decodeObject(decoder)
	case '[':
		return decodeArray(decoder)
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delimiter)
	}
}

func decodeObject(decoder *json.Decoder) (*Object, error) {
	object := NewObject()
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, keyError
		}
		key, isString := keyToken.(string)
		if !isString {
			return nil, fmt.Errorf("unexpected object key %v", keyToken)
		}
		value, valueError := decodeValue(decoder)
		if valueError != nil {
			return nil, fmt.Errorf("decode %q: %w", key, valueError)
		}
		object.Set(key, value)
	}
	if _, closeError := decoder.Token(); closeError != nil {
		return nil, closeError
	}
	return object, nil
}

func decodeArray(decoder *json.Decoder) ([]any, error) {
	elements := []any{}
	for decoder.More() {
		element, elementError := decodeValue(decoder)
		if elementError != nil {
			return nil, elementError
		}
		elements = append(elements, element)
	}
	if _, closeError := decoder.Token(); closeError != nil {
		return nil, closeError
	}
	return elements, nil
}

// Truthy applies the editor's loose truthiness to a decoded JSON value:
// false, null, "", and zero are false; everything else is true.
func Truthy(value any) bool {
	switch typedValue := value.(type) {
	case nil:
		return false
	case bool:
		return typedValue
	case string:
		return typedValue != ""
	case json.Number:
		number, parseError := typedValue.Float64()
		return parseError != nil || number != 0
	default:
		return true
	}
}

// StringList extracts the string members of a JSON array.
// The boolean is false when value is not an array; non-string members are skipped.
func StringList(value any) ([]string, bool) {
	elements, isArray := value.([]any)
	if !isArray {
		return nil, false
	}
	texts := make([]string, 0, len(elements))
	for _, element := range elements {
		if text, isString := element.(string); isString {
			texts = append(texts, text)
		}
	}
	return texts, true
}

// AnyList converts a string slice into a JSON array value.
func AnyList(values []string) []any {
	elements := make([]any, 0, len(values))
	for _, value := range values {
		elements = append(elements, value)
	}
	return elements
}

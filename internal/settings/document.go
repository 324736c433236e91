// Package settings reads, compares, and rewrites the editor's JSON settings documents.
//
// A Document is loaded whole, mutated in memory through its Root object, and written
// back only when it differs structurally from what was read. Settings files are JSONC:
// comments and trailing commas are accepted on read and dropped on write.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	"github.com/tailscale/hujson"
)

const (
	settingsFilePermissions      = 0o644
	settingsDirectoryPermissions = 0o755
	indentation                  = "  "
)

// ErrNotObject reports a settings document whose top-level value is not a JSON object.
var ErrNotObject = errors.New("settings document is not a JSON object")

var utf8ByteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Document is a settings file held in memory together with its on-disk state.
type Document struct {
	path     string
	root     *Object
	original *Object
	exists   bool
}

// Load reads the settings document at path. A missing file yields an empty document.
//
// #nosec G304
func Load(path string) (*Document, error) {
	content, readError := os.ReadFile(path)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return &Document{path: path, root: NewObject(), original: NewObject()}, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, readError)
	}
	root, parseError := Parse(content)
	if parseError != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, parseError)
	}
	original, _ := Parse(content)
	return &Document{path: path, root: root, original: original, exists: true}, nil
}

// Parse decodes settings content into an Object. Blank content is an empty object.
func Parse(content []byte) (*Object, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(content, utf8ByteOrderMark))
	if len(trimmed) == 0 {
		return NewObject(), nil
	}
	standardized, standardizeError := hujson.Standardize(trimmed)
	if standardizeError != nil {
		return nil, standardizeError
	}
	root := NewObject()
	if decodeError := json.Unmarshal(standardized, root); decodeError != nil {
		return nil, decodeError
	}
	return root, nil
}

// Format renders an Object the way the editor writes settings: two-space indentation, no trailing newline.
func Format(root *Object) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indentation)
	if encodeError := encoder.Encode(root); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

// Path returns the file path of the document.
func (document *Document) Path() string {
	return document.path
}

// Root returns the mutable top-level object.
func (document *Document) Root() *Object {
	return document.root
}

// Exists reports whether the file existed when the document was loaded or last saved.
func (document *Document) Exists() bool {
	return document.exists
}

// Changed reports whether the in-memory document differs structurally from the file as read.
func (document *Document) Changed() bool {
	return !cmp.Equal(document.root, document.original)
}

// Save writes the document when it changed and reports whether a write happened.
func (document *Document) Save() (bool, error) {
	if !document.Changed() {
		return false, nil
	}
	if writeError := document.Write(); writeError != nil {
		return false, writeError
	}
	return true, nil
}

// Write unconditionally writes the document, creating its directory when needed.
func (document *Document) Write() error {
	content, formatError := Format(document.root)
	if formatError != nil {
		return fmt.Errorf("encode settings %s: %w", document.path, formatError)
	}
	if mkdirError := os.MkdirAll(filepath.Dir(document.path), settingsDirectoryPermissions); mkdirError != nil {
		return fmt.Errorf("create settings directory for %s: %w", document.path, mkdirError)
	}
	if writeError := os.WriteFile(document.path, content, settingsFilePermissions); writeError != nil {
		return fmt.Errorf("write settings %s: %w", document.path, writeError)
	}
	reloaded, _ := Parse(content)
	document.original = reloaded
	document.exists = true
	return nil
}

// RemoveWithDirectory deletes the settings file and its directory when the directory holds nothing else.
// It reports whether the file was removed.
func (document *Document) RemoveWithDirectory() (bool, error) {
	directory := filepath.Dir(document.path)
	entries, readError := os.ReadDir(directory)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("list settings directory %s: %w", directory, readError)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(document.path) {
		return false, nil
	}
	if removeError := os.Remove(document.path); removeError != nil {
		return false, fmt.Errorf("remove settings %s: %w", document.path, removeError)
	}
	if removeError := os.Remove(directory); removeError != nil {
		return true, fmt.Errorf("remove settings directory %s: %w", directory, removeError)
	}
	document.original = NewObject()
	document.exists = false
	return true, nil
}

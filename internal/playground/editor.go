package playground

import (
	"fmt"
	"os"
	"sync"
)

// Editor is the source of snippet text. Text returns the current contents;
// the pipeline never modifies them.
type Editor interface {
	Text() (string, error)
}

// Buffer is an in-memory editor
type Buffer struct {
	mu   sync.RWMutex
	text string
}

// NewBuffer creates a buffer holding text
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text}
}

// Text returns the buffer contents
func (b *Buffer) Text() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text, nil
}

// Set replaces the buffer contents
func (b *Buffer) Set(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
}

// FileEditor reads its text from a file on every call
type FileEditor struct {
	Path string
}

// NewFileEditor creates an editor backed by path
func NewFileEditor(path string) *FileEditor {
	return &FileEditor{Path: path}
}

// Text reads the file
func (f *FileEditor) Text() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read snippet: %w", err)
	}
	return string(data), nil
}

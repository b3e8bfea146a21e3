// Package journal persists a document stream as JSON lines, one tagged
// document per line. It is the CLI's on-disk input format and can
// record a live stream for later replay.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"streamtiff/internal/domain"
)

// Lines carrying inline image arrays can get large.
const maxLineBytes = 64 << 20

// Writer appends tagged documents to a journal file.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	closed bool
}

func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{file: f, writer: bufio.NewWriterSize(f, 1<<20)}, nil
}

func (w *Writer) Append(doc domain.Tagged) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("journal writer is closed")
	}
	line, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return err
	}
	return w.writer.WriteByte('\n')
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	ferr := w.writer.Flush()
	if cerr := w.file.Close(); ferr == nil {
		ferr = cerr
	}
	return ferr
}

// Iterate replays a journal file in order, calling fn for each
// document. Iteration stops at the first error from fn.
func Iterate(path string, fn func(domain.Tagged) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<20), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc domain.Tagged
		if err := json.Unmarshal(line, &doc); err != nil {
			return fmt.Errorf("journal line %d: %w", lineNo, err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ReadAll loads a whole journal into memory.
func ReadAll(path string) ([]domain.Tagged, error) {
	var docs []domain.Tagged
	err := Iterate(path, func(doc domain.Tagged) error {
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

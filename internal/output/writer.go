package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quantmind-br/cgitscrape/internal/utils"
	"gopkg.in/yaml.v3"
)

// Supported formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Writer encodes extraction results to a file or a stream
type Writer struct {
	format string
	file   string
	out    io.Writer
	force  bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	// Format is json or yaml; empty means json
	Format string
	// File is the target path; empty writes to Out
	File string
	// Out is the stream used when File is empty; nil means stdout
	Out io.Writer
	// Force allows replacing an existing File
	Force bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) (*Writer, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "", FormatJSON:
		format = FormatJSON
	case FormatYAML, "yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("unsupported output format %q", opts.Format)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Writer{
		format: format,
		file:   opts.File,
		out:    out,
		force:  opts.Force,
	}, nil
}

// Format returns the encoding in use
func (w *Writer) Format() string {
	return w.format
}

// Write encodes v in the configured format
func (w *Writer) Write(v any) error {
	data, err := w.Encode(v)
	if err != nil {
		return err
	}
	return w.emit(data)
}

// WriteRaw writes text as is, adding a final newline when missing. It
// serves Markdown and blob content.
func (w *Writer) WriteRaw(text string) error {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return w.emit([]byte(text))
}

// Encode renders v without writing it
func (w *Writer) Encode(v any) ([]byte, error) {
	switch w.format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
}

func (w *Writer) emit(data []byte) error {
	if w.file == "" {
		_, err := w.out.Write(data)
		return err
	}

	if !w.force {
		if _, err := os.Stat(w.file); err == nil {
			return fmt.Errorf("output file %s already exists (use --force to overwrite)", w.file)
		}
	}

	if err := utils.EnsureDir(w.file); err != nil {
		return err
	}
	return os.WriteFile(w.file, data, 0644)
}

// Package notebook checks that uploaded payloads look like Jupyter notebooks
// before an artifact reference is recorded for them.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalid indicates the payload is not an acceptable notebook.
var ErrInvalid = errors.New("invalid notebook")

// MaxSize caps how much of an upload is inspected and stored.
const MaxSize = 16 << 20

var schema = jsonschema.MustCompileString("nbformat.json", `{
	"type": "object",
	"required": ["cells", "nbformat"],
	"properties": {
		"cells": {"type": "array"},
		"nbformat": {"type": "integer", "minimum": 3},
		"nbformat_minor": {"type": "integer", "minimum": 0}
	}
}`)

// ValidateHeader opens the multipart upload and validates its content.
func ValidateHeader(file *multipart.FileHeader) error {
	if file == nil {
		return fmt.Errorf("%w: notebook file is required", ErrInvalid)
	}
	if file.Size > MaxSize {
		return fmt.Errorf("%w: notebook exceeds maximum size of %d bytes", ErrInvalid, MaxSize)
	}

	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open notebook: %w", err)
	}
	defer reader.Close()

	return Validate(reader)
}

// Validate reads the payload and checks it against the notebook format schema.
func Validate(reader io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(reader, MaxSize+1))
	if err != nil {
		return fmt.Errorf("failed to read notebook: %w", err)
	}
	if len(data) > MaxSize {
		return fmt.Errorf("%w: notebook exceeds maximum size of %d bytes", ErrInvalid, MaxSize)
	}

	mime := mimetype.Detect(data)
	if !mime.Is("application/json") && !mime.Is("text/plain") {
		return fmt.Errorf("%w: unsupported content type %s", ErrInvalid, mime.String())
	}

	var document interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("%w: payload is not valid JSON", ErrInvalid)
	}

	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: payload does not match the nbformat shape", ErrInvalid)
	}

	return nil
}

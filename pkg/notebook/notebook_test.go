package notebook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsNotebook(t *testing.T) {
	payload := `{
		"cells": [{"cell_type": "code", "source": ["print('hi')"]}],
		"nbformat": 4,
		"nbformat_minor": 5
	}`
	require.NoError(t, Validate(strings.NewReader(payload)))
}

func TestValidateRejectsNonJSON(t *testing.T) {
	err := Validate(strings.NewReader("this is not json"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRejectsWrongShape(t *testing.T) {
	err := Validate(strings.NewReader(`{"cells": "not-an-array", "nbformat": 4}`))
	require.ErrorIs(t, err, ErrInvalid)

	err = Validate(strings.NewReader(`{"nbformat": 4}`))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRejectsBinaryPayload(t *testing.T) {
	err := Validate(strings.NewReader("\x89PNG\r\n\x1a\n0000"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestValidateHeaderNilFile(t *testing.T) {
	err := ValidateHeader(nil)
	require.ErrorIs(t, err, ErrInvalid)
}

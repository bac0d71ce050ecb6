package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(SyncSummary{Fetched: 3})
	require.NoError(t, err)

	var resp Response
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "sync failed", nil)
	require.NoError(t, err)

	var resp Response
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "sync failed", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Printed 6 labels")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Printed 6 labels")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E002", "printer offline", "dial tcp: refused")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E002]: printer offline")
	assert.Contains(t, buf.String(), "Details: dial tcp: refused")
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapExitError(ExitCommandError, "failed to open database", base)

	assert.Equal(t, "failed to open database: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))

	plain := NewExitError(ExitFailure, "sync incomplete")
	assert.Equal(t, "sync incomplete", plain.Error())
	assert.Equal(t, ExitFailure, GetExitCode(plain))

	// Non-ExitErrors default to the generic failure code.
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("other")))
}

func TestSyncSummaryString(t *testing.T) {
	s := SyncSummary{Fetched: 10, Discarded: 1, Synced: 2, Failed: 1, PushError: "timeout"}
	text := s.String()
	assert.Contains(t, text, "Pulled 10 products (1 discarded)")
	assert.Contains(t, text, "Pushed 2 sales (1 failed)")
	assert.Contains(t, text, "Push error: timeout")
}

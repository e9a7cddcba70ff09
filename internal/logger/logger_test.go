package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTo_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "prod")

	log.Info("hello", Err(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "boom", line["error"])
}

func TestNewTo_DevLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "dev")

	log.Debug("details")

	assert.Contains(t, buf.String(), "msg=details")
}

func TestErr_Nil(t *testing.T) {
	a := Err(nil)
	assert.Equal(t, "error", a.Key)
	assert.Equal(t, "", a.Value.String())
}

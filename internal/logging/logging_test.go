package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToInfoOnUnparseableLevel(t *testing.T) {
	log := New("not-a-level")
	require.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewParsesExplicitLevel(t *testing.T) {
	log := New("debug")
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewFormatsAsJSON(t *testing.T) {
	log := New("info")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
}

func TestComponentTagsEntryWithName(t *testing.T) {
	log := New("info")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	Component(log, "poller").Info("tick")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "poller", entry["component"])
}

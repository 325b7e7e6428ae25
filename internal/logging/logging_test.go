package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(Config{Level: "info", Format: "text"}, &buf)
	log.Info(context.Background(), "catalog imported", Int("sources", 3))

	out := buf.String()
	assert.Contains(t, out, "catalog imported")
	assert.Contains(t, out, "sources=3")
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(Config{Level: "debug", Format: "json"}, &buf)
	log.Debug(context.Background(), "resolved defaults", String("band", "L-band"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"resolved defaults"`)
	assert.Contains(t, out, `"band":"L-band"`)
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(Config{Level: "warn"}, &buf)
	log.Info(context.Background(), "should be dropped")
	log.Warn(context.Background(), "should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should appear")
}

func TestWith_AnnotatesAllLines(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(Config{}, &buf).With(String("session", "obs.yaml"))
	log.Info(context.Background(), "first")
	log.Info(context.Background(), "second")

	out := buf.String()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("session=obs.yaml")), out)
}

func TestNoop_DropsEverything(t *testing.T) {
	log := Noop()
	log.Info(context.Background(), "nothing")
	log.Error(context.Background(), "nothing", Err(assert.AnError))

	assert.NotNil(t, log.With(String("k", "v")))
}

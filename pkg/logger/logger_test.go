package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"), "nivel desconocido cae a info")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{zl: zerolog.New(&buf)}
	zl := l.Component("ledger")
	zl.Info().Msg("hola")
	assert.Contains(t, buf.String(), `"component":"ledger"`)
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.Equal(t, zerolog.Disabled, l.Zerolog().GetLevel())
}

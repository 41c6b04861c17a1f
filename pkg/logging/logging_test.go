package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := CommonLogger(NewConfig(`tests`).WithOutput(buf).WithLevel(slog.LevelInfo))
	require.NoError(t, err)

	l.Info("hello", slog.String(KeyGuildID, "g1"))
	l.Debug("not logged")

	got := make(map[string]any)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "hello", got["msg"])
	require.Equal(t, "tests", got[KeyAppName])
	require.Equal(t, "g1", got[KeyGuildID])
}

func TestCommonLogger_NoName(t *testing.T) {
	_, err := CommonLogger(NewConfig(""))
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

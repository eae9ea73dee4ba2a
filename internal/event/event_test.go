package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "ascii", in: []byte("ready"), want: "ready"},
		{name: "multibyte", in: []byte("héllo ✓"), want: "héllo ✓"},
		{name: "empty", in: []byte{}, want: ""},
		{name: "invalid byte", in: []byte{'a', 0xff, 'b'}, want: "a�b"},
		{name: "truncated sequence", in: []byte{'x', 0xe2, 0x9c}, want: "x��"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Decode(tt.in))
		})
	}
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "stdout", KindStdout.String())
	require.Equal(t, "stderr", KindStderr.String())
	require.Equal(t, "error", KindError.String())
	require.Equal(t, "terminated", KindTerminated.String())
	require.Equal(t, "kind(9)", Kind(9).String())
}

func TestConstructors(t *testing.T) {
	ev := Stdout([]byte("a"))
	require.Equal(t, KindStdout, ev.Kind)
	require.Equal(t, []byte("a"), ev.Line)

	ev = Stderr([]byte("b"))
	require.Equal(t, KindStderr, ev.Kind)

	waitErr := errors.New("signal: killed")
	ev = Terminated(-1, waitErr)
	require.Equal(t, KindTerminated, ev.Kind)
	require.Equal(t, -1, ev.Code)
	require.ErrorIs(t, ev.Err, waitErr)
}

func TestEmitterFunc(t *testing.T) {
	var gotName, gotPayload string

	e := EmitterFunc(func(name, payload string) error {
		gotName, gotPayload = name, payload

		return nil
	})

	require.NoError(t, e.Emit(StdoutEvent, "ready"))
	require.Equal(t, "sidecar-stdout", gotName)
	require.Equal(t, "ready", gotPayload)
	require.NoError(t, Discard.Emit(StderrEvent, "ignored"))
}

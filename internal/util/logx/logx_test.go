package logx

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingKeepsLastLines(t *testing.T) {
	SetLevel(Debug)
	defer SetLevel(Info)
	for i := 0; i < maxLines+20; i++ {
		Debugf("line %d", i)
	}
	lines := Lines()
	require.Len(t, lines, maxLines)
	require.True(t, strings.HasSuffix(lines[len(lines)-1], fmt.Sprintf("line %d", maxLines+19)))
	require.Contains(t, lines[len(lines)-1], "DEBUG")
}

func TestLevelFiltersLines(t *testing.T) {
	SetLevel(Warn)
	defer SetLevel(Info)
	Infof("hidden-info-marker")
	Warnf("shown-warn-marker")
	dump := Dump()
	require.NotContains(t, dump, "hidden-info-marker")
	require.Contains(t, dump, "shown-warn-marker")
}

func TestEnvFileSink(t *testing.T) {
	path := t.TempDir() + "/app.log"
	t.Setenv("LOGMUX_LOG_FILE", path)
	t.Setenv("LOGMUX_LOG_LEVEL", "info")
	SetLevelFromEnv()
	defer func() {
		_ = Close()
		t.Setenv("LOGMUX_LOG_FILE", "")
		SetLevelFromEnv()
	}()
	Errorf("to-file-marker")
	require.NoError(t, Close())
	b, err := readFile(path)
	require.NoError(t, err)
	require.Contains(t, b, "to-file-marker")
}

func readFile(p string) (string, error) {
	b, err := os.ReadFile(p)
	return string(b), err
}

package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSession writes lines as a session file under dir/project/ and returns
// its path.
func writeSession(t *testing.T, project, name string, lines ...string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func mustRecord(t *testing.T, line string) RawRecord {
	t.Helper()
	rec, err := DecodeRecord([]byte(line), 1)
	require.NoError(t, err)
	return rec
}

func testNormalizer() *Normalizer {
	n := NewNormalizer(nil, "")
	n.NewID = func() string { return "generated" }
	return n
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

package open

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{"vim", []string{"vim", "+12", "/s.jsonl"}},
		{"/usr/bin/nvim", []string{"/usr/bin/nvim", "+12", "/s.jsonl"}},
		{"code", []string{"code", "--goto", "/s.jsonl:12"}},
		{"less", []string{"less", "+12", "/s.jsonl"}},
		{"nano", []string{"nano", "/s.jsonl"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, editorCommand(tt.editor, "/s.jsonl", 12).Args, tt.editor)
	}
}

func TestOpenFile_Missing(t *testing.T) {
	err := OpenFile(filepath.Join(t.TempDir(), "nope.jsonl"), 1)
	assert.ErrorContains(t, err, "file not found")
}

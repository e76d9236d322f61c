package parse

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords_SkipsBlankAndMalformedLines(t *testing.T) {
	path := writeSession(t, "proj", "s1.jsonl",
		`{"type":"user","uuid":"a"}`,
		``,
		`   `,
		`{not json`,
		`[1,2,3]`,
		`null`,
		`{"type":"assistant","uuid":"b"}`,
	)

	stream, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, stream.Records, 2)
	assert.Equal(t, "a", stream.Records[0].String("uuid"))
	assert.Equal(t, 1, stream.Records[0].Line)
	assert.Equal(t, 7, stream.Records[1].Line)

	require.Len(t, stream.Skipped, 3)
	assert.Equal(t, 4, stream.Skipped[0].Line)
	assert.Equal(t, 5, stream.Skipped[1].Line)
	assert.Equal(t, 6, stream.Skipped[2].Line)
	assert.False(t, stream.ModTime.IsZero())
}

func TestReadRecords_EmptyFile(t *testing.T) {
	path := writeSession(t, "proj", "empty.jsonl", ``, `garbage`)

	_, err := ReadRecords(path)
	var empty *EmptyFileError
	require.True(t, errors.As(err, &empty), "got %v", err)
	assert.Equal(t, 1, empty.Skipped)
}

func TestReadRecords_MissingFile(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "nope.jsonl"))
	var missing *MissingFileError
	require.True(t, errors.As(err, &missing), "got %v", err)
}

func TestReadRecords_Directory(t *testing.T) {
	_, err := ReadRecords(t.TempDir())
	var missing *MissingFileError
	require.True(t, errors.As(err, &missing), "got %v", err)
}

func TestReadRecords_NoTrailingNewline(t *testing.T) {
	path := writeSession(t, "proj", "s.jsonl", `{"type":"user"}`)
	// writeSession appends a newline; rewrite without one
	require.NoError(t, writeFile(path, `{"type":"user"}`+"\n"+`{"type":"assistant"}`))

	stream, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Len(t, stream.Records, 2)
}

func TestRawRecord_Truthy(t *testing.T) {
	rec := mustRecord(t, `{"a":true,"b":false,"c":1,"d":0,"e":"x","f":"","g":null,"h":[],"i":{"k":1}}`)
	assert.True(t, rec.Truthy("a"))
	assert.False(t, rec.Truthy("b"))
	assert.True(t, rec.Truthy("c"))
	assert.False(t, rec.Truthy("d"))
	assert.True(t, rec.Truthy("e"))
	assert.False(t, rec.Truthy("f"))
	assert.False(t, rec.Truthy("g"))
	assert.False(t, rec.Truthy("h"))
	assert.True(t, rec.Truthy("i"))
	assert.False(t, rec.Truthy("missing"))
}

func TestRawRecord_StringIgnoresOtherTypes(t *testing.T) {
	rec := mustRecord(t, `{"cwd":42,"gitBranch":"main"}`)
	assert.Equal(t, "", rec.String("cwd"))
	assert.Equal(t, "main", rec.String("gitBranch"))
}

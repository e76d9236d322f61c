package parse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// RecordStream is the decoded content of one session file.
type RecordStream struct {
	Path    string
	ModTime time.Time
	Size    int64
	Records []RawRecord
	Skipped []*DecodeError
}

// ReadRecords decodes every line of path as an independent JSON object.
// Blank lines are ignored and undecodable lines are collected in Skipped.
// A file with no decodable record yields *EmptyFileError; a missing or
// unreadable one yields *MissingFileError.
func ReadRecords(path string) (*RecordStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MissingFileError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &MissingFileError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &MissingFileError{Path: path, Err: errors.New("is a directory")}
	}

	stream := &RecordStream{
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}

	// no line length limit: inline tool output can run to many megabytes
	r := bufio.NewReaderSize(f, 256*1024)
	lineNum := 0
	for {
		line, readErr := r.ReadBytes('\n')
		if len(line) > 0 {
			lineNum++
			line = bytes.TrimSpace(line)
			if len(line) > 0 {
				rec, err := DecodeRecord(line, lineNum)
				if err != nil {
					stream.Skipped = append(stream.Skipped, &DecodeError{Path: path, Line: lineNum, Err: err})
				} else {
					stream.Records = append(stream.Records, rec)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, &MissingFileError{Path: path, Err: fmt.Errorf("read line %d: %w", lineNum+1, readErr)}
		}
	}

	if len(stream.Records) == 0 {
		return nil, &EmptyFileError{Path: path, Skipped: len(stream.Skipped)}
	}
	return stream, nil
}

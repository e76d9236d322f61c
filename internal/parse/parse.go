package parse

import (
	"log"
	"time"
)

// Parser runs the whole pipeline for one file: read, extract metadata,
// normalize, repair timestamps. A Parser holds no per-file state and may be
// shared between goroutines.
type Parser struct {
	Normalizer *Normalizer
	// Log receives record-level warnings. Nil means the standard logger.
	Log *log.Logger
}

// NewParser returns a Parser. A nil normalizer means built-in prices and
// the default model.
func NewParser(n *Normalizer, logger *log.Logger) *Parser {
	if n == nil {
		n = NewNormalizer(nil, "")
	}
	return &Parser{Normalizer: n, Log: logger}
}

// ParseFile parses one session file. Record-level problems are logged and
// kept in Session.Warnings; only *MissingFileError and *EmptyFileError are
// returned.
func (p *Parser) ParseFile(path string) (*Session, error) {
	stream, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	return p.ParseStream(stream), nil
}

// ParseStream runs the pipeline on an already decoded stream.
func (p *Parser) ParseStream(stream *RecordStream) *Session {
	s := &Session{
		Meta:    ExtractMetadata(stream.Path, stream.Records),
		ModTime: stream.ModTime,
		Size:    stream.Size,
	}
	for _, w := range stream.Skipped {
		p.warn(w)
	}

	messages := make([]ParsedMessage, 0, len(stream.Records))
	for _, rec := range stream.Records {
		msg, warnings, ok := p.Normalizer.Normalize(rec, &s.Meta)
		for _, w := range warnings {
			p.warn(w)
		}
		s.Warnings = append(s.Warnings, warnings...)
		if ok {
			messages = append(messages, msg)
		}
	}

	decodeWarnings := make([]error, len(stream.Skipped))
	for i, w := range stream.Skipped {
		decodeWarnings[i] = w
	}
	s.Warnings = append(decodeWarnings, s.Warnings...)

	s.Messages = RepairTimestamps(messages, stream.ModTime)
	s.Meta.MessageCount = len(s.Messages)
	s.Meta.StartedAt, s.Meta.EndedAt = timeRange(s.Messages)
	return s
}

func (p *Parser) warn(err error) {
	if p.Log != nil {
		p.Log.Printf("WARN: %v", err)
		return
	}
	log.Printf("WARN: %v", err)
}

func timeRange(msgs []ParsedMessage) (first, last time.Time) {
	for _, m := range msgs {
		if !m.HasTimestamp() {
			continue
		}
		if first.IsZero() || m.Timestamp.Before(first) {
			first = m.Timestamp
		}
		if last.IsZero() || m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	return first, last
}

// ParseMetadataOnly reads metadata without normalizing messages. The
// message count is the number of user and assistant records and the time
// range comes from raw timestamps.
func ParseMetadataOnly(path string) (ConversationMetadata, error) {
	stream, err := ReadRecords(path)
	if err != nil {
		return ConversationMetadata{}, err
	}
	meta := ExtractMetadata(path, stream.Records)
	for _, rec := range stream.Records {
		switch rec.String("type") {
		case "user", "assistant":
			meta.MessageCount++
		}
		ts := parseTimestamp(rec.String("timestamp"))
		if ts.IsZero() {
			continue
		}
		if meta.StartedAt.IsZero() || ts.Before(meta.StartedAt) {
			meta.StartedAt = ts
		}
		if meta.EndedAt.IsZero() || ts.After(meta.EndedAt) {
			meta.EndedAt = ts
		}
	}
	return meta, nil
}

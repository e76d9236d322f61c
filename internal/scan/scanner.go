package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind tells root sessions apart from subagent sessions.
type Kind string

const (
	KindRoot     Kind = "root"
	KindSubagent Kind = "subagent"
)

const (
	subagentDir    = "subagents"
	agentPrefix    = "agent-"
	sessionsIndex  = "sessions-index"
	sessionFileExt = ".jsonl"
)

type FileInfo struct {
	Path string
	Kind Kind
	// Project is the top-level directory under the projects root.
	Project string
	Mtime   int64
	Size    int64
}

// Scan walks root and returns every session file, root sessions and
// subagents alike. A missing root yields no files.
//
// Layout:
//
//	<root>/<project>/<session>.jsonl                      root session
//	<root>/<project>/<session>/subagents/agent-<id>.jsonl subagent
//	<root>/<project>/agent-<id>.jsonl                     subagent (older layout)
func Scan(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			return nil
		}
		if fi, ok := fileInfo(root, path, info); ok {
			files = append(files, fi)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return files, err
}

// Stat describes a single path under root. ok is false when the path is
// not a session file.
func Stat(root, path string) (fi FileInfo, ok bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, false, err
	}
	if info.IsDir() {
		return FileInfo{}, false, nil
	}
	fi, ok = fileInfo(root, path, info)
	return fi, ok, nil
}

// IsSessionFile reports whether path names a session file. It only
// looks at the name.
func IsSessionFile(path string) bool {
	return filepath.Ext(path) == sessionFileExt && !strings.Contains(filepath.Base(path), sessionsIndex)
}

func fileInfo(root, path string, info os.FileInfo) (FileInfo, bool) {
	if !IsSessionFile(path) {
		return FileInfo{}, false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return FileInfo{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == ".." {
		return FileInfo{}, false // files directly under root belong to no project
	}
	return FileInfo{
		Path:    path,
		Kind:    kindOf(path),
		Project: parts[0],
		Mtime:   info.ModTime().Unix(),
		Size:    info.Size(),
	}, true
}

func kindOf(path string) Kind {
	if filepath.Base(filepath.Dir(path)) == subagentDir || strings.HasPrefix(filepath.Base(path), agentPrefix) {
		return KindSubagent
	}
	return KindRoot
}

// SessionID is the file stem of a session file.
func SessionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// SubagentFiles returns the subagent files stored next to the root session
// at sessionPath, sorted. Files of the older flat layout are not included;
// they can only be matched to a parent after parsing.
func SubagentFiles(sessionPath string) []string {
	dir := filepath.Join(filepath.Dir(sessionPath), SessionID(sessionPath), subagentDir)
	matches, err := filepath.Glob(filepath.Join(dir, "*"+sessionFileExt))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// Roots filters files down to root sessions.
func Roots(files []FileInfo) []FileInfo {
	var out []FileInfo
	for _, f := range files {
		if f.Kind == KindRoot {
			out = append(out, f)
		}
	}
	return out
}

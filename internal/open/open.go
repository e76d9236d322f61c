package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/cc-session-search/internal/index"
)

// OpenSession opens the session file in $EDITOR at the source line of
// message msgIdx, or at the top when msgIdx < 0.
func OpenSession(db *index.DB, sessionID string, msgIdx int) error {
	session, err := db.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	lineNum := 1
	if msgIdx >= 0 {
		msgs, err := db.GetMessages(sessionID)
		if err != nil {
			return fmt.Errorf("get messages: %w", err)
		}
		if msgIdx < len(msgs) && msgs[msgIdx].LineNumber > 0 {
			lineNum = msgs[msgIdx].LineNumber
		}
	}
	return OpenFile(session.FilePath, lineNum)
}

// OpenFile opens path in $EDITOR (less when unset) at lineNum.
func OpenFile(path string, lineNum int) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, path, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}

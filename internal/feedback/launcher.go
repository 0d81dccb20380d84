// Package feedback launches the out-of-process interactive feedback UI and
// collects its result through a temporary-file handoff.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultCommand is the feedback UI executable looked up on PATH when the
// override variable is not set.
const DefaultCommand = "feedback-ui"

// EnvCommand overrides the feedback UI command.
const EnvCommand = "TASKBRIDGE_FEEDBACK_UI"

// Result is what the feedback UI writes to the handoff file.
type Result struct {
	CommandLogs         string `json:"command_logs"`
	InteractiveFeedback string `json:"interactive_feedback"`
}

// Launcher runs the feedback UI subprocess.
type Launcher struct {
	command string
}

// NewLauncher resolves the feedback UI command from the environment.
func NewLauncher() *Launcher {
	cmd := os.Getenv(EnvCommand)
	if cmd == "" {
		cmd = DefaultCommand
	}
	return &Launcher{command: cmd}
}

// Launch runs the UI with the project directory and summary, then reads the
// result back from the temporary output file. The file is removed in every
// outcome. Only the first line of each input is passed through.
func (l *Launcher) Launch(ctx context.Context, projectDirectory, summary string) (*Result, error) {
	outputFile := filepath.Join(os.TempDir(), "feedback-"+uuid.NewString()+".json")
	defer os.Remove(outputFile)

	cmd := exec.CommandContext(ctx, l.command,
		"--project-directory", firstLine(projectDirectory),
		"--prompt", firstLine(summary),
		"--output-file", outputFile,
	)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to launch feedback UI: %w", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback result: %w", err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid feedback result: %w", err)
	}
	return &result, nil
}

// firstLine trims the input to its first line.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

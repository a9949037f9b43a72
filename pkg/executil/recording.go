package executil

import (
	"context"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// Line returns the command and its arguments joined by spaces.
func (r RecordedCommand) Line() string {
	return strings.Join(append([]string{r.Cmd}, r.Args...), " ")
}

// Response is a canned reply for a RecordingExecutor.
type Response struct {
	Out []byte
	Err error
}

// RecordingExecutor captures commands for testing.
//
// Responses are looked up by the longest matching prefix of the command line
// ("git status", then "git"). Unmatched commands return empty output.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	Responses map[string]Response
}

// Run records the command and returns the configured response.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record("", cmd, args...)
}

// RunDir records the command with directory and returns the configured response.
func (e *RecordingExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	return e.record(dir, cmd, args...)
}

// On registers a response for commands whose line starts with prefix.
func (e *RecordingExecutor) On(prefix string, out []byte, err error) *RecordingExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Responses == nil {
		e.Responses = make(map[string]Response)
	}
	e.Responses[prefix] = Response{Out: out, Err: err}
	return e
}

func (e *RecordingExecutor) record(dir, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := RecordedCommand{Dir: dir, Cmd: cmd, Args: args}
	e.Commands = append(e.Commands, rec)

	line := rec.Line()
	best := -1
	var resp Response
	for prefix, r := range e.Responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > best {
			best = len(prefix)
			resp = r
		}
	}

	return resp.Out, resp.Err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}

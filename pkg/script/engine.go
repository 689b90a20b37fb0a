// Package script provides the Lisp scripting engine for the viewer.
// It wraps zygomys in a sandboxed environment and exposes the viewer's
// operations as builtins, so repetitive inspection workflows can be
// automated from the script panel.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EvalTimeout is the hard limit for a single script run.
const EvalTimeout = 5 * time.Second

// EvalError represents a non-fatal error encountered during a run, such
// as a parse error or a failed viewer command.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine runs viewer scripts against a Session. It is safe for
// concurrent use; each call to Run creates a fresh sandboxed
// environment.
type Engine struct {
	session Session

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an engine bound to the given session.
func NewEngine(session Session) *Engine {
	return &Engine{session: session}
}

type runResult struct {
	errors []EvalError
	err    error
}

// Run executes a script in a fresh sandbox.
//
// Return semantics:
//   - On success: nil errors + nil error
//   - On parse/eval failure: eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): nil + error
func (e *Engine) Run(source string) ([]EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan runResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- runResult{err: fmt.Errorf("panic during script run: %v", r)}
			}
		}()
		errs, err := e.run(source)
		ch <- runResult{errors: errs, err: err}
	}()

	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, fmt.Errorf("script run superseded by newer request")
		}
		return res.errors, res.err

	case <-timer.C:
		return nil, fmt.Errorf("script run timed out after %s", EvalTimeout)
	}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an EvalError,
// extracting line number information where the message carries it.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}

// preprocessSource adapts viewer script source for zygomys:
//
//  1. ; line comments become // comments (zygomys uses the latter).
//  2. Kebab-case identifiers become underscore form (load-file ->
//     load_file); zygomys reads a bare hyphen as subtraction.
//
// Both transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

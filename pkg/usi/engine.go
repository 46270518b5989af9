package usi

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/seekerror/logw"
)

const (
	handshakeTimeout = 5 * time.Second
	readyTimeout     = 5 * time.Second
	quitGrace        = 10 * time.Second
)

// SetOption is one configured USI "setoption name K value V" to send
// during init, in the order given.
type SetOption struct {
	Name  string
	Value string
}

// Config describes how to spawn and identify one engine.
type Config struct {
	// Name, if non-empty, is used verbatim as the engine's display name
	// instead of the name discovered from "id name" (or, failing that,
	// the command string).
	Name string
	Dir  string
	Argv []string

	Options []SetOption
}

// Engine owns one child process for the lifetime of a worker: its stdin
// writer, stdout line reader, read buffer and identity.
type Engine struct {
	cfg Config

	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *Reader

	mu            sync.Mutex
	discoveredName string
}

// Spawn starts the child process with stdin/stdout piped, but does not
// yet perform the USI handshake (see Init).
func Spawn(ctx context.Context, cfg Config) (*Engine, error) {
	if len(cfg.Argv) == 0 {
		return nil, fmt.Errorf("usi: engine config has no command")
	}

	cmd := exec.CommandContext(ctx, cfg.Argv[0], cfg.Argv[1:]...)
	cmd.Dir = cfg.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("usi: stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("usi: stdout pipe: %w", err)
	}
	stdoutFile, ok := stdoutPipe.(*os.File)
	if !ok {
		return nil, fmt.Errorf("usi: stdout pipe is not an *os.File on this platform")
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("usi: start %v: %w", cfg.Argv, err)
	}

	e := &Engine{
		cfg:   cfg,
		cmd:   cmd,
		stdin: stdin,
		out:   NewReader(stdoutFile),
	}
	return e, nil
}

// Init performs the USI handshake: writes "usi", waits up to 5s for
// "usiok", capturing "id name" (and discarding "id author") along the way,
// then sends the configured setoption lines.
func (e *Engine) Init(ctx context.Context) error {
	if err := e.writeLine(ctx, "usi"); err != nil {
		return err
	}

	deadline := time.Now().Add(handshakeTimeout)
	outcome, err := e.out.ReadLines(true, deadline, func(line string) bool {
		logw.Debugf(ctx, "%v << %v", e.tag(), line)

		switch {
		case line == "usiok":
			return true
		case strings.HasPrefix(line, "id name "):
			if e.cfg.Name == "" {
				e.mu.Lock()
				e.discoveredName = strings.TrimPrefix(line, "id name ")
				e.mu.Unlock()
			}
		case strings.HasPrefix(line, "id author "):
			// discarded, per protocol.
		default:
			logw.Debugf(ctx, "%v unrecognized handshake line: %v", e.tag(), line)
		}
		return false
	})
	if err != nil {
		return err
	}
	switch outcome {
	case OutcomeTimeout:
		return fmt.Errorf("usi: %v: handshake timed out waiting for usiok", e.tag())
	case OutcomeDisconnected:
		return fmt.Errorf("usi: %v: disconnected during handshake", e.tag())
	}

	for _, opt := range e.cfg.Options {
		if err := e.writeLine(ctx, fmt.Sprintf("setoption name %v value %v", opt.Name, opt.Value)); err != nil {
			return err
		}
	}
	return nil
}

// IsReady writes "isready" and waits up to 5s for "readyok".
func (e *Engine) IsReady(ctx context.Context) error {
	if err := e.writeLine(ctx, "isready"); err != nil {
		return err
	}

	deadline := time.Now().Add(readyTimeout)
	outcome, err := e.out.ReadLines(true, deadline, func(line string) bool {
		logw.Debugf(ctx, "%v << %v", e.tag(), line)
		return line == "readyok"
	})
	if err != nil {
		return err
	}
	switch outcome {
	case OutcomeTimeout:
		return fmt.Errorf("usi: %v: isready timed out waiting for readyok", e.tag())
	case OutcomeDisconnected:
		return fmt.Errorf("usi: %v: disconnected waiting for readyok", e.tag())
	}
	return nil
}

// NewGame writes "usinewgame", sent once per game at its start.
func (e *Engine) NewGame(ctx context.Context) error {
	return e.writeLine(ctx, "usinewgame")
}

// Position writes "position <arg>".
func (e *Engine) Position(ctx context.Context, arg string) error {
	return e.writeLine(ctx, "position "+arg)
}

// Go writes "go <args>".
func (e *Engine) Go(ctx context.Context, args string) error {
	line := "go"
	if args != "" {
		line = "go " + args
	}
	return e.writeLine(ctx, line)
}

// BestMove is the engine's reported move plus the last info line seen
// before it.
type BestMove struct {
	Move   string
	Ponder string
	Info   Info
}

// AwaitBestMove reads info/bestmove lines until a "bestmove" arrives or
// the deadline elapses or the child disconnects. Lines that start with
// neither "info" nor "bestmove" are logged and ignored.
func (e *Engine) AwaitBestMove(ctx context.Context, hasDeadline bool, deadline time.Time) (BestMove, Outcome, error) {
	var best BestMove
	var lastInfo Info

	outcome, err := e.out.ReadLines(hasDeadline, deadline, func(line string) bool {
		logw.Debugf(ctx, "%v << %v", e.tag(), line)

		switch {
		case strings.HasPrefix(line, "info "):
			lastInfo = parseInfo(strings.TrimPrefix(line, "info "))
			return false
		case line == "info":
			return false
		case strings.HasPrefix(line, "bestmove"):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				best.Move = fields[1]
			}
			if len(fields) >= 4 && fields[2] == "ponder" {
				best.Ponder = fields[3]
			}
			best.Info = lastInfo
			return true
		default:
			// Neither info nor bestmove: already logged above, ignored.
			return false
		}
	})
	return best, outcome, err
}

// Quit writes "quit", waits up to 10s for the child to exit naturally,
// then forcibly kills it. Shutdown errors are logged, never returned.
func (e *Engine) Quit(ctx context.Context) {
	_ = e.writeLine(ctx, "quit")
	_ = e.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			logw.Debugf(ctx, "%v exited: %v", e.tag(), err)
		}
	case <-time.After(quitGrace):
		logw.Infof(ctx, "%v did not exit within %v, killing", e.tag(), quitGrace)
		if e.cmd.Process != nil {
			if err := e.cmd.Process.Kill(); err != nil {
				logw.Debugf(ctx, "%v kill failed: %v", e.tag(), err)
			}
		}
		<-done
	}
}

// Name returns the explicit name, the discovered "id name", or the
// command string, in that preference order.
func (e *Engine) Name() string {
	if e.cfg.Name != "" {
		return e.cfg.Name
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.discoveredName != "" {
		return e.discoveredName
	}
	return strings.Join(e.cfg.Argv, " ")
}

func (e *Engine) tag() string {
	return fmt.Sprintf("[%v]", e.Name())
}

func (e *Engine) writeLine(ctx context.Context, line string) error {
	logw.Debugf(ctx, "%v >> %v", e.tag(), line)
	_, err := io.WriteString(e.stdin, line+"\n")
	if err != nil {
		return fmt.Errorf("usi: %v: write %q: %w", e.tag(), line, err)
	}
	return nil
}

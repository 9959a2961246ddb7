// ============================================================================
// lox - Lox Front End
// ============================================================================
//
// Package:     session
// Description: File and line drivers around the front end engine
// Author:      Mike Stoffels with Claude
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/foundation/lox/diag"
	"github.com/msto63/lox/internal/store"
)

// LineReader yields one line of input per call. io.EOF ends the session.
// *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// Config configures a session
type Config struct {
	Engine lox.Options
	Store  store.RunStore
	Logger *mdwlog.Logger

	// Out receives printed trees, Err receives diagnostics
	Out io.Writer
	Err io.Writer

	Prompt string
}

// Session runs source through the engine, prints results and records them.
// A line-oriented session keeps running after any error; the error flag is
// cleared before every line.
type Session struct {
	id       string
	engine   *lox.Engine
	store    store.RunStore
	logger   *mdwlog.Logger
	out      io.Writer
	errOut   io.Writer
	prompt   string
	hadError bool
}

// New creates a session with a fresh id
func New(cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "> "
	}

	id := uuid.New().String()
	logger := cfg.Logger.WithSessionID(id).WithComponent("lox-session")

	engineOpts := cfg.Engine
	engineOpts.Logger = logger
	engineOpts.Reporter = diag.Multi(engineOpts.Reporter, diag.NewWriterReporter(cfg.Err))

	engine, err := lox.New(engineOpts)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:     id,
		engine: engine,
		store:  cfg.Store,
		logger: logger,
		out:    cfg.Out,
		errOut: cfg.Err,
		prompt: cfg.Prompt,
	}, nil
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Engine returns the engine used by the session
func (s *Session) Engine() *lox.Engine {
	return s.engine
}

// HadError reports whether the last run failed
func (s *Session) HadError() bool {
	return s.hadError
}

// ResetError clears the error flag
func (s *Session) ResetError() {
	s.hadError = false
}

// RunFile processes a whole file and returns the process exit status
func (s *Session) RunFile(ctx context.Context, path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		wrapped := mdwerror.Wrap(err, "failed to read source").
			WithCode(mdwerror.CodeIOError).
			WithOperation("session.RunFile").
			WithDetail("path", path)
		fmt.Fprintf(s.errOut, "Could not read file %q: %v\n", path, err)
		s.logger.LogError(wrapped)
		return mdwerror.ExitIOErr
	}

	res := s.run(ctx, store.OriginFile, path, source)
	defer res.Release()
	return res.ExitCode()
}

// Eval processes one line. The error flag is reset first so a failing
// line never affects the next one.
func (s *Session) Eval(ctx context.Context, line string) *lox.Result {
	s.ResetError()
	return s.run(ctx, store.OriginREPL, "", []byte(line))
}

// RunPrompt reads lines until EOF and evaluates each non-blank one. It
// returns nil at EOF or when ctx is done.
func (s *Session) RunPrompt(ctx context.Context, r LineReader) error {
	s.logger.Debug("prompt session started")
	defer s.logger.Debug("prompt session ended")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := r.Prompt(s.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return mdwerror.Wrap(err, "failed to read line").
				WithCode(mdwerror.CodeIOError).
				WithOperation("session.RunPrompt")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.Eval(ctx, line).Release()
	}
}

func (s *Session) run(ctx context.Context, origin store.Origin, name string, source []byte) *lox.Result {
	res := s.engine.Process(source)
	s.hadError = res.HadError()

	if res.Tree != nil {
		fmt.Fprintln(s.out, res.String())
	}
	if res.Err != nil && !res.LexError && !res.ParseError {
		// allocation failures produce no diagnostic line of their own
		fmt.Fprintf(s.errOut, "Error: %v\n", res.Err)
	}

	if s.store != nil {
		run := store.NewRun(origin, name, source, res)
		run.SessionID = s.id
		if err := s.store.Record(ctx, run); err != nil {
			s.logger.WarnWithErr("failed to record run", err)
		}
	}
	return res
}

// ReadSource reads a named input; "-" reads all of stdin
func ReadSource(name string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to read source").
			WithCode(mdwerror.CodeIOError).
			WithOperation("session.ReadSource").
			WithDetail("name", name)
	}
	return data, nil
}

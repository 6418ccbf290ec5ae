// Package extensions runs automation scripts against an editor session.
package extensions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wudi/pdfoverlay/editor"
	"github.com/wudi/pdfoverlay/extensions/dom"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/scripting"
)

// Script is one named gesture script.
type Script struct {
	Name   string
	Source string
}

// ReadScript loads a script from disk, naming it after the file.
func ReadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("extensions: read script: %w", err)
	}
	return Script{Name: filepath.Base(path), Source: string(data)}, nil
}

// ScriptRunner replays scripts against a session in order. Each script gets
// its own timeout; the first failure stops the run.
type ScriptRunner struct {
	engine  scripting.Engine
	timeout time.Duration
	log     observability.Logger
}

func NewScriptRunner(engine scripting.Engine, timeout time.Duration, log observability.Logger) *ScriptRunner {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &ScriptRunner{engine: engine, timeout: timeout, log: log}
}

func (r *ScriptRunner) Run(ctx context.Context, s *editor.Session, scripts ...Script) error {
	if r.engine == nil || len(scripts) == 0 {
		return nil
	}
	if err := r.engine.RegisterDOM(dom.New(s, r.log)); err != nil {
		return fmt.Errorf("extensions: register session: %w", err)
	}
	for _, sc := range scripts {
		if err := r.runOne(ctx, sc); err != nil {
			return fmt.Errorf("extensions: script %s: %w", sc.Name, err)
		}
		r.log.Debug("script finished",
			observability.String("script", sc.Name),
			observability.Int("widgets", len(s.Widgets())))
	}
	return nil
}

func (r *ScriptRunner) runOne(ctx context.Context, sc Script) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	_, err := r.engine.Execute(ctx, sc.Source)
	return err
}

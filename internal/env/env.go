package env

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	screenIDFile       = "screen.cfg"
	screenIDSampleFile = "screen.cfg.sample"
	reloadMarkerFile   = ".reload"

	missingPosterFile    = "missing_poster.png"
	missingPresenterFile = "missing_presenter.png"
	missingQRCodeFile    = "missing_qrcode.png"

	defaultScreenID = 1
)

// Paths lists the filesystem locations shared by the kiosk processes.
type Paths struct {
	Base         string
	Graphics     string
	ReloadMarker string
	ScreenID     string
}

// Env is the per-process context handed to every component that logs or
// touches the shared files. It replaces package-level logger and path globals.
type Env struct {
	Logger *slog.Logger
	Paths  Paths

	closer io.Closer
}

// Options configure New.
type Options struct {
	Paths   Paths
	LogPath string // empty logs to Writer
	Writer  io.Writer
	Level   slog.Level
}

// New builds an Env; the caller must Close it at shutdown.
func New(opts Options) (*Env, error) {
	paths := opts.Paths
	if paths.Base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve base dir: %w", err)
		}
		paths.Base = cwd
	}
	if paths.Graphics == "" {
		paths.Graphics = filepath.Join(paths.Base, "graphics")
	}
	if paths.ReloadMarker == "" {
		paths.ReloadMarker = filepath.Join(paths.Base, reloadMarkerFile)
	}
	if paths.ScreenID == "" {
		paths.ScreenID = filepath.Join(paths.Base, screenIDFile)
	}

	e := &Env{Paths: paths}
	w := opts.Writer
	if opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.closer = f
		w = f
	}
	if w == nil {
		w = os.Stderr
	}
	e.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	return e, nil
}

// Discard returns an Env that drops every log record. Tests use it.
func Discard(base string) *Env {
	e, _ := New(Options{Paths: Paths{Base: base}, Writer: io.Discard})
	return e
}

func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.closer = nil
	return err
}

// MissingPosterPath is the placeholder shown when a poster raster is absent.
func (e *Env) MissingPosterPath() string {
	return filepath.Join(e.Paths.Graphics, missingPosterFile)
}

func (e *Env) MissingPresenterPath() string {
	return filepath.Join(e.Paths.Graphics, missingPresenterFile)
}

func (e *Env) MissingQRCodePath() string {
	return filepath.Join(e.Paths.Graphics, missingQRCodeFile)
}

// ReadScreenID returns the integer stored in the screen identity file. A
// missing file is provisioned from the sample next to it (or from the default
// id when there is no sample) so it can be edited by hand afterwards.
func (e *Env) ReadScreenID() (int, error) {
	path := e.Paths.ScreenID
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := e.provisionScreenID(path); err != nil {
			return 0, err
		}
	}
	e.Logger.Info("reading screen identifier", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read screen id: %w", err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse screen id in %s: %w", path, err)
	}
	e.Logger.Info("local screen identifier", "screen", id)
	return id, nil
}

func (e *Env) provisionScreenID(path string) error {
	sample := filepath.Join(filepath.Dir(path), screenIDSampleFile)
	data, err := os.ReadFile(sample)
	if errors.Is(err, os.ErrNotExist) {
		data = []byte(strconv.Itoa(defaultScreenID) + "\n")
		e.Logger.Warn("no screen id sample, writing default", "path", path, "screen", defaultScreenID)
	} else if err != nil {
		return fmt.Errorf("read screen id sample: %w", err)
	} else {
		e.Logger.Info("copying screen id sample", "from", sample, "to", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("provision screen id: %w", err)
	}
	return nil
}

// ConsumeReloadMarker reports whether the reload marker exists, deleting it.
func (e *Env) ConsumeReloadMarker() bool {
	path := e.Paths.ReloadMarker
	if _, err := os.Stat(path); err != nil {
		return false
	}
	e.Logger.Info("reload marker found", "path", path)
	if err := os.Remove(path); err != nil {
		e.Logger.Warn("could not remove reload marker", "path", path, "err", err)
	}
	return true
}

// TouchReloadMarker creates the reload marker picked up by running displays.
func (e *Env) TouchReloadMarker() error {
	f, err := os.OpenFile(e.Paths.ReloadMarker, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("touch reload marker: %w", err)
	}
	return f.Close()
}

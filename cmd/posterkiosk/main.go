package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/posterkiosk/posterkiosk/internal/config"
	"github.com/posterkiosk/posterkiosk/internal/control"
	"github.com/posterkiosk/posterkiosk/internal/display"
	"github.com/posterkiosk/posterkiosk/internal/env"
	"github.com/posterkiosk/posterkiosk/internal/i18n"
	"github.com/posterkiosk/posterkiosk/internal/program"
)

const defaultLogFile = "posterkiosk.log"

func main() {
	cmd := &cobra.Command{
		Use:          "posterkiosk <workbook.xlsx>",
		Short:        "Poster session kiosk: slideshow, program browser or session directory",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}
	config.RegisterFlags(cmd.Flags())
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, workbook string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if _, err := os.Stat(workbook); err != nil {
		return fmt.Errorf("workbook: %w", err)
	}

	base := cfg.Paths.Base
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return err
		}
	}
	logPath := cfg.Log.Path
	if logPath == "" {
		logPath = filepath.Join(base, defaultLogFile)
	}
	e, err := env.New(env.Options{
		Paths: env.Paths{
			Base:         base,
			Graphics:     cfg.Paths.Graphics,
			ReloadMarker: cfg.Paths.ReloadMarker,
			ScreenID:     cfg.Paths.ScreenID,
		},
		LogPath: logPath,
		Level:   logLevel(cfg.Log.Level),
	})
	if err != nil {
		return err
	}
	defer e.Close()
	log := e.Logger

	loc, err := cfg.Display.Location()
	if err != nil {
		log.Warn("using local timezone", "err", err)
	}
	ref, err := cfg.Display.ReferenceTime(loc)
	if err != nil {
		return err
	}

	opts := display.Options{
		Env:          e,
		Translator:   i18n.NewTranslator(cfg.Display.Language, log),
		Source:       program.WorkbookFile{Path: workbook, Location: loc, Log: log},
		Assets:       assets(cfg, workbook, e),
		Geometry:     geometry(cfg, log),
		Title:        fmt.Sprintf("%s - %s - %s", cfg.Conference.Name, cfg.Conference.Location, cfg.Conference.Dates),
		HeaderHeight: cfg.Display.HeaderHeight,
		Advance:      cfg.Display.Advance(),
		Pause:        cfg.Display.Pause(),
		Fading:       cfg.Display.Fading,
		Now:          time.Now,
		Reference:    referenceClock(ref, log),
	}

	var model tea.Model
	switch cfg.Display.View {
	case config.ViewBrowser:
		model = display.NewBrowser(opts)
	case config.ViewDirectory:
		model = display.NewDirectory(opts)
	default:
		screen, err := e.ReadScreenID()
		if err != nil {
			return fmt.Errorf("screen id: %w", err)
		}
		log.Info("starting slideshow", "screen", screen)
		model = display.NewSlideshow(opts, screen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Control.Addr != "" {
		srv := control.NewServer(e, log)
		go func() {
			if err := control.Run(ctx, cfg.Control.Addr, srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("control server stopped", "err", err)
			}
		}()
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Display.Mode != config.ModeDefault {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	log.Info("starting display", "view", cfg.Display.View, "mode", cfg.Display.Mode, "workbook", workbook)
	if _, err := tea.NewProgram(model, progOpts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func assets(cfg config.Config, workbook string, e *env.Env) *program.Assets {
	root := cfg.Paths.Assets
	if root == "" {
		root = filepath.Dir(workbook)
	}
	return &program.Assets{
		Root:             root,
		MissingPoster:    e.MissingPosterPath(),
		MissingPresenter: e.MissingPresenterPath(),
		MissingQRCode:    e.MissingQRCodePath(),
		Log:              e.Logger,
	}
}

// geometry sizes the poster to the terminal unless a width is configured.
func geometry(cfg config.Config, log *slog.Logger) program.Geometry {
	width := cfg.Display.PosterWidth
	if width <= 0 {
		w, _, err := term.GetSize(os.Stdout.Fd())
		if err != nil || w <= 0 {
			log.Warn("could not read terminal size", "err", err)
			w = 120
		}
		width = w
		if cfg.Display.Mode == config.ModeDefault {
			width = w * 2 / 3
		}
	}
	return program.Geometry{PosterWidth: width, PortraitHeight: cfg.Display.PortraitHeight}
}

// referenceClock runs from the configured display instant when one is set.
func referenceClock(ref *time.Time, log *slog.Logger) func() time.Time {
	if ref == nil {
		return time.Now
	}
	log.Info("display time overridden", "at", ref.Format(config.DateTimeFormat))
	started := time.Now()
	at := *ref
	return func() time.Time { return at.Add(time.Since(started)) }
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

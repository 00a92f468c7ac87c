package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DateFormat is the day-first layout used by the workbook and --display-date.
	DateFormat = "02/01/2006"
	// DateTimeFormat is DateFormat followed by a 24h clock.
	DateTimeFormat = DateFormat + " 15:04"
)

// Display modes.
const (
	ModeDefault    = "default"
	ModeMaximize   = "maximize"
	ModeFullscreen = "fullscreen"
)

// Views served by posterkiosk.
const (
	ViewSlideshow = "slideshow"
	ViewBrowser   = "browser"
	ViewDirectory = "directory"
)

// Config holds application configuration.
type Config struct {
	Conference ConferenceConfig `mapstructure:"conference"`
	Display    DisplayConfig    `mapstructure:"display"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Log        LogConfig        `mapstructure:"log"`
	Control    ControlConfig    `mapstructure:"control"`
	Indico     IndicoConfig     `mapstructure:"indico"`
}

// ConferenceConfig feeds the window header.
type ConferenceConfig struct {
	Name     string `mapstructure:"name"`
	Dates    string `mapstructure:"dates"`
	Location string `mapstructure:"location"`
}

// DisplayConfig holds the geometry and timing of the display views.
// Intervals are seconds.
type DisplayConfig struct {
	View            string  `mapstructure:"view"`
	Mode            string  `mapstructure:"mode"`
	PosterWidth     int     `mapstructure:"poster_width"`
	HeaderHeight    int     `mapstructure:"header_height"`
	PortraitHeight  int     `mapstructure:"portrait_height"`
	AdvanceInterval float64 `mapstructure:"advance_interval"`
	PauseInterval   float64 `mapstructure:"pause_interval"`
	Fading          bool    `mapstructure:"fading"`
	Date            string  `mapstructure:"date"`
	Time            string  `mapstructure:"time"`
	Timezone        string  `mapstructure:"timezone"`
	Language        string  `mapstructure:"language"`
}

// PathsConfig holds filesystem locations. Empty values are derived at startup.
type PathsConfig struct {
	Base         string `mapstructure:"base"`
	Assets       string `mapstructure:"assets"`
	Graphics     string `mapstructure:"graphics"`
	ReloadMarker string `mapstructure:"reload_marker"`
	ScreenID     string `mapstructure:"screen_id"`
	Database     string `mapstructure:"database"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// ControlConfig holds the optional remote-reload endpoint. Empty Addr disables it.
type ControlConfig struct {
	Addr string `mapstructure:"addr"`
}

// IndicoConfig describes the event-management export used by posterctl.
type IndicoConfig struct {
	URL      string            `mapstructure:"url"`
	Sessions map[string]string `mapstructure:"sessions"`
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"conference-name":     "conference.name",
	"conference-dates":    "conference.dates",
	"conference-location": "conference.location",
	"view":                "display.view",
	"mode":                "display.mode",
	"poster-width":        "display.poster_width",
	"header-height":       "display.header_height",
	"portrait-height":     "display.portrait_height",
	"advance-interval":    "display.advance_interval",
	"pause-interval":      "display.pause_interval",
	"fading":              "display.fading",
	"display-date":        "display.date",
	"display-time":        "display.time",
	"timezone":            "display.timezone",
	"language":            "display.language",
	"base-dir":            "paths.base",
	"assets-dir":          "paths.assets",
	"database":            "paths.database",
	"log-path":            "log.path",
	"log-level":           "log.level",
	"control-addr":        "control.addr",
	"indico-url":          "indico.url",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("conference.name", "16th Pisa Meeting on Advanced Detectors")
	v.SetDefault("conference.dates", "May 26-June 1, 2024")
	v.SetDefault("conference.location", "La Biodola, Isola d'Elba")
	v.SetDefault("display.view", ViewSlideshow)
	v.SetDefault("display.mode", ModeFullscreen)
	v.SetDefault("display.poster_width", 0)
	v.SetDefault("display.header_height", 12)
	v.SetDefault("display.portrait_height", 6)
	v.SetDefault("display.advance_interval", 30.0)
	v.SetDefault("display.pause_interval", 300.0)
	v.SetDefault("display.fading", false)
	v.SetDefault("display.date", "")
	v.SetDefault("display.time", "12:00")
	v.SetDefault("display.timezone", "Europe/Rome")
	v.SetDefault("display.language", "en")
	v.SetDefault("paths.base", "")
	v.SetDefault("paths.assets", "")
	v.SetDefault("paths.graphics", "")
	v.SetDefault("paths.reload_marker", "")
	v.SetDefault("paths.screen_id", "")
	v.SetDefault("paths.database", "")
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("control.addr", "")
	v.SetDefault("indico.url", "")
}

// RegisterFlags declares the command-line switches understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("conference-name", "", "the conference name")
	fs.String("conference-dates", "", "the conference dates")
	fs.String("conference-location", "", "the conference location")
	fs.String("view", "", "display view (slideshow, browser, directory)")
	fs.String("mode", "", "display geometry (default, maximize, fullscreen)")
	fs.Int("poster-width", 0, "width of the poster display in cells (taken from the terminal by default)")
	fs.Int("header-height", 0, "height of the poster header in rows")
	fs.Int("portrait-height", 0, "height of the presenter portraits and QR codes in rows")
	fs.Float64("advance-interval", 0, "advance time interval [s]")
	fs.Float64("pause-interval", 0, "pause time interval [s]")
	fs.Bool("fading", false, "enable the fading effect between posters")
	fs.String("display-date", "", "optional date to display, e.g., 23/05/2022")
	fs.String("display-time", "", "optional time to display, e.g., 12:00")
	fs.String("timezone", "", "timezone of the workbook timestamps")
	fs.String("language", "", "status message language (en, it)")
	fs.String("base-dir", "", "directory holding screen.cfg, graphics/ and the reload marker")
	fs.String("assets-dir", "", "root of the poster asset folders (defaults to the workbook directory)")
	fs.String("database", "", "path of the attachment ledger database")
	fs.String("log-path", "", "log file path")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("control-addr", "", "listen address of the remote reload endpoint")
	fs.String("indico-url", "", "event export url, e.g., https://agenda.infn.it/export/event/37033.json")
}

// Load reads configuration from defaults, the config file, the environment
// (prefix POSTERKIOSK_, .env honoured) and finally the explicitly set flags.
func Load(fs *pflag.FlagSet) (Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	cfgPath := os.Getenv("POSTERKIOSK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "posterkiosk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("POSTERKIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Display.Mode {
	case ModeDefault, ModeMaximize, ModeFullscreen:
	default:
		return fmt.Errorf("config: invalid display mode %q", c.Display.Mode)
	}
	switch c.Display.View {
	case ViewSlideshow, ViewBrowser, ViewDirectory:
	default:
		return fmt.Errorf("config: invalid view %q", c.Display.View)
	}
	if c.Display.AdvanceInterval <= 0 || c.Display.PauseInterval <= 0 {
		return fmt.Errorf("config: intervals must be positive")
	}
	return nil
}

// Location resolves the display timezone, falling back to local time.
func (d DisplayConfig) Location() (*time.Location, error) {
	if d.Timezone == "" || strings.EqualFold(d.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// ReferenceTime returns the overridden display instant, or nil when the
// display should follow the wall clock.
func (d DisplayConfig) ReferenceTime(loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(d.Date) == "" {
		return nil, nil
	}
	clock := strings.TrimSpace(d.Time)
	if clock == "" {
		clock = "12:00"
	}
	t, err := time.ParseInLocation(DateTimeFormat, strings.TrimSpace(d.Date)+" "+clock, loc)
	if err != nil {
		return nil, fmt.Errorf("parse display date/time: %w", err)
	}
	return &t, nil
}

// Advance returns the advance interval as a duration.
func (d DisplayConfig) Advance() time.Duration { return Seconds(d.AdvanceInterval) }

// Pause returns the pause interval as a duration.
func (d DisplayConfig) Pause() time.Duration { return Seconds(d.PauseInterval) }

// Seconds converts a float number of seconds, rounded to the millisecond.
func Seconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1e3)) * time.Millisecond
}

// SessionTitles returns indico.sessions keyed by numeric session id, in id order.
func (i IndicoConfig) SessionTitles() ([]int, map[int]string, error) {
	out := make(map[int]string, len(i.Sessions))
	ids := make([]int, 0, len(i.Sessions))
	for k, title := range i.Sessions {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, nil, fmt.Errorf("config: indico session key %q: %w", k, err)
		}
		out[id] = title
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, out, nil
}

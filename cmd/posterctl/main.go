package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/posterkiosk/posterkiosk/internal/config"
	"github.com/posterkiosk/posterkiosk/internal/database"
	"github.com/posterkiosk/posterkiosk/internal/database/repository"
	"github.com/posterkiosk/posterkiosk/internal/dispatch"
	"github.com/posterkiosk/posterkiosk/internal/env"
	"github.com/posterkiosk/posterkiosk/internal/indico"
	"github.com/posterkiosk/posterkiosk/internal/program"
	"github.com/posterkiosk/posterkiosk/internal/testdata"
)

const ledgerFile = "attachments.db"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg config.Config
	env *env.Env
	out io.Writer
}

func (a *app) log() *slog.Logger { return a.env.Logger }

func main() {
	if err := newRootCmd(&app{out: os.Stdout}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "posterctl",
		Short:        "Operator tasks for the poster kiosk",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.env == nil {
				return nil
			}
			return a.env.Close()
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(
		a.reportCmd(),
		a.fetchCmd(),
		a.exportCmd(),
		a.downloadCmd(),
		a.dispatchCmd(),
		a.qrcodesCmd(),
		a.sampleCmd(),
		a.reloadCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Log.Level))); err != nil {
		level = slog.LevelInfo
	}
	e, err := env.New(env.Options{
		Paths: env.Paths{
			Base:         cfg.Paths.Base,
			Graphics:     cfg.Paths.Graphics,
			ReloadMarker: cfg.Paths.ReloadMarker,
			ScreenID:     cfg.Paths.ScreenID,
		},
		LogPath: cfg.Log.Path,
		Writer:  os.Stderr,
		Level:   level,
	})
	if err != nil {
		return err
	}
	a.cfg, a.env = cfg, e
	return nil
}

func (a *app) conference(path string) (*indico.Conference, error) {
	ids, titles, err := a.cfg.Indico.SessionTitles()
	if err != nil {
		return nil, err
	}
	return indico.Load(path, ids, titles, a.log())
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <workbook.xlsx>",
		Short: "Summarise the program and its assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.cfg.Display.Location()
			if err != nil {
				a.log().Warn("using local timezone", "err", err)
			}
			wb, err := program.OpenWorkbook(args[0])
			if err != nil {
				return err
			}
			defer wb.Close()
			p, err := program.LoadProgram(wb, loc, a.log())
			if err != nil {
				return err
			}
			root := a.cfg.Paths.Assets
			if root == "" {
				root = filepath.Dir(args[0])
			}
			assets := &program.Assets{
				Root:             root,
				MissingPoster:    a.env.MissingPosterPath(),
				MissingPresenter: a.env.MissingPresenterPath(),
				MissingQRCode:    a.env.MissingQRCodePath(),
				Log:              slog.New(slog.NewTextHandler(io.Discard, nil)),
			}
			r := program.BuildReport(p, assets)
			r.Log(a.log())
			printReport(a.out, r)
			return nil
		},
	}
}

func printReport(w io.Writer, r *program.Report) {
	for _, st := range r.Sessions {
		fmt.Fprintf(w, "%s\n", st.Session)
		if st.Posters == 0 {
			fmt.Fprintln(w, "  no posters")
			continue
		}
		fmt.Fprintf(w, "  %d posters on %d screens (min %d, max %d, mean %.2f)\n",
			st.Posters, len(st.Screens), st.MinPerScr, st.MaxPerScr, st.MeanPerScreen())
	}
	fmt.Fprintf(w, "present: %d posters, %d pics, %d qrcodes\n", r.Present.Posters, r.Present.Pics, r.Present.QRCodes)
	fmt.Fprintf(w, "missing: %d posters, %d pics, %d qrcodes\n", r.Missing.Posters, r.Missing.Pics, r.Missing.QRCodes)
	fmt.Fprintf(w, "orphans: %d, missing posters: %d, possible duplicates: %d\n", len(r.Orphans), len(r.MissingPosters), len(r.Duplicates))
}

func (a *app) fetchCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "fetch <event.json>",
		Short: "Download the event export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Indico.URL == "" {
				return fmt.Errorf("indico.url is not set")
			}
			client := &http.Client{Timeout: time.Minute}
			_, err := indico.Fetch(cmd.Context(), client, a.cfg.Indico.URL, args[0], overwrite, a.log())
			return err
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing export")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <event.json> <workbook.xlsx>",
		Short: "Write the program workbook from the event export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.conference(args[0])
			if err != nil {
				return err
			}
			return c.Export(args[1], a.log())
		},
	}
}

func (a *app) downloadCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "download <event.json> <dir>",
		Short: "Download the contribution attachments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.conference(args[0])
			if err != nil {
				return err
			}
			dbPath := a.cfg.Paths.Database
			if dbPath == "" {
				dbPath = filepath.Join(args[1], ledgerFile)
			}
			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return err
			}
			db, err := database.OpenLedger(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			d := &indico.Downloader{
				Client: &http.Client{Timeout: 5 * time.Minute},
				Ledger: repository.NewAttachmentRepo(db),
				Dir:    args[1],
				DryRun: dryRun,
				Log:    a.log(),
			}
			stats, err := d.Download(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "downloaded %d, up to date %d, failed %d, pruned %d\n", stats.Downloaded, stats.UpToDate, stats.Failed, stats.Pruned)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only log what would be downloaded")
	return cmd
}

func (a *app) dispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <event.json> <attachments> <posters> <pictures>",
		Short: "Copy the poster PDF and presenter picture of each contribution",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.conference(args[0])
			if err != nil {
				return err
			}
			ids := c.ContributionIDs()
			d := &dispatch.Dispatcher{Src: args[1], Posters: args[2], Pictures: args[3], Log: a.log()}
			posters, err := d.DispatchPosters(ids)
			if err != nil {
				return err
			}
			pictures, err := d.DispatchPictures(ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "posters: %+v\npictures: %+v\n", posters, pictures)
			return nil
		},
	}
}

func (a *app) qrcodesCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "qrcodes <event.json> <dir>",
		Short: "Generate one QR code per contribution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.conference(args[0])
			if err != nil {
				return err
			}
			n, err := c.WriteQRCodes(args[1], overwrite, a.log())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d QR codes written\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing images")
	return cmd
}

func (a *app) sampleCmd() *cobra.Command {
	var (
		opts testdata.Options
		day  string
	)
	cmd := &cobra.Command{
		Use:   "sample <workbook.xlsx>",
		Short: "Write a generated program for rehearsals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Day = time.Now()
			if day != "" {
				d, err := time.Parse(time.DateOnly, day)
				if err != nil {
					return fmt.Errorf("invalid --day %q: %w", day, err)
				}
				opts.Day = d
			}
			wb := testdata.Generate(opts)
			if err := testdata.WriteXLSX(wb, args[0]); err != nil {
				return err
			}
			a.log().Info("sample program written", "path", args[0], "sessions", opts.Sessions, "posters", opts.Sessions*opts.Posters)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&day, "day", "", "date of the first session, YYYY-MM-DD (default today)")
	f.IntVar(&opts.Sessions, "sessions", 4, "number of sessions")
	f.IntVar(&opts.Posters, "posters", 12, "posters per session")
	f.IntVar(&opts.Screens, "screens", 4, "number of screens")
	f.Uint64Var(&opts.Seed, "seed", 1, "random seed")
	return cmd
}

func (a *app) reloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask running kiosks to reload the program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.env.TouchReloadMarker(); err != nil {
				return err
			}
			a.log().Info("reload requested", "marker", a.env.Paths.ReloadMarker)
			return nil
		},
	}
}

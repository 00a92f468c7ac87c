package indico

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/posterkiosk/posterkiosk/internal/database"
	"github.com/posterkiosk/posterkiosk/internal/database/repository"
)

// AttachmentExtensions are the file types worth downloading.
var AttachmentExtensions = []string{"pdf", "ppt", "pptx", "png", "jpg", "jpeg"}

// Remote is one downloadable attachment of a contribution.
type Remote struct {
	ContributionID int
	URL            string
	Modified       string
}

// FileName is the local name: the zero-padded contribution id, a dash and
// the remote base name.
func (r Remote) FileName() string {
	return fmt.Sprintf("%03d-%s", r.ContributionID, path.Base(urlPath(r.URL)))
}

func urlPath(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return u.Path
	}
	return raw
}

// Remotes lists the attachments of c whose extension is in extensions.
func (c Contribution) Remotes(extensions []string) []Remote {
	var out []Remote
	for _, folder := range c.Folders {
		for _, a := range folder.Attachments {
			ext := strings.ToLower(strings.TrimPrefix(path.Ext(urlPath(a.DownloadURL)), "."))
			if !slices.Contains(extensions, ext) {
				continue
			}
			out = append(out, Remote{ContributionID: int(c.ID), URL: a.DownloadURL, Modified: a.ModifiedDT})
		}
	}
	return out
}

// Downloader mirrors the attachments of a conference into Dir. The ledger
// remembers the modification stamp of every file on disk so unchanged ones
// are not fetched again.
type Downloader struct {
	Client *http.Client
	Ledger *repository.AttachmentRepo
	Dir    string
	DryRun bool
	Log    *slog.Logger
	Now    func() time.Time
}

type DownloadStats struct {
	Downloaded int
	UpToDate   int
	Failed     int
	// Pruned counts ledger rows dropped because their file is gone or the
	// attachment was withdrawn.
	Pruned int
}

func (d *Downloader) Download(ctx context.Context, c *Conference) (DownloadStats, error) {
	log := orDefault(d.Log)
	var stats DownloadStats
	if !d.DryRun {
		if err := os.MkdirAll(d.Dir, 0o755); err != nil {
			return stats, err
		}
	}
	log.Info("downloading files", "dir", d.Dir, "dry_run", d.DryRun)
	for _, s := range c.Sessions {
		log.Info("processing session", "session", s.Title)
		for _, contrib := range s.Contributions {
			remotes := contrib.Remotes(AttachmentExtensions)
			pruned, err := d.prune(ctx, int(contrib.ID), remotes, log)
			if err != nil {
				return stats, err
			}
			stats.Pruned += pruned
			if len(remotes) == 0 {
				log.Warn("no attachment", "contribution", int(contrib.ID), "title", contrib.Title)
			}
			for _, r := range remotes {
				if err := ctx.Err(); err != nil {
					return stats, err
				}
				fresh, err := d.upToDate(ctx, r)
				if err != nil {
					return stats, err
				}
				if fresh {
					log.Debug("up to date, skipping", "file", r.FileName())
					stats.UpToDate++
					continue
				}
				if err := d.fetch(ctx, r, log); err != nil {
					log.Error("download failed", "url", r.URL, "err", err)
					stats.Failed++
					continue
				}
				stats.Downloaded++
			}
		}
	}
	log.Info("download complete", "downloaded", stats.Downloaded, "up_to_date", stats.UpToDate, "failed", stats.Failed, "pruned", stats.Pruned)
	return stats, nil
}

// prune drops the ledger rows of a contribution whose file was removed from
// Dir or whose URL is no longer among its attachments.
func (d *Downloader) prune(ctx context.Context, contributionID int, remotes []Remote, log *slog.Logger) (int, error) {
	if d.Ledger == nil || d.DryRun {
		return 0, nil
	}
	entries, err := d.Ledger.ListByContribution(ctx, contributionID)
	if err != nil {
		return 0, fmt.Errorf("ledger list %d: %w", contributionID, err)
	}
	n := 0
	for _, e := range entries {
		current := slices.ContainsFunc(remotes, func(r Remote) bool { return r.URL == e.URL })
		if _, err := os.Stat(filepath.Join(d.Dir, e.FileName)); err == nil && current {
			continue
		}
		log.Info("dropping stale ledger entry", "file", e.FileName, "url", e.URL)
		if err := d.Ledger.Delete(ctx, e.URL); err != nil {
			return n, fmt.Errorf("ledger delete %s: %w", e.URL, err)
		}
		n++
	}
	return n, nil
}

func (d *Downloader) upToDate(ctx context.Context, r Remote) (bool, error) {
	if _, err := os.Stat(filepath.Join(d.Dir, r.FileName())); err != nil {
		return false, nil
	}
	if d.Ledger == nil {
		return false, nil
	}
	entry, err := d.Ledger.ByURL(ctx, r.URL)
	if err != nil {
		return false, fmt.Errorf("ledger lookup %s: %w", r.URL, err)
	}
	return entry != nil && entry.Modified == r.Modified, nil
}

func (d *Downloader) fetch(ctx context.Context, r Remote, log *slog.Logger) error {
	dest := filepath.Join(d.Dir, r.FileName())
	log.Info("downloading", "url", r.URL, "file", dest)
	if d.DryRun {
		return nil
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: %s", r.URL, resp.Status)
	}

	tmp, err := os.CreateTemp(d.Dir, ".download-*")
	if err != nil {
		return err
	}
	size, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if d.Ledger == nil {
		return nil
	}
	now := database.Now
	if d.Now != nil {
		now = d.Now
	}
	return d.Ledger.Upsert(ctx, repository.Attachment{
		ContributionID: r.ContributionID,
		URL:            r.URL,
		FileName:       r.FileName(),
		Modified:       r.Modified,
		Size:           size,
		DownloadedAt:   now(),
	})
}

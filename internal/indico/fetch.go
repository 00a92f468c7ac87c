package indico

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Fetch downloads the session-level export of the event at exportURL into
// path. An existing file is kept unless overwrite is set; the returned bool
// reports whether the file was written.
func Fetch(ctx context.Context, client *http.Client, exportURL, path string, overwrite bool, log *slog.Logger) (bool, error) {
	log = orDefault(log)
	if !strings.HasSuffix(path, ".json") {
		return false, fmt.Errorf("indico: output %s is not a .json file", path)
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		log.Info("file exists, skipping", "path", path)
		return false, nil
	}
	u, err := url.Parse(exportURL)
	if err != nil {
		return false, fmt.Errorf("indico: export url: %w", err)
	}
	q := u.Query()
	q.Set("detail", "sessions")
	q.Set("pretty", "yes")
	u.RawQuery = q.Encode()

	if client == nil {
		client = http.DefaultClient
	}
	log.Info("retrieving program", "url", u.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("indico: get %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("indico: get %s: %s", u, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("indico: read export: %w", err)
	}
	if !json.Valid(body) {
		return false, fmt.Errorf("indico: export from %s is not valid JSON", u)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	log.Info("saving data", "path", path)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

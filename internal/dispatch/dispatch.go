// Package dispatch sorts downloaded attachments into the folders the kiosk
// rasterization tools consume: one poster PDF and one presenter picture per
// contribution.
package dispatch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PictureExtensions are the attachment types treated as presenter pictures.
var PictureExtensions = []string{".png", ".jpg", ".jpeg"}

// PDFInfo is what dispatch needs to know about a PDF.
type PDFInfo struct {
	Pages  int
	Width  float64
	Height float64
}

// Portrait reports whether the first page is taller than wide. It is false
// when the page box is unknown.
func (i PDFInfo) Portrait() bool {
	return i.Height > 0 && i.Width/i.Height < 1
}

// InspectPDF reads the page count and the first page's media box, which
// may be inherited from the page tree.
func InspectPDF(path string) (info PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse %s: %v", path, r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("parse %s: %w", path, err)
	}
	defer f.Close()

	info.Pages = r.NumPage()
	if info.Pages == 0 {
		return info, nil
	}
	for v := r.Page(1).V; v.Kind() == pdf.Dict; v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		info.Width = box.Index(2).Float64() - box.Index(0).Float64()
		info.Height = box.Index(3).Float64() - box.Index(1).Float64()
		break
	}
	return info, nil
}

// Crawl walks root and returns the sorted paths of the files with the given
// extension (case-insensitive) whose base name contains pattern.
func Crawl(root, ext, pattern string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		if pattern != "" && !strings.Contains(d.Name(), pattern) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	sort.Strings(out)
	return out, err
}

// Result counts the outcome for each contribution.
type Result struct {
	Copied    int
	Existing  int
	Missing   int
	Ambiguous int
}

// Dispatcher copies from Src into Posters and Pictures. Targets are never
// overwritten.
type Dispatcher struct {
	Src      string
	Posters  string
	Pictures string
	Log      *slog.Logger
}

func (d *Dispatcher) log() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}

// byContribution groups the files under Src with one of exts by the numeric
// prefix of their name, keeping only the given ids.
func (d *Dispatcher) byContribution(ids []int, exts []string) (map[int][]string, error) {
	groups := make(map[int][]string, len(ids))
	for _, id := range ids {
		groups[id] = nil
	}
	for _, ext := range exts {
		files, err := Crawl(d.Src, ext, "")
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			prefix, _, _ := strings.Cut(filepath.Base(path), "-")
			id, err := strconv.Atoi(prefix)
			if err != nil {
				d.log().Debug("skipping file without contribution prefix", "path", path)
				continue
			}
			if _, ok := groups[id]; ok {
				groups[id] = append(groups[id], path)
			}
		}
	}
	return groups, nil
}

// DispatchPosters copies, for each contribution, its unique single-page
// portrait PDF to Posters/<id>.pdf.
func (d *Dispatcher) DispatchPosters(ids []int) (Result, error) {
	var res Result
	log := d.log()
	groups, err := d.byContribution(ids, []string{".pdf"})
	if err != nil {
		return res, err
	}
	for _, id := range sortedKeys(groups) {
		attachments := groups[id]
		if len(attachments) == 0 {
			log.Error("no poster candidate found", "contribution", id)
			res.Missing++
			continue
		}
		var candidates []string
		for _, path := range attachments {
			info, err := InspectPDF(path)
			if err != nil {
				log.Error("pdf parsing error", "path", path, "err", err)
				continue
			}
			if info.Height == 0 {
				log.Warn("no usable media box", "path", path)
			}
			if info.Pages == 1 && info.Portrait() {
				candidates = append(candidates, path)
			}
		}
		if len(candidates) != 1 {
			log.Warn("poster candidates are ambiguous", "contribution", id, "candidates", len(candidates), "attachments", len(attachments))
			res.Ambiguous++
			continue
		}
		if err := d.place(candidates[0], filepath.Join(d.Posters, fmt.Sprintf("%03d.pdf", id)), &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// DispatchPictures copies, for each contribution, its unique picture to
// Pictures/<id>.<ext>.
func (d *Dispatcher) DispatchPictures(ids []int) (Result, error) {
	var res Result
	log := d.log()
	log.Info("dispatching pictures")
	groups, err := d.byContribution(ids, PictureExtensions)
	if err != nil {
		return res, err
	}
	for _, id := range sortedKeys(groups) {
		attachments := groups[id]
		switch len(attachments) {
		case 0:
			log.Error("no picture candidate found", "contribution", id)
			res.Missing++
			continue
		case 1:
		default:
			log.Warn("several candidate pictures found", "contribution", id, "candidates", len(attachments))
			res.Ambiguous++
			continue
		}
		src := attachments[0]
		ext := strings.TrimPrefix(filepath.Ext(src), ".")
		if err := d.place(src, filepath.Join(d.Pictures, fmt.Sprintf("%03d.%s", id, ext)), &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (d *Dispatcher) place(src, dest string, res *Result) error {
	err := copyNew(src, dest)
	switch {
	case errors.Is(err, fs.ErrExist):
		d.log().Info("target file exists, skipping", "path", dest)
		res.Existing++
		return nil
	case err != nil:
		return fmt.Errorf("copy %s: %w", src, err)
	}
	d.log().Info("copied", "src", src, "dest", dest)
	res.Copied++
	return nil
}

// copyNew copies src to dest, failing with fs.ErrExist if dest is there.
func copyNew(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}

func sortedKeys(m map[int][]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

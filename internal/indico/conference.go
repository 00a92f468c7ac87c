// Package indico turns the event-management system's JSON export into the
// kiosk inputs: the program workbook, the downloaded attachments and the
// per-contribution QR codes.
package indico

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Int decodes identifiers the export emits either as numbers or as strings.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*i = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*i = 0
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("indico: integer id %q: %w", s, err)
		}
		*i = Int(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("indico: integer id %s: %w", b, err)
	}
	*i = Int(n)
	return nil
}

// Date is the export's split timestamp, e.g. {"date": "2015-05-28",
// "time": "15:45:00", "tz": "Europe/Rome"}.
type Date struct {
	Date string `json:"date"`
	Time string `json:"time"`
	TZ   string `json:"tz"`
}

// Parse returns the timestamp in its own timezone, or UTC when the zone is
// unknown.
func (d Date) Parse() (time.Time, error) {
	loc := time.UTC
	if d.TZ != "" {
		if l, err := time.LoadLocation(d.TZ); err == nil {
			loc = l
		}
	}
	return time.ParseInLocation("2006-01-02 15:04:05", d.Date+" "+d.Time, loc)
}

type Person struct {
	FullName    string `json:"fullName"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Affiliation string `json:"affiliation"`
}

type Attachment struct {
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
	ModifiedDT  string `json:"modified_dt"`
}

type Folder struct {
	Title       string       `json:"title"`
	Attachments []Attachment `json:"attachments"`
}

type Contribution struct {
	ID         Int      `json:"id"`
	DBID       Int      `json:"db_id"`
	FriendlyID Int      `json:"friendly_id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Speakers   []Person `json:"speakers"`
	Folders    []Folder `json:"folders"`
}

// Speaker returns the first speaker, if any.
func (c Contribution) Speaker() (Person, bool) {
	if len(c.Speakers) == 0 {
		return Person{}, false
	}
	return c.Speakers[0], true
}

func (c Contribution) String() string {
	name := "N/A"
	if s, ok := c.Speaker(); ok {
		name = s.FullName
	}
	return fmt.Sprintf("[%d] %s: %q", c.FriendlyID, name, c.Title)
}

type Session struct {
	ID            Int            `json:"id"`
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	StartDate     Date           `json:"startDate"`
	EndDate       Date           `json:"endDate"`
	Contributions []Contribution `json:"contributions"`
}

type dump struct {
	Count   int `json:"count"`
	Results []struct {
		ID            Int            `json:"id"`
		Title         string         `json:"title"`
		Sessions      []Session      `json:"sessions"`
		Contributions []Contribution `json:"contributions"`
	} `json:"results"`
}

// Conference is the filtered list of poster sessions of an event.
type Conference struct {
	Title    string
	Sessions []Session
	// Orphans counts the contributions not assigned to any session.
	Orphans int
}

// Load reads the export at path; see Parse.
func Load(path string, ids []int, titles map[int]string, log *slog.Logger) (*Conference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log = orDefault(log)
	log.Info("loading conference contributions", "path", path)
	return Parse(f, ids, titles, log)
}

// Parse decodes an export. When ids is not empty, only those sessions are
// kept, in that order, and renamed after titles when a title is given.
func Parse(r io.Reader, ids []int, titles map[int]string, log *slog.Logger) (*Conference, error) {
	log = orDefault(log)
	var d dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("indico: decode export: %w", err)
	}
	if len(d.Results) == 0 {
		return nil, fmt.Errorf("indico: export has no results")
	}
	res := d.Results[0]
	log.Info("sessions found", "count", len(res.Sessions))
	for _, s := range res.Sessions {
		log.Debug("session", "id", int(s.ID), "title", s.Title)
	}

	c := &Conference{Title: res.Title, Orphans: len(res.Contributions)}
	if len(ids) == 0 {
		c.Sessions = res.Sessions
	}
	for _, id := range ids {
		found := false
		for _, s := range res.Sessions {
			if int(s.ID) != id {
				continue
			}
			if t := titles[id]; t != "" {
				s.Title = t
			}
			c.Sessions = append(c.Sessions, s)
			found = true
			break
		}
		if !found {
			log.Warn("session not found in export", "session", id)
		}
	}
	if c.Orphans > 0 {
		log.Warn("orphan contributions found", "count", c.Orphans)
	}
	log.Info("program info", "sessions", len(c.Sessions), "contributions", len(c.ContributionIDs()))
	return c, nil
}

// ContributionIDs returns every contribution id, sorted.
func (c *Conference) ContributionIDs() []int {
	var ids []int
	for _, s := range c.Sessions {
		for _, contrib := range s.Contributions {
			ids = append(ids, int(contrib.ID))
		}
	}
	sort.Ints(ids)
	return ids
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

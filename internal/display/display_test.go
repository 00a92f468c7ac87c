package display

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/posterkiosk/posterkiosk/internal/env"
	"github.com/posterkiosk/posterkiosk/internal/program"
)

type fakeClock struct {
	now time.Time
	ref time.Time
}

func (c *fakeClock) Now() time.Time       { return c.now }
func (c *fakeClock) Reference() time.Time { return c.ref }

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
	c.ref = c.ref.Add(d)
}

func clockAt(t *testing.T, text string) *fakeClock {
	t.Helper()
	ref, err := time.ParseInLocation("02/01/2006 15:04", text, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return &fakeClock{now: ref, ref: ref}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 80, B: 160, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func testWorkbook() program.MemoryWorkbook {
	return program.MemoryWorkbook{
		program.ProgramSheet: {
			program.ProgramColumns,
			{"1", "Astroparticle", "18/10/2026 10:00", "18/10/2026 12:00"},
			{"2", "Detectors", "18/10/2026 11:00", "18/10/2026 13:00"},
			{"3", "Cosmology", "18/10/2026 14:00", "18/10/2026 16:00"},
		},
		"1": {
			program.SessionColumns,
			{"1", "101", "1", "Cosmic rays", "Ann", "Able", "INFN"},
			{"2", "102", "1", "Gamma rays", "Ben", "Baker", ""},
			{"3", "103", "2", "Neutrinos", "Cid", "Cole", "CERN"},
		},
		"2": {
			program.SessionColumns,
			{"4", "104", "3", "Silicon trackers", "Dee", "Dunn", "DESY"},
			{"5", "105", "4", "Calorimeters", "Eve", "Ertl", "KEK"},
		},
		"3": {
			program.SessionColumns,
			{"6", "106", "1", "Dark energy", "Fay", "Fox", "IAS"},
		},
	}
}

func testOptions(t *testing.T, clock *fakeClock) Options {
	t.Helper()
	base := t.TempDir()
	e := env.Discard(base)
	assets := &program.Assets{
		Root:             base,
		MissingPoster:    e.MissingPosterPath(),
		MissingPresenter: e.MissingPresenterPath(),
		MissingQRCode:    e.MissingQRCodePath(),
		Log:              e.Logger,
	}
	for id := 1; id <= 6; id++ {
		writePNG(t, filepath.Join(base, program.PosterFolder, program.ImageFileName(id)))
	}
	return Options{
		Env:       e,
		Source:    program.MemorySource{Workbook: testWorkbook(), Location: time.UTC, Log: e.Logger},
		Assets:    assets,
		Geometry:  program.Geometry{PosterWidth: 8, PortraitHeight: 2},
		Title:     "Pisa Meeting - La Biodola - 18/10/2026",
		Advance:   30 * time.Second,
		Pause:     5 * time.Second,
		Now:       clock.Now,
		Reference: clock.Reference,
	}
}

func loadedSlideshow(t *testing.T, clock *fakeClock, screen int) Slideshow {
	t.Helper()
	m := NewSlideshow(testOptions(t, clock), screen)
	msg := m.loadRoster()()
	next, _ := m.Update(msg)
	return next.(Slideshow)
}

func TestSlideshowStartsRunningOnMultiPosterRoster(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedSlideshow(t, clock, 1)

	if m.State() != "running" {
		t.Fatalf("state = %s, want running", m.State())
	}
	if got := m.Current().FriendlyID; got != 1 {
		t.Fatalf("first poster = %d, want 1", got)
	}
	if !m.advance.active() || !m.reload.active() {
		t.Fatal("advance and reload timers must be armed")
	}
	view := m.View()
	if !strings.Contains(view, "Astroparticle (screen #1)") {
		t.Fatalf("missing subtitle in view:\n%s", view)
	}
	if !strings.Contains(view, "30 s to the next poster") {
		t.Fatalf("missing running status in view:\n%s", view)
	}
}

func TestSlideshowAdvanceTimerWraps(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedSlideshow(t, clock, 1)

	for _, want := range []int{2, 1, 2} {
		clock.advance(30 * time.Second)
		next, cmd := m.Update(timerMsg{kind: timerAdvance, gen: m.advance.gen})
		m = next.(Slideshow)
		if cmd == nil {
			t.Fatal("periodic advance must re-arm")
		}
		if got := m.Current().FriendlyID; got != want {
			t.Fatalf("poster = %d, want %d", got, want)
		}
	}
}

func TestSlideshowPauseThenAutoResume(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedSlideshow(t, clock, 1)
	staleAdvance := timerMsg{kind: timerAdvance, gen: m.advance.gen}

	next, cmd := m.Update(keyMsg("2"))
	m = next.(Slideshow)
	if cmd == nil {
		t.Fatal("pause must arm the resume timer")
	}
	if m.State() != "paused" {
		t.Fatalf("state = %s, want paused", m.State())
	}
	if m.advance.active() {
		t.Fatal("advance timer must be disarmed while paused")
	}
	if status := m.status(); !strings.Contains(status, "paused, 5 s to restart") {
		t.Fatalf("status = %q", status)
	}

	next, _ = m.Update(staleAdvance)
	m = next.(Slideshow)
	if got := m.Current().FriendlyID; got != 1 {
		t.Fatalf("stale advance moved the slideshow to %d", got)
	}

	clock.advance(5 * time.Second)
	next, _ = m.Update(timerMsg{kind: timerResume, gen: m.resume.gen})
	m = next.(Slideshow)
	if m.State() != "running" {
		t.Fatalf("state = %s, want running", m.State())
	}
	if got := m.Current().FriendlyID; got != 2 {
		t.Fatalf("resume must advance once, poster = %d", got)
	}
}

func TestSlideshowKeys(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedSlideshow(t, clock, 1)

	next, _ := m.Update(keyMsg("3"))
	m = next.(Slideshow)
	if got := m.Current().FriendlyID; got != 2 {
		t.Fatalf("backup from first poster = %d, want 2", got)
	}
	next, _ = m.Update(keyMsg("right"))
	m = next.(Slideshow)
	if got := m.Current().FriendlyID; got != 1 {
		t.Fatalf("advance = %d, want 1", got)
	}

	next, _ = m.Update(keyMsg("2"))
	m = next.(Slideshow)
	next, _ = m.Update(keyMsg("1"))
	m = next.(Slideshow)
	if m.State() != "running" {
		t.Fatalf("advance while paused must restart, state = %s", m.State())
	}
	if m.resume.active() {
		t.Fatal("restart must disarm the resume timer")
	}

	before := m.Current()
	next, cmd := m.Update(keyMsg("x"))
	m = next.(Slideshow)
	if cmd != nil || m.Current() != before {
		t.Fatal("unknown keys must be ignored")
	}

	_, cmd = m.Update(keyMsg("5"))
	if cmd == nil {
		t.Fatal("reload key must schedule a roster load")
	}
	if _, ok := cmd().(rosterLoadedMsg); !ok {
		t.Fatal("reload key must load the roster")
	}
}

func TestSlideshowSinglePosterIgnoresInput(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedSlideshow(t, clock, 3)

	if m.State() != "stopped" {
		t.Fatalf("state = %s, want stopped", m.State())
	}
	if !m.reload.active() {
		t.Fatal("reload timer must stay armed")
	}
	next, cmd := m.Update(keyMsg("2"))
	m = next.(Slideshow)
	if cmd != nil || m.State() != "stopped" {
		t.Fatal("input must be disabled with a single poster")
	}
}

func TestSlideshowReloadsWhenSessionEnds(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedSlideshow(t, clock, 1)

	clock.advance(10 * time.Second)
	next, cmd := m.Update(timerMsg{kind: timerReload, gen: m.reload.gen})
	m = next.(Slideshow)
	if cmd == nil || m.State() != "running" {
		t.Fatal("ongoing session must keep running")
	}

	clock.ref = clock.ref.Add(time.Hour)
	next, cmd = m.Update(timerMsg{kind: timerReload, gen: m.reload.gen})
	m = next.(Slideshow)
	if m.State() != "stopped" {
		t.Fatalf("state = %s, want stopped while reloading", m.State())
	}
	msg, ok := cmd().(rosterLoadedMsg)
	if !ok {
		t.Fatal("expected a roster load")
	}
	next, _ = m.Update(msg)
	m = next.(Slideshow)
	if m.Current() != nil {
		t.Fatal("no session is ongoing at 12:00 on screen 1")
	}
	if !strings.Contains(m.View(), "No poster session on screen #1") {
		t.Fatalf("missing empty status:\n%s", m.View())
	}
}

func TestSlideshowReloadMarker(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedSlideshow(t, clock, 1)
	if err := m.opts.Env.TouchReloadMarker(); err != nil {
		t.Fatal(err)
	}
	_, cmd := m.Update(timerMsg{kind: timerReload, gen: m.reload.gen})
	if _, ok := cmd().(rosterLoadedMsg); !ok {
		t.Fatal("marker must trigger a reload")
	}
	if m.opts.Env.ConsumeReloadMarker() {
		t.Fatal("marker must be consumed")
	}
}

func TestSlideshowEmptyScreenWakesUpAtNextStart(t *testing.T) {
	clock := clockAt(t, "18/10/2026 13:30")
	m := loadedSlideshow(t, clock, 1)
	if m.Current() != nil || !m.reload.active() {
		t.Fatal("empty roster must keep the reload timer armed")
	}
	if m.defaults == nil || m.defaults.Poster == nil {
		t.Fatal("empty roster must show the default poster")
	}

	next, _ := m.Update(timerMsg{kind: timerReload, gen: m.reload.gen})
	m = next.(Slideshow)
	if !m.reload.active() {
		t.Fatal("no reload before the next session starts")
	}

	clock.advance(30 * time.Minute)
	_, cmd := m.Update(timerMsg{kind: timerReload, gen: m.reload.gen})
	msg, ok := cmd().(rosterLoadedMsg)
	if !ok {
		t.Fatal("expected a roster load once the next session started")
	}
	if msg.roster.Len() != 1 || msg.roster.At(0).FriendlyID != 6 {
		t.Fatalf("unexpected roster %v", msg.roster)
	}
}

func loadedBrowser(t *testing.T, clock *fakeClock) Browser {
	t.Helper()
	m := NewBrowser(testOptions(t, clock))
	next, _ := m.Update(loadProgram(m.opts.Source)())
	return next.(Browser)
}

func TestBrowserCarouselToTreeToPoster(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedBrowser(t, clock)

	if m.State() != "carousel" {
		t.Fatalf("state = %s, want carousel", m.State())
	}
	first := m.Current()
	if first == nil || first.Images() == nil {
		t.Fatal("carousel must show a poster with its images")
	}

	next, _ := m.Update(timerMsg{kind: timerCarousel, gen: m.carousel.gen})
	m = next.(Browser)
	if m.Current() == nil {
		t.Fatal("carousel tick must show a poster")
	}
	if m.Current() != first && first.Images() != nil {
		t.Fatal("previous poster images must be released")
	}

	next, _ = m.Update(keyMsg("down"))
	m = next.(Browser)
	if m.State() != "tree" {
		t.Fatalf("state = %s, want tree", m.State())
	}
	if m.carousel.active() || !m.toggle.active() {
		t.Fatal("tree view runs the idle timer only")
	}
	if sel := m.tree.selected(); sel != m.Current() {
		t.Fatal("tree must select the last poster seen")
	}

	m.tree.focusPoster(m.program.SelectByProgramIndex(0))
	next, _ = m.Update(keyMsg("right"))
	m = next.(Browser)
	if m.State() != "poster" {
		t.Fatalf("state = %s, want poster", m.State())
	}
	shown := m.Current()
	if shown.FriendlyID != 1 {
		t.Fatalf("opened poster %d, want 1", shown.FriendlyID)
	}
	if shown.Images() == nil {
		t.Fatal("poster view must load images")
	}

	next, _ = m.Update(keyMsg("down"))
	m = next.(Browser)
	if m.Current() == shown {
		t.Fatal("down must move to the next poster of the session")
	}
	if shown.Images() != nil {
		t.Fatal("images of the previous poster must be released")
	}
	if m.Current().FriendlyID != 2 || m.Current().Session() != shown.Session() {
		t.Fatalf("next poster = %d, want 2 in the same session", m.Current().FriendlyID)
	}
	second := m.Current()

	next, _ = m.Update(keyMsg("left"))
	m = next.(Browser)
	if m.State() != "tree" || m.tree.selected() != second {
		t.Fatal("left must return to the tree on the last poster seen")
	}

	next, _ = m.Update(timerMsg{kind: timerToggle, gen: m.toggle.gen})
	m = next.(Browser)
	if m.State() != "carousel" {
		t.Fatalf("idle tree must return to carousel, state = %s", m.State())
	}
}

func TestBrowserPosterViewIdleReturnsToTree(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedBrowser(t, clock)

	next, _ := m.Update(keyMsg("enter"))
	m = next.(Browser)
	next, _ = m.Update(keyMsg("right"))
	m = next.(Browser)
	if m.State() != "poster" {
		t.Fatalf("state = %s, want poster", m.State())
	}

	stale := timerMsg{kind: timerToggle, gen: m.toggle.gen}
	next, _ = m.Update(keyMsg("enter"))
	m = next.(Browser)
	next, _ = m.Update(stale)
	m = next.(Browser)
	if m.State() != "poster" {
		t.Fatal("enter must re-arm the idle timer")
	}

	next, _ = m.Update(timerMsg{kind: timerToggle, gen: m.toggle.gen})
	m = next.(Browser)
	if m.State() != "tree" {
		t.Fatalf("idle poster view must return to tree, state = %s", m.State())
	}
}

func TestBrowserWrapsWithinSession(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	m := loadedBrowser(t, clock)
	s := m.program.Session(2)
	m.transition(browserPoster, m.program.SelectBySessionIndex(s, 1))
	next, _ := m.Update(keyMsg("down"))
	m = next.(Browser)
	if got := m.Current().FriendlyID; got != 4 {
		t.Fatalf("down from last poster = %d, want 4", got)
	}
	next, _ = m.Update(keyMsg("up"))
	m = next.(Browser)
	if got := m.Current().FriendlyID; got != 5 {
		t.Fatalf("up from first poster = %d, want 5", got)
	}
}

func TestBrowserHidesPostersWithoutRaster(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:00")
	opts := testOptions(t, clock)
	if err := os.Remove(opts.Assets.PosterImagePath(3)); err != nil {
		t.Fatal(err)
	}
	m := NewBrowser(opts)
	next, _ := m.Update(loadProgram(opts.Source)())
	m = next.(Browser)
	for _, p := range m.tree.sessions[0].posters {
		if p.FriendlyID == 3 {
			t.Fatal("poster without raster must be hidden")
		}
	}
	if len(m.tree.sessions[0].posters) != 2 {
		t.Fatalf("session 1 shows %d posters, want 2", len(m.tree.sessions[0].posters))
	}
}

func loadedDirectory(t *testing.T, clock *fakeClock) Directory {
	t.Helper()
	m := NewDirectory(testOptions(t, clock))
	next, _ := m.Update(loadProgram(m.opts.Source)())
	return next.(Directory)
}

func TestDirectoryCyclesOngoingSessions(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:30")
	m := loadedDirectory(t, clock)

	if m.State() != "cycling" {
		t.Fatalf("state = %s, want cycling", m.State())
	}
	if len(m.tree.sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(m.tree.sessions))
	}
	if want := clock.ref.Add(30 * time.Minute); !m.ReloadDue().Equal(want) {
		t.Fatalf("reload due = %v, want %v", m.ReloadDue(), want)
	}
	if !m.tree.sessions[0].expanded || m.tree.sessions[1].expanded {
		t.Fatal("only the first session starts expanded")
	}

	next, _ := m.Update(timerMsg{kind: timerToggle, gen: m.toggle.gen})
	m = next.(Directory)
	if m.tree.sessions[0].expanded || !m.tree.sessions[1].expanded {
		t.Fatal("toggle must expand the next session")
	}
	if !strings.Contains(m.View(), "Toggling session in 30 s") {
		t.Fatalf("missing toggle status:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "Silicon trackers") {
		t.Fatalf("expanded session posters must be listed:\n%s", m.View())
	}
}

func TestDirectoryReloadsAtDeadline(t *testing.T) {
	clock := clockAt(t, "18/10/2026 11:30")
	m := loadedDirectory(t, clock)

	next, _ := m.Update(timerMsg{kind: timerReload, gen: m.reload.gen})
	m = next.(Directory)
	if !m.reload.active() {
		t.Fatal("no reload before the deadline")
	}

	clock.advance(30 * time.Minute)
	next, cmd := m.Update(timerMsg{kind: timerReload, gen: m.reload.gen})
	m = next.(Directory)
	if m.reload.active() {
		t.Fatal("reload timer pauses while the program loads")
	}
	msg, ok := cmd().(programLoadedMsg)
	if !ok {
		t.Fatal("deadline must trigger a reload")
	}
	next, _ = m.Update(msg)
	m = next.(Directory)
	if m.State() != "expanded" {
		t.Fatalf("one ongoing session at 12:00, state = %s", m.State())
	}
	if !m.tree.sessions[0].expanded || m.toggle.active() {
		t.Fatal("a single session is shown expanded without cycling")
	}
}

func TestDirectoryEmptyWaitsForNextStart(t *testing.T) {
	clock := clockAt(t, "18/10/2026 13:30")
	m := loadedDirectory(t, clock)
	if m.State() != "empty" {
		t.Fatalf("state = %s, want empty", m.State())
	}
	if want := clock.ref.Add(30 * time.Minute); !m.ReloadDue().Equal(want) {
		t.Fatalf("reload due = %v, want next start %v", m.ReloadDue(), want)
	}
	if !strings.Contains(m.View(), "No poster session is ongoing") {
		t.Fatalf("missing empty status:\n%s", m.View())
	}
}

func TestTimerGenerations(t *testing.T) {
	now := time.Unix(0, 0)
	tm := newTimer(timerAdvance, time.Second, false)
	tm.start(now)
	first := timerMsg{kind: timerAdvance, gen: tm.gen}
	tm.start(now)
	if ok, _ := tm.fire(first, now); ok {
		t.Fatal("restart must invalidate earlier ticks")
	}
	live := timerMsg{kind: timerAdvance, gen: tm.gen}
	if got := statusSeconds(tm.remaining(now)); got != 1 {
		t.Fatalf("status seconds = %d, want 1", got)
	}
	tm.stop()
	if ok, _ := tm.fire(live, now); ok {
		t.Fatal("stop must invalidate pending ticks")
	}
	if tm.remaining(now) != 0 {
		t.Fatal("stopped timer has no remaining time")
	}
}

func TestFaderReachesFullOpacity(t *testing.T) {
	now := time.Unix(0, 0)
	f := newFader(true)
	if f.fadeIn(now) == nil || f.opacity != 0 {
		t.Fatal("fade must start transparent")
	}
	for i := 0; i < 20 && f.opacity < 1; i++ {
		f.step(timerMsg{kind: timerFade, gen: f.tick.gen}, now)
	}
	if f.opacity != 1 {
		t.Fatalf("opacity = %f, want 1", f.opacity)
	}
	off := newFader(false)
	if off.fadeIn(now) != nil || off.opacity != 1 {
		t.Fatal("disabled fader stays opaque")
	}
}

func TestHeaderHeightKeepsStatusOnLastHeaderRow(t *testing.T) {
	clock := clockAt(t, "18/10/2026 13:30")
	opts := testOptions(t, clock)
	opts.HeaderHeight = 6
	m := NewDirectory(opts)
	next, _ := m.Update(loadProgram(m.opts.Source)())
	next, _ = next.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(Directory)

	lines := strings.Split(m.View(), "\n")
	if !strings.Contains(lines[5], "No poster session is ongoing") {
		t.Fatalf("status must sit on header row 6:\n%s", m.View())
	}
	if strings.TrimSpace(lines[2]) != "" {
		t.Fatalf("short header must be padded with blank rows, got %q", lines[2])
	}

	clock = clockAt(t, "18/10/2026 10:30")
	opts = testOptions(t, clock)
	opts.HeaderHeight = 4
	s := NewSlideshow(opts, 1)
	nextS, _ := s.Update(s.loadRoster()())
	s = nextS.(Slideshow)
	lines = strings.Split(s.View(), "\n")
	if !strings.Contains(lines[3], "SlideShow running") {
		t.Fatalf("tall header must be clipped to 4 rows:\n%s", s.View())
	}
}

func TestSlideshowBlankAffiliationShowsNA(t *testing.T) {
	clock := clockAt(t, "18/10/2026 10:30")
	opts := testOptions(t, clock)
	opts.Source = program.MemorySource{
		Workbook: program.MemoryWorkbook{
			program.ProgramSheet: {
				program.ProgramColumns,
				{"1", "Astroparticle", "18/10/2026 10:00", "18/10/2026 12:00"},
			},
			"1": {
				program.SessionColumns,
				{"1", "101", "1", "Cosmic rays", "Ada", "Lovelace", ""},
			},
		},
		Location: time.UTC,
	}
	m := NewSlideshow(opts, 1)
	next, _ := m.Update(m.loadRoster()())
	m = next.(Slideshow)

	if m.Current() == nil || m.Current().Presenter.Affiliation != "" {
		t.Fatal("expected the poster with a blank affiliation on screen")
	}
	if !strings.Contains(m.View(), "N/A") {
		t.Fatalf("blank affiliation must render as N/A:\n%s", m.View())
	}
}

func TestTreeScrollWindowSurvivesMovingBackUp(t *testing.T) {
	s := &program.Session{ID: 1, Title: "Long session"}
	var posters []*program.Poster
	for i := 1; i <= 10; i++ {
		posters = append(posters, &program.Poster{FriendlyID: i, Title: fmt.Sprintf("Poster %d", i)})
	}
	tr := newTree(true, false)
	tr.add(s, posters)
	tr.setVisible(4)
	tr.expand(0)

	for range 8 {
		tr.down()
	}
	if tr.cursor != 8 || tr.topIndex != 5 {
		t.Fatalf("cursor/top = %d/%d, want 8/5", tr.cursor, tr.topIndex)
	}
	tr.up()
	if tr.cursor != 7 || tr.topIndex != 5 {
		t.Fatalf("moving up inside the window must not scroll, cursor/top = %d/%d", tr.cursor, tr.topIndex)
	}

	view := tr
	lines := strings.Split(view.render(80, true, []string{"Poster", "Presenter"}), "\n")
	if len(lines) != 5 || !strings.Contains(lines[1], "[5] Poster 5") {
		t.Fatalf("window must start at poster 5:\n%s", strings.Join(lines, "\n"))
	}
	if tr.topIndex != 5 {
		t.Fatal("rendering must not move the window")
	}
}

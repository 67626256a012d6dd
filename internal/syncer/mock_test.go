package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cesargomez89/walkmlb/internal/cache"
	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/logger"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
	"github.com/cesargomez89/walkmlb/internal/store"
)

// mockFeed serves canned upstream documents and counts calls per endpoint and game.
// Documents are kept as raw JSON and decoded per call, like the real client.
type mockFeed struct {
	mu       sync.Mutex
	schedule map[string][]domain.ScheduledGame
	status   map[int64]string
	box      map[int64]string
	line     map[int64]string
	errs     map[string]error
	panics   map[string]bool
	calls    map[string]int
	listErr  error
}

func newMockFeed() *mockFeed {
	return &mockFeed{
		schedule: make(map[string][]domain.ScheduledGame),
		status:   make(map[int64]string),
		box:      make(map[int64]string),
		line:     make(map[int64]string),
		errs:     make(map[string]error),
		panics:   make(map[string]bool),
		calls:    make(map[string]int),
	}
}

func callKey(endpoint string, pk int64) string {
	return fmt.Sprintf("%s:%d", endpoint, pk)
}

func (m *mockFeed) addGame(date string, pk int64, statusRaw, boxRaw, lineRaw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule[date] = append(m.schedule[date], domain.ScheduledGame{GamePk: pk, DetailedState: "Scheduled"})
	m.status[pk] = statusRaw
	m.box[pk] = boxRaw
	m.line[pk] = lineRaw
}

func (m *mockFeed) setStatus(pk int64, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[pk] = raw
}

func (m *mockFeed) failWith(endpoint string, pk int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[callKey(endpoint, pk)] = err
}

func (m *mockFeed) panicOn(endpoint string, pk int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics[callKey(endpoint, pk)] = true
}

func (m *mockFeed) count(endpoint string, pk int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[callKey(endpoint, pk)]
}

func (m *mockFeed) total(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, v := range m.calls {
		if len(k) > len(endpoint) && k[:len(endpoint)+1] == endpoint+":" {
			n += v
		}
	}
	return n
}

func (m *mockFeed) serve(endpoint string, pk int64, docs map[int64]string) ([]byte, error) {
	m.mu.Lock()
	key := callKey(endpoint, pk)
	m.calls[key]++
	shouldPanic := m.panics[key]
	err := m.errs[key]
	raw, ok := docs[pk]
	m.mu.Unlock()

	if shouldPanic {
		panic("mock feed panic on " + key)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return []byte(raw), nil
}

func (m *mockFeed) ListGames(ctx context.Context, date time.Time) ([]domain.ScheduledGame, error) {
	ds := domain.FormatDate(date)
	m.mu.Lock()
	m.calls[callKey("schedule", 0)]++
	m.calls["schedule@"+ds]++
	shouldPanic := m.panics[callKey("schedule", 0)]
	err := m.listErr
	games := append([]domain.ScheduledGame(nil), m.schedule[ds]...)
	m.mu.Unlock()

	if shouldPanic {
		panic("mock schedule panic")
	}
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (m *mockFeed) scheduleCalls(date string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls["schedule@"+date]
}

func (m *mockFeed) Status(ctx context.Context, pk int64) (*snapshot.Status, error) {
	raw, err := m.serve("status", pk, m.status)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeStatus(raw)
}

func (m *mockFeed) BoxScore(ctx context.Context, pk int64) (*snapshot.BoxScore, error) {
	raw, err := m.serve("boxscore", pk, m.box)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeBoxScore(raw)
}

func (m *mockFeed) LineScore(ctx context.Context, pk int64) (*snapshot.LineScore, error) {
	raw, err := m.serve("linescore", pk, m.line)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeLineScore(raw)
}

// mockLedger records upserts in memory with the same natural-key semantics as the store.
type mockLedger struct {
	mu            sync.Mutex
	games         map[int64]domain.Game
	batters       map[string]domain.BatterLine
	gameUpserts   int
	batterUpserts int
	err           error
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		games:   make(map[int64]domain.Game),
		batters: make(map[string]domain.BatterLine),
	}
}

func (l *mockLedger) UpsertGame(ctx context.Context, g *domain.Game) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	l.gameUpserts++
	row := *g
	if existing, ok := l.games[g.GamePk]; ok {
		row.Date = existing.Date
	}
	row.ID = g.GamePk
	l.games[g.GamePk] = row
	return row.ID, nil
}

func (l *mockLedger) UpsertBatter(ctx context.Context, gameID int64, date string, line *domain.BatterLine) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batterUpserts++
	l.batters[fmt.Sprintf("%d/%s/%s", gameID, line.Team, line.Name)] = *line
	return nil
}

func (l *mockLedger) GameDate(ctx context.Context, pk int64) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.games[pk]
	if !ok {
		return "", false, nil
	}
	return g.Date, true, nil
}

func (l *mockLedger) setDate(pk int64, date string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.games[pk] = domain.Game{ID: pk, GamePk: pk, Date: date}
}

func (l *mockLedger) game(pk int64) (domain.Game, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.games[pk]
	return g, ok
}

func (l *mockLedger) upserts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gameUpserts
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	engine *Engine
	cache  *cache.Store
	db     *store.DB
	feed   *mockFeed
	ledger *mockLedger
	clock  *testClock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "syncer.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// 2025-04-01 14:00 in New York
	clk := &testClock{t: time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)}
	cs := cache.New(db).WithClock(clk.Now)
	feed := newMockFeed()
	ledger := newMockLedger()

	if opts.Location == nil {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Fatalf("load location: %v", err)
		}
		opts.Location = loc
	}
	e, err := New(feed, ledger, cs, opts, logger.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	e.now = clk.Now
	t.Cleanup(e.Close)

	return &harness{engine: e, cache: cs, db: db, feed: feed, ledger: ledger, clock: clk}
}

func statusJSON(detailed, abstract string) string {
	return fmt.Sprintf(`{"gameData":{"status":{"detailedState":%q,"abstractGameState":%q},`+
		`"teams":{"home":{"name":"Boston Red Sox"},"away":{"name":"New York Yankees"}}}}`, detailed, abstract)
}

func statusAtJSON(detailed, abstract, dateTime, officialDate string) string {
	return fmt.Sprintf(`{"gameData":{"status":{"detailedState":%q,"abstractGameState":%q},`+
		`"datetime":{"dateTime":%q,"officialDate":%q}}}`, detailed, abstract, dateTime, officialDate)
}

const fullBoxJSON = `{"teams":{
	"home":{"team":{"name":"Boston Red Sox"},
		"teamStats":{"batting":{"runs":5,"hits":9,"homeRuns":2},"fielding":{"errors":1}},
		"players":{"ID1":{"person":{"fullName":"Alpha Batter"},"position":{"abbreviation":"CF"},
			"stats":{"batting":{"atBats":4,"runs":2,"hits":2,"rbi":3,"homeRuns":1},"fielding":{"errors":1}}}}},
	"away":{"team":{"name":"New York Yankees"},
		"teamStats":{"batting":{"runs":3,"hits":7,"homeRuns":1},"fielding":{"errors":0}},
		"players":{"ID9":{"person":{"fullName":"Zeta Hitter"},"position":{"abbreviation":"SS"},
			"stats":{"batting":{"atBats":3,"hits":1}}}}}}}`

const lineJSON = `{"currentInning":5,"balls":1,"strikes":2,"outs":1,"innings":[{"num":1,"home":{"runs":1},"away":{"runs":0}}],"teams":{"home":{"runs":1},"away":{"runs":0}}}`

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func seedStatus(t *testing.T, h *harness, pk int64, raw string) {
	t.Helper()
	st, err := snapshot.DecodeStatus([]byte(raw))
	if err != nil {
		t.Fatalf("decode seed status: %v", err)
	}
	if _, err := h.cache.UpsertIfChanged(context.Background(), pk, st); err != nil {
		t.Fatalf("seed status: %v", err)
	}
}

func seedScores(t *testing.T, h *harness, pk int64) {
	t.Helper()
	ctx := context.Background()
	box, _ := snapshot.DecodeBoxScore([]byte(fullBoxJSON))
	line, _ := snapshot.DecodeLineScore([]byte(lineJSON))
	if _, err := h.cache.UpsertIfChanged(ctx, pk, box); err != nil {
		t.Fatalf("seed box: %v", err)
	}
	if _, err := h.cache.UpsertIfChanged(ctx, pk, line); err != nil {
		t.Fatalf("seed line: %v", err)
	}
}

func assertAbsent(t *testing.T, h *harness, pk int64) {
	t.Helper()
	for _, k := range snapshot.Kinds() {
		e, err := h.cache.Get(context.Background(), k, pk)
		if err != nil {
			t.Fatalf("Get(%s, %d): %v", k, pk, err)
		}
		if e != nil {
			t.Errorf("Expected %s for game %d to be purged", k, pk)
		}
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

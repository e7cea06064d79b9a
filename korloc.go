package korloc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
)

// Level is the administrative tier of a place, derived from its path segment count.
type Level string

const (
	LevelCity         Level = "시" // 1 segment
	LevelDistrict     Level = "구" // 2 segments
	LevelNeighborhood Level = "동" // 3 or more segments
)

// depth returns 1 for a city, 2 for a district and 3 for a neighborhood.
func (l Level) depth() int {
	switch l {
	case LevelCity:
		return 1
	case LevelDistrict:
		return 2
	default:
		return 3
	}
}

const (
	// DefaultLimit is the result cap used by callers that don't pick their own.
	DefaultLimit = 10

	// MinQueryLength is the shortest normalized query, in runes, that produces results.
	MinQueryLength = 2
)

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a single gazetteer entry. ID always equals FullPath and Name is
// the final path segment. Values handed out by an Index are copies; treat
// Coordinates as read-only.
type Location struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	FullPath    string       `json:"fullPath"`
	Level       Level        `json:"level"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// NewLocation builds a Location from a full path without coordinates.
func NewLocation(path string) Location {
	parts := splitPath(path)
	return Location{
		ID:       path,
		Name:     parts[len(parts)-1],
		FullPath: path,
		Level:    levelForSegments(len(parts)),
	}
}

// FormatName returns the human-readable label of a location: its full path
// with every hyphen replaced by a space.
func FormatName(loc Location) string {
	return strings.ReplaceAll(loc.FullPath, PathSeparator, " ")
}

// Sentinel errors returned by the build.
var (
	ErrNoSource       = errors.New("korloc: no gazetteer source configured")
	ErrEmptyGazetteer = errors.New("korloc: gazetteer is empty")
	ErrBuildFailed    = errors.New("korloc: index build failed")
)

// State is the lifecycle state of an Index.
type State int32

const (
	StateUnbuilt State = iota
	StateBuilding
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// BuildObserver receives build outcomes. internal/metrics provides one.
type BuildObserver interface {
	ObserveBuild(d time.Duration, entries int, err error)
}

// Config contains configuration options for Index construction.
type Config struct {
	Source      Source
	Coordinates CoordinateTable
	Logger      *slog.Logger
	Observer    BuildObserver
}

// Option is a functional option for configuring an Index.
type Option func(*Config)

// WithSource sets where the gazetteer is loaded from.
func WithSource(src Source) Option {
	return func(c *Config) {
		c.Source = src
	}
}

// WithCoordinates replaces the coordinate table used for enrichment.
func WithCoordinates(t CoordinateTable) Option {
	return func(c *Config) {
		c.Coordinates = t
	}
}

// WithLogger sets the logger for build events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithObserver registers a BuildObserver.
func WithObserver(o BuildObserver) Option {
	return func(c *Config) {
		c.Observer = o
	}
}

func defaultConfig() *Config {
	return &Config{
		Source:      EmbeddedSource(),
		Coordinates: DefaultCoordinates(),
		Logger:      slog.Default(),
	}
}

// snapshot is a fully built, immutable index. It is published atomically once
// complete, so readers never observe a partial build.
type snapshot struct {
	gazetteer []string         // raw entries in gazetteer order
	locations []Location       // one per gazetteer entry, same order
	exact     []bool           // whether locations[i] has its own coordinate entry
	tokens    []string         // index keys in first-insertion order
	postings  map[string][]int // inverted index: token -> location indices
	byID      map[string]int   // full path -> location index
	children  map[string][]int // parent path -> direct child indices
	cells     cellIndex        // spatial index over exactly-placed locations
}

// Index is a lazily built location search index.
// Safe for concurrent use.
type Index struct {
	cfg *Config

	mu      sync.Mutex // guards state and lastErr
	state   State
	lastErr error

	group singleflight.Group
	snap  atomic.Pointer[snapshot]
}

// New creates an unbuilt Index. Nothing is loaded until EnsureBuilt or GetByID.
//
//	idx := korloc.New(korloc.WithSource(korloc.FileSource("districts.json")))
//	if err := idx.EnsureBuilt(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	results := idx.Search("종로", korloc.DefaultLimit)
func New(opts ...Option) *Index {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Index{cfg: cfg}
}

// Singleton pattern for the default Index over the embedded gazetteer.
var (
	defaultIndex     *Index
	defaultIndexOnce sync.Once
)

// Default returns a shared Index over the embedded gazetteer. It is created
// unbuilt; call EnsureBuilt before searching.
func Default() *Index {
	defaultIndexOnce.Do(func() {
		defaultIndex = New()
	})
	return defaultIndex
}

// State reports the current lifecycle state and the error of the last failed build.
func (x *Index) State() (State, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state, x.lastErr
}

// EnsureBuilt loads the gazetteer and builds the index if that hasn't happened
// yet. Concurrent callers share one in-flight build. A failed build leaves the
// index unpublished, and the next call retries.
//
// The build runs to completion even if ctx is cancelled; cancellation only
// stops this caller from waiting.
func (x *Index) EnsureBuilt(ctx context.Context) error {
	if x.snap.Load() != nil {
		return nil
	}

	x.mu.Lock()
	if x.state == StateReady {
		x.mu.Unlock()
		return nil
	}
	x.state = StateBuilding
	x.mu.Unlock()

	buildCtx := context.WithoutCancel(ctx)
	ch := x.group.DoChan("build", func() (any, error) {
		if s := x.snap.Load(); s != nil {
			x.mu.Lock()
			x.state = StateReady
			x.mu.Unlock()
			return s, nil
		}
		s, err := x.build(buildCtx)

		x.mu.Lock()
		defer x.mu.Unlock()
		if err != nil {
			x.state = StateFailed
			x.lastErr = err
			return nil, err
		}
		x.snap.Store(s)
		x.state = StateReady
		x.lastErr = nil
		return s, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// build loads the gazetteer and constructs a snapshot.
func (x *Index) build(ctx context.Context) (*snapshot, error) {
	log := x.cfg.Logger
	start := time.Now()
	log.Debug("index_build_begin")

	s, err := x.load(ctx)
	d := time.Since(start)
	entries := 0
	if s != nil {
		entries = len(s.locations)
	}
	if x.cfg.Observer != nil {
		x.cfg.Observer.ObserveBuild(d, entries, err)
	}
	if err != nil {
		log.Warn("index_build_error", "err", err, "duration_ms", d.Milliseconds())
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	log.Info("index_build_ok", "entries", entries, "tokens", len(s.tokens), "duration_ms", d.Milliseconds())
	return s, nil
}

func (x *Index) load(ctx context.Context) (*snapshot, error) {
	if x.cfg.Source == nil {
		return nil, ErrNoSource
	}
	raw, err := x.cfg.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading gazetteer: %w", err)
	}
	entries := cleanGazetteer(raw)
	if len(entries) == 0 {
		return nil, ErrEmptyGazetteer
	}
	return newSnapshot(entries, x.cfg.Coordinates), nil
}

// newSnapshot indexes every entry under each of its lowercased segments and
// its lowercased full path. Entries must already be unique and non-blank.
func newSnapshot(entries []string, coords CoordinateTable) *snapshot {
	s := &snapshot{
		gazetteer: entries,
		locations: make([]Location, 0, len(entries)),
		exact:     make([]bool, 0, len(entries)),
		postings:  make(map[string][]int),
		byID:      make(map[string]int, len(entries)),
		children:  make(map[string][]int),
	}

	for i, path := range entries {
		loc := coords.Enrich(NewLocation(path))
		_, exact := coords[path]
		s.locations = append(s.locations, loc)
		s.exact = append(s.exact, exact)
		s.byID[path] = i

		for _, part := range splitPath(path) {
			s.register(toLower(part), i)
		}
		s.register(toLower(path), i)

		if parent, ok := ParentID(path); ok {
			s.children[parent] = append(s.children[parent], i)
		}
	}

	s.cells = buildCellIndex(s.locations, s.exact)
	return s
}

// register appends location i under key, recording key order on first use.
// A location already registered under key is not added twice.
func (s *snapshot) register(key string, i int) {
	if key == "" {
		return
	}
	list, ok := s.postings[key]
	if !ok {
		s.tokens = append(s.tokens, key)
	}
	if n := len(list); n > 0 && list[n-1] == i {
		return
	}
	s.postings[key] = append(list, i)
}

// normalizeQuery lowercases and trims q. ok is false when the result is too
// short to search.
func normalizeQuery(q string) (string, bool) {
	n := strings.TrimSpace(toLower(q))
	if n == "" || utf8.RuneCountInString(n) < MinQueryLength {
		return "", false
	}
	return n, true
}

// Search returns up to limit locations matching query. Locations filed under
// the exact normalized query come first, followed by locations under any token
// containing the query, in token insertion order. Returns nil when the index
// isn't built yet or the query is blank or too short; it never blocks on a build.
func (x *Index) Search(query string, limit int) []Location {
	s := x.snap.Load()
	if s == nil || limit <= 0 {
		return nil
	}
	q, ok := normalizeQuery(query)
	if !ok {
		return nil
	}

	results := make([]Location, 0, min(limit, 16))
	seen := make(map[int]bool)
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			results = append(results, s.locations[i])
		}
	}

	for _, i := range s.postings[q] {
		add(i)
	}

	for _, key := range s.tokens {
		if len(results) >= limit {
			break
		}
		if !strings.Contains(key, q) {
			continue
		}
		for _, i := range s.postings[key] {
			if len(results) >= limit {
				break
			}
			add(i)
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// GetByID resolves a location by its exact full path, building the index
// first if needed. found is false for unknown ids; err is only set when the
// build fails or ctx ends while waiting for it.
func (x *Index) GetByID(ctx context.Context, id string) (loc Location, found bool, err error) {
	if err := x.EnsureBuilt(ctx); err != nil {
		return Location{}, false, err
	}
	s := x.snap.Load()
	if _, ok := s.byID[id]; !ok {
		return Location{}, false, nil
	}
	return x.cfg.Coordinates.Enrich(NewLocation(id)), true, nil
}

// Children returns the direct children of id in gazetteer order.
func (x *Index) Children(id string) []Location {
	s := x.snap.Load()
	if s == nil {
		return nil
	}
	idx := s.children[id]
	out := make([]Location, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.locations[i])
	}
	return out
}

// Gazetteer returns a copy of the raw gazetteer, or nil if the index isn't built.
func (x *Index) Gazetteer() []string {
	s := x.snap.Load()
	if s == nil {
		return nil
	}
	return append([]string(nil), s.gazetteer...)
}

// Len returns the number of indexed locations.
func (x *Index) Len() int {
	s := x.snap.Load()
	if s == nil {
		return 0
	}
	return len(s.locations)
}

// cleanGazetteer drops blank entries and repeats, keeping the first
// occurrence so gazetteer order is preserved. Entries are not trimmed: an
// entry is its own id.
func cleanGazetteer(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, e := range raw {
		if strings.TrimSpace(e) == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// toLower lowercases s with Unicode rules. Hangul has no case, but the
// gazetteer may carry Latin romanizations.
func toLower(s string) string {
	return strings.ToLower(s)
}

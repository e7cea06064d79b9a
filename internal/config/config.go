// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/andreiashu/korloc"
)

// Config holds korloc-server settings.
type Config struct {
	Addr            string        // KORLOC_ADDR
	DataFile        string        // KORLOC_DATA_FILE, gazetteer JSON on disk
	DataURL         string        // KORLOC_DATA_URL, used when DataFile is empty
	CoordinatesFile string        // KORLOC_COORDINATES_FILE
	SearchLimit     int           // KORLOC_SEARCH_LIMIT
	NearestCache    int           // KORLOC_NEAREST_CACHE_SIZE
	NearestCacheTTL time.Duration // KORLOC_NEAREST_CACHE_TTL
	HTTPTimeout     time.Duration // KORLOC_HTTP_TIMEOUT, for DataURL fetches
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:            ":8080",
		SearchLimit:     korloc.DefaultLimit,
		NearestCache:    1024,
		NearestCacheTTL: 10 * time.Minute,
		HTTPTimeout:     30 * time.Second,
	}
}

// LoadDotenv loads the given .env files. Missing files are skipped;
// unreadable or malformed ones are errors. Variables already set in the
// environment win.
func LoadDotenv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from the process environment.
func FromEnv() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config using lookup to resolve variables.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	get := func(k string) string {
		v, _ := lookup(k)
		return v
	}

	if v := get("KORLOC_ADDR"); v != "" {
		c.Addr = v
	}
	c.DataFile = get("KORLOC_DATA_FILE")
	c.DataURL = get("KORLOC_DATA_URL")
	c.CoordinatesFile = get("KORLOC_COORDINATES_FILE")

	var err error
	if c.SearchLimit, err = intVar(get, "KORLOC_SEARCH_LIMIT", c.SearchLimit); err != nil {
		return c, err
	}
	if c.NearestCache, err = intVar(get, "KORLOC_NEAREST_CACHE_SIZE", c.NearestCache); err != nil {
		return c, err
	}
	if c.NearestCacheTTL, err = durationVar(get, "KORLOC_NEAREST_CACHE_TTL", c.NearestCacheTTL); err != nil {
		return c, err
	}
	if c.HTTPTimeout, err = durationVar(get, "KORLOC_HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return c, err
	}
	return c, nil
}

func intVar(get func(string) string, key string, def int) (int, error) {
	v := get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def, fmt.Errorf("%s: want a positive integer, got %q", key, v)
	}
	return n, nil
}

func durationVar(get func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := get(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("%s: want a positive duration, got %q", key, v)
	}
	return d, nil
}

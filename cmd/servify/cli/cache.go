package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// CacheBumper invalidates cached analytics results.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// CacheCLI exposes manual cache maintenance commands.
type CacheCLI struct {
	cache CacheBumper
}

// NewCacheCLI constructs the cache helpers.
func NewCacheCLI(cache CacheBumper) (*CacheCLI, error) {
	if cache == nil {
		return nil, errors.New("cache cli: cache not configured")
	}
	return &CacheCLI{cache: cache}, nil
}

// CacheBumpOptions defines the flags of the cache bump command.
type CacheBumpOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// CacheBumpSummary is the JSON output of cache bump.
type CacheBumpSummary struct {
	OK      bool  `json:"ok"`
	Version int64 `json:"version"`
}

// BumpCommand increments the analytics cache version and prints the new one.
// A zero version means no cache is configured.
func (c *CacheCLI) BumpCommand(ctx context.Context, opts CacheBumpOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	ver, err := c.cache.Bump(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "cache bump: %v\n", err)
		return 1
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(CacheBumpSummary{OK: true, Version: ver}); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "cache bump: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	if ver == 0 {
		_, _ = fmt.Fprintln(opts.Stdout, "analytics cache disabled, nothing to bump")
		return 0
	}
	_, _ = fmt.Fprintf(opts.Stdout, "analytics cache version is now %d\n", ver)
	return 0
}

package analytics

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/servify/servify-dashboard/internal/shared"
)

// FilterOptions lists the selectable values per filter dimension.
type FilterOptions struct {
	Brands               []string `json:"brands"`
	ProductSubcategories []string `json:"productSubcategories"`
	Stores               []string `json:"stores"`
}

// GetFilterOptions returns the distinct values of each dimension over the
// unfiltered dataset. The three lookups run concurrently.
func (s *Service) GetFilterOptions(ctx context.Context) (FilterOptions, error) {
	loader := func(ctx context.Context) (any, error) {
		var opts FilterOptions
		g, ctx := errgroup.WithContext(ctx)
		targets := []struct {
			column string
			dest   *[]string
		}{
			{ColumnBrand, &opts.Brands},
			{ColumnProductSubcategory, &opts.ProductSubcategories},
			{ColumnStore, &opts.Stores},
		}
		for _, target := range targets {
			g.Go(func() error {
				values, err := s.repo.DistinctValues(ctx, target.column)
				if err != nil {
					return fmt.Errorf("%w: distinct %s: %w", shared.ErrDependency, target.column, err)
				}
				*target.dest = sortedUnique(values)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return FilterOptions{}, err
		}
		return opts, nil
	}

	var opts FilterOptions
	if err := s.cache.FetchJSON(ctx, &opts, loader, "analytics", "options"); err != nil {
		return FilterOptions{}, err
	}
	return opts, nil
}

// sortedUnique orders values byte-wise and drops duplicates, so the result
// does not depend on the database collation. Empty strings are dropped too:
// an empty filter value means "no filter", so "" could never be selected.
func sortedUnique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

package config

import (
	"context"
	"fmt"
)

// Merge folds src into dst in place. Where both sides hold a Table the merge
// recurses; any other value in src replaces the one in dst outright, including
// when the shapes differ. Lists are never merged element-wise.
//
// Replacements are deep copies, so dst never shares a nested Table or List
// with src. Merge returns dst, or a new Table when dst is nil and src has keys.
func Merge(dst, src Table) Table {
	if dst == nil && len(src) > 0 {
		dst = make(Table, len(src))
	}
	for k, v := range src {
		if incoming, ok := v.(Table); ok {
			if existing, ok := dst[k].(Table); ok && existing != nil {
				Merge(existing, incoming)
				continue
			}
		}
		dst[k] = cloneValue(v)
	}
	return dst
}

// Fold loads every source in order and merges each result into a fresh
// accumulator, lowest priority first. It stops at the first failing source and
// returns no partial document.
func Fold(ctx context.Context, sources ...ConfigSource) (Table, error) {
	merged := Table{}
	for _, src := range sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		vals, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", src.Name(), err)
		}
		Merge(merged, vals)
	}
	return merged, nil
}

package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// MaxAttempts is the number of candidates Unique tries before giving up.
const MaxAttempts = 100

// ErrExhausted is returned when every candidate up to MaxAttempts is taken.
var ErrExhausted = errors.New("slug candidates exhausted")

// TakenFunc reports whether candidate is already used by another row.
// Callers updating an existing row exclude that row from the check.
type TakenFunc func(ctx context.Context, candidate string) (bool, error)

// Candidate returns the n-th candidate for base: base itself for n <= 1,
// base-n otherwise.
func Candidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Unique derives a slug from title that taken reports as free. When the
// title produces an empty slug the fallback is used as the base instead.
// Candidates are tried in order: base, base-2, base-3, ...
func Unique(ctx context.Context, title, fallback string, taken TakenFunc) (string, error) {
	base := Generate(title)
	if base == "" {
		base = Generate(fallback)
	}
	if base == "" {
		return "", fmt.Errorf("slug: empty title and fallback")
	}

	for n := 1; n <= MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := Candidate(base, n)
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q after %d attempts", ErrExhausted, base, MaxAttempts)
}

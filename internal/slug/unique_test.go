package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func takenSet(slugs ...string) TakenFunc {
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	return func(_ context.Context, c string) (bool, error) {
		return set[c], nil
	}
}

func TestUnique(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		title    string
		fallback string
		taken    []string
		want     string
	}{
		{name: "free base", title: "Hello World", fallback: "post", want: "hello-world"},
		{name: "base taken", title: "Hello World", fallback: "post", taken: []string{"hello-world"}, want: "hello-world-2"},
		{name: "several taken", title: "Hello", fallback: "post", taken: []string{"hello", "hello-2", "hello-3"}, want: "hello-4"},
		{name: "gap is reused", title: "Hello", fallback: "post", taken: []string{"hello", "hello-3"}, want: "hello-2"},
		{name: "empty title uses fallback", title: "!!!", fallback: "post", want: "post"},
		{name: "fallback collides", title: "", fallback: "tag", taken: []string{"tag"}, want: "tag-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unique(ctx, tt.title, tt.fallback, takenSet(tt.taken...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUniqueDeterministic(t *testing.T) {
	ctx := context.Background()
	taken := takenSet("same", "same-2")
	a, err := Unique(ctx, "Same", "post", taken)
	require.NoError(t, err)
	b, err := Unique(ctx, "Same", "post", taken)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "same-3", a)
}

func TestUniqueExhausted(t *testing.T) {
	always := func(context.Context, string) (bool, error) { return true, nil }
	_, err := Unique(context.Background(), "busy", "post", always)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestUniqueLookupError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(context.Context, string) (bool, error) { return false, boom }
	_, err := Unique(context.Background(), "x", "post", failing)
	assert.ErrorIs(t, err, boom)
}

func TestUniqueCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Unique(ctx, "x", "post", takenSet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCandidate(t *testing.T) {
	assert.Equal(t, "a", Candidate("a", 0))
	assert.Equal(t, "a", Candidate("a", 1))
	assert.Equal(t, "a-2", Candidate("a", 2))
	assert.Equal(t, "a-10", Candidate("a", 10))
}

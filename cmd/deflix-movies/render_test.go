package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doingodswork/deflix-movies/pkg/movies"
	"github.com/doingodswork/deflix-movies/pkg/state"
)

func TestFormatBoxOffice(t *testing.T) {
	require.Equal(t, "N/A", formatBoxOffice(0))
	require.Equal(t, "$999", formatBoxOffice(999))
	require.Equal(t, "$1,000", formatBoxOffice(999.6))
	require.Equal(t, "$187,436,818", formatBoxOffice(187436818))
	require.Equal(t, "-$1,500", formatBoxOffice(-1500))
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "N/A", formatNumber(""))
	require.Equal(t, "N/A", formatNumber("abc"))
	require.Equal(t, "123", formatNumber("123"))
	require.Equal(t, "1,234,567", formatNumber("1234567"))
	require.Equal(t, "1,234,567", formatNumber("1,234,567"))
}

func TestFormatAwards(t *testing.T) {
	require.Equal(t, "N/A", formatAwards(nil))
	require.Equal(t, "Oscar, Golden Globe", formatAwards([]string{"Oscar", "Golden Globe"}))
}

func TestRenderListEmpty(t *testing.T) {
	out := &bytes.Buffer{}
	err := renderList(out, state.State{Movies: []movies.Movie{}, ActivePage: 1, TotalPages: 1}, func(int) bool { return false })
	require.NoError(t, err)
	require.Equal(t, "No movies found\n", out.String())
}

func TestRenderMovieWithoutPoster(t *testing.T) {
	out := &bytes.Buffer{}
	err := renderMovie(out, movies.Movie{ID: 1, Title: "Heat"}, true)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Heat *\n")
	require.Contains(t, out.String(), "Directors:")
	require.NotContains(t, out.String(), "Poster")
}

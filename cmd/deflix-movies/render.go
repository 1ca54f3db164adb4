package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/doingodswork/deflix-movies/pkg/movies"
	"github.com/doingodswork/deflix-movies/pkg/state"
)

const notAvailable = "N/A"

func renderList(w io.Writer, st state.State, isFavorite func(int) bool) error {
	if st.SearchQuery != "" {
		fmt.Fprintf(w, "Search results for %q\n", st.SearchQuery)
	}
	if len(st.Movies) == 0 {
		fmt.Fprintln(w, "No movies found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, movie := range st.Movies {
		marker := " "
		if isFavorite(movie.ID) {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", marker, movie.ID, movie.Title, formatYear(movie.Year), strings.Join(movie.Genres.Labels(), ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Page %d of %d\n", st.ActivePage, st.TotalPages)
	return err
}

type row struct {
	label string
	value string
}

func renderMovie(w io.Writer, movie movies.Movie, isFavorite bool) error {
	title := movie.Title
	if isFavorite {
		title += " *"
	}
	fmt.Fprintln(w, title)
	if movie.Plot != "" {
		fmt.Fprintln(w, movie.Plot)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := []row{
		{"Year", formatYear(movie.Year)},
		{"Rated", orNA(movie.Rated)},
		{"Runtime", orNA(movie.Runtime)},
		{"Genres", orNA(strings.Join(movie.Genres.Labels(), ", "))},
		{"Directors", movie.Directors.String()},
		{"Actors", movie.Actors.String()},
		{"Producers", movie.Producers.String()},
		{"IMDb Rating", fmt.Sprintf("%s/10 (%s votes)", orNA(movie.IMDbRating), formatNumber(movie.IMDbVotes))},
		{"Metascore", orNA(movie.Metascore)},
		{"Awards", formatAwards(movie.Awards)},
		{"Production", orNA(movie.Production)},
		{"Box Office", formatBoxOffice(movie.BoxOfficeCollection)},
		{"Country", orNA(movie.Country)},
		{"Language", orNA(movie.Language)},
		{"Released", orNA(movie.Released)},
		{"DVD Release", orNA(movie.DVD)},
		{"IMDb ID", orNA(movie.IMDbID)},
		{"Type", orNA(movie.Type)},
		{"Website", orNA(movie.Website)},
	}
	if movie.HasPoster() {
		if thumb := movie.Poster.ThumbnailURL(); thumb != "" {
			rows = append(rows, row{"Poster thumbnail", thumb})
		}
		rows = append(rows, row{"Poster", movie.Poster.FullURL()})
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r.label, r.value)
	}
	return tw.Flush()
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func formatYear(year int) string {
	if year == 0 {
		return notAvailable
	}
	return strconv.Itoa(year)
}

func formatAwards(awards []string) string {
	if len(awards) == 0 {
		return notAvailable
	}
	return strings.Join(awards, ", ")
}

// formatBoxOffice formats the amount as US dollars without cents, for example "$1,234,567".
func formatBoxOffice(amount float64) string {
	if amount == 0 || math.IsNaN(amount) {
		return notAvailable
	}
	rounded := int64(math.Round(amount))
	if rounded < 0 {
		return "-$" + groupThousands(-rounded)
	}
	return "$" + groupThousands(rounded)
}

// formatNumber formats a number string with thousands separators.
// The backend sends vote counts with or without separators.
func formatNumber(num string) string {
	n, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(num), ",", ""), 10, 64)
	if err != nil || n == 0 {
		return notAvailable
	}
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	return groupThousands(n)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	var sb strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}
	return sb.String()
}

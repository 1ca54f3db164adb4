package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/doingodswork/deflix-movies/pkg/movies"
)

// catalog is the read-only movie data that the mock serves.
type catalog struct {
	movies []movies.Movie
	byID   map[int]movies.Movie
}

func newCatalog(ms []movies.Movie) (*catalog, error) {
	c := &catalog{
		byID: make(map[int]movies.Movie, len(ms)),
	}
	for _, m := range ms {
		if _, ok := c.byID[m.ID]; ok {
			return nil, fmt.Errorf("duplicate movie ID %d", m.ID)
		}
		c.byID[m.ID] = m
		c.movies = append(c.movies, m)
	}
	sort.Slice(c.movies, func(i, j int) bool {
		return c.movies[i].ID < c.movies[j].ID
	})
	return c, nil
}

// loadCatalog reads a JSON array of movies. Legacy genre, people and poster formats are accepted.
func loadCatalog(fs afero.Fs, filePath string) (*catalog, error) {
	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("Couldn't read data file: %w", err)
	}
	var ms []movies.Movie
	if err = json.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("Couldn't decode data file: %w", err)
	}
	return newCatalog(ms)
}

// search returns all movies whose title contains the query, case-insensitively.
func (c *catalog) search(query string) []movies.Movie {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.movies
	}
	var result []movies.Movie
	for _, m := range c.movies {
		if strings.Contains(strings.ToLower(m.Title), query) {
			result = append(result, m)
		}
	}
	return result
}

func (c *catalog) get(id int) (movies.Movie, bool) {
	m, ok := c.byID[id]
	return m, ok
}

func genres(labels ...string) movies.Genres {
	var result movies.Genres
	for _, label := range labels {
		result = append(result, movies.Genre{Name: strings.ToLower(label), Label: label})
	}
	return result
}

func people(names ...string) movies.People {
	var result movies.People
	for _, name := range names {
		result = append(result, movies.Person{FullName: name})
	}
	return result
}

var defaultMovies = []movies.Movie{
	{
		ID: 1, IMDbID: "tt0113277", Title: "Heat", Year: 1995, Rated: "R", Runtime: "170 min",
		Plot:   "A group of high-end professional thieves start to feel the heat from the LAPD when they unknowingly leave a clue at their latest heist.",
		Genres: genres("Action", "Crime", "Drama"), Directors: people("Michael Mann"),
		Actors: people("Al Pacino", "Robert De Niro", "Val Kilmer"), IMDbRating: "8.3", IMDbVotes: "700,000",
		BoxOfficeCollection: 187436818, Country: "United States", Language: "English", Type: "movie",
	},
	{
		ID: 2, IMDbID: "tt0122690", Title: "Ronin", Year: 1998, Rated: "R", Runtime: "122 min",
		Genres: genres("Action", "Thriller"), Directors: people("John Frankenheimer"),
		Actors: people("Robert De Niro", "Jean Reno"), IMDbRating: "7.2", Type: "movie",
	},
	{
		ID: 3, IMDbID: "tt0076759", Title: "Star Wars", Year: 1977, Rated: "PG", Runtime: "121 min",
		Genres: genres("Action", "Adventure", "Fantasy"), Directors: people("George Lucas"),
		Actors: people("Mark Hamill", "Harrison Ford", "Carrie Fisher"), IMDbRating: "8.6",
		Awards: []string{"Won 6 Oscars"}, BoxOfficeCollection: 460998507, Type: "movie",
	},
	{
		ID: 4, IMDbID: "tt0080684", Title: "Star Wars: The Empire Strikes Back", Year: 1980, Rated: "PG",
		Genres: genres("Action", "Adventure", "Fantasy"), Directors: people("Irvin Kershner"),
		Actors: people("Mark Hamill", "Harrison Ford"), IMDbRating: "8.7", Type: "movie",
	},
	{
		ID: 5, IMDbID: "tt0096895", Title: "Batman", Year: 1989, Rated: "PG-13",
		Genres: genres("Action", "Adventure"), Directors: people("Tim Burton"),
		Actors: people("Michael Keaton", "Jack Nicholson"), IMDbRating: "7.5", Type: "movie",
	},
	{
		ID: 6, IMDbID: "tt0103776", Title: "Batman Returns", Year: 1992, Rated: "PG-13",
		Genres: genres("Action", "Crime", "Fantasy"), Directors: people("Tim Burton"),
		Actors: people("Michael Keaton", "Danny DeVito", "Michelle Pfeiffer"), IMDbRating: "7.1", Type: "movie",
	},
	{
		ID: 7, IMDbID: "tt0468569", Title: "The Dark Knight", Year: 2008, Rated: "PG-13",
		Genres: genres("Action", "Crime", "Drama"), Directors: people("Christopher Nolan"),
		Actors: people("Christian Bale", "Heath Ledger"), IMDbRating: "9.0",
		Awards: []string{"Won 2 Oscars"}, BoxOfficeCollection: 534858444, Type: "movie",
	},
	{
		ID: 8, IMDbID: "tt1375666", Title: "Inception", Year: 2010, Rated: "PG-13",
		Genres: genres("Action", "Adventure", "Sci-Fi"), Directors: people("Christopher Nolan"),
		Actors: people("Leonardo DiCaprio", "Elliot Page"), IMDbRating: "8.8", Type: "movie",
	},
	{
		ID: 9, IMDbID: "tt0133093", Title: "The Matrix", Year: 1999, Rated: "R",
		Genres: genres("Action", "Sci-Fi"), Directors: people("Lana Wachowski", "Lilly Wachowski"),
		Actors: people("Keanu Reeves", "Laurence Fishburne"), IMDbRating: "8.7", Type: "movie",
	},
	{
		ID: 10, IMDbID: "tt0110912", Title: "Pulp Fiction", Year: 1994, Rated: "R",
		Genres: genres("Crime", "Drama"), Directors: people("Quentin Tarantino"),
		Actors: people("John Travolta", "Uma Thurman", "Samuel L. Jackson"), IMDbRating: "8.9", Type: "movie",
	},
	{
		ID: 11, IMDbID: "tt0083658", Title: "Blade Runner", Year: 1982, Rated: "R",
		Genres: genres("Action", "Drama", "Sci-Fi"), Directors: people("Ridley Scott"),
		Actors: people("Harrison Ford", "Rutger Hauer"), IMDbRating: "8.1", Type: "movie",
	},
	{
		ID: 12, IMDbID: "tt0102926", Title: "The Silence of the Lambs", Year: 1991, Rated: "R",
		Genres: genres("Crime", "Drama", "Thriller"), Directors: people("Jonathan Demme"),
		Actors: people("Jodie Foster", "Anthony Hopkins"), IMDbRating: "8.6", Type: "movie",
	},
}

package movies

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Genre is a movie genre, for example {Name: "sci-fi", Label: "Sci-Fi"}.
type Genre struct {
	// Internal name
	Name string `json:"name"`
	// Display label
	Label string `json:"label"`
}

// Genres is a list of genres.
// Besides the current structured format it can be decoded from the legacy formats, a comma-separated string or a list of strings.
type Genres []Genre

func (g *Genres) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.Null:
		return nil
	case res.Type == gjson.String:
		var genres Genres
		for _, label := range splitList(res.String()) {
			genres = append(genres, genreFromLabel(label))
		}
		*g = genres
		return nil
	case res.IsArray():
		genres := Genres{}
		for _, elem := range res.Array() {
			switch {
			case elem.Type == gjson.String:
				if label := strings.TrimSpace(elem.String()); label != "" {
					genres = append(genres, genreFromLabel(label))
				}
			case elem.IsObject():
				genre := Genre{
					Name:  elem.Get("name").String(),
					Label: elem.Get("label").String(),
				}
				if genre.Label == "" {
					genre.Label = genre.Name
				} else if genre.Name == "" {
					genre.Name = genreFromLabel(genre.Label).Name
				}
				genres = append(genres, genre)
			default:
				return fmt.Errorf("Couldn't decode genre: unexpected JSON value %v", elem.Raw)
			}
		}
		*g = genres
		return nil
	}
	return fmt.Errorf("Couldn't decode genres: unexpected JSON value %v", res.Raw)
}

func genreFromLabel(label string) Genre {
	return Genre{
		Name:  strings.ReplaceAll(strings.ToLower(label), " ", "-"),
		Label: label,
	}
}

// Labels returns the display labels of all genres.
func (g Genres) Labels() []string {
	labels := make([]string, 0, len(g))
	for _, genre := range g {
		labels = append(labels, genre.Label)
	}
	return labels
}

type Person struct {
	FullName string `json:"full_name"`
}

// People is a list of directors, actors or producers.
// Like Genres it can be decoded from a comma-separated string or a list of strings.
type People []Person

func (p *People) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.Null:
		return nil
	case res.Type == gjson.String:
		var people People
		for _, name := range splitList(res.String()) {
			people = append(people, Person{FullName: name})
		}
		*p = people
		return nil
	case res.IsArray():
		people := People{}
		for _, elem := range res.Array() {
			switch {
			case elem.Type == gjson.String:
				if name := strings.TrimSpace(elem.String()); name != "" {
					people = append(people, Person{FullName: name})
				}
			case elem.IsObject():
				people = append(people, Person{FullName: elem.Get("full_name").String()})
			default:
				return fmt.Errorf("Couldn't decode person: unexpected JSON value %v", elem.Raw)
			}
		}
		*p = people
		return nil
	}
	return fmt.Errorf("Couldn't decode people: unexpected JSON value %v", res.Raw)
}

// String returns the comma-separated names, or "N/A" if there are none.
func (p People) String() string {
	if len(p) == 0 {
		return "N/A"
	}
	names := make([]string, 0, len(p))
	for _, person := range p {
		names = append(names, person.FullName)
	}
	return strings.Join(names, ", ")
}

// Responsive contains URLs of resized variants of an image.
type Responsive struct {
	Thumb  string `json:"thumb,omitempty"`
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

// Media is an uploaded image, for example a movie poster.
// All URLs are opaque.
type Media struct {
	ID         int        `json:"id"`
	URL        string     `json:"url"`
	FileName   string     `json:"file_name,omitempty"`
	Responsive Responsive `json:"responsive"`
	Size       int64      `json:"size,omitempty"`
	MimeType   string     `json:"mime_type,omitempty"`
}

// UnmarshalJSON decodes a media object, or a plain URL string (the legacy poster format).
func (m *Media) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.Null:
		return nil
	case res.Type == gjson.String:
		*m = Media{URL: res.String()}
		return nil
	case res.IsObject():
		// Avoid recursion
		type media Media
		var decoded media
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}
		*m = Media(decoded)
		return nil
	}
	return fmt.Errorf("Couldn't decode media: unexpected JSON value %v", res.Raw)
}

// ThumbnailURL returns the URL of the thumbnail variant, or an empty string if there is none.
func (m Media) ThumbnailURL() string {
	return m.Responsive.Thumb
}

// FullURL returns the URL to show once the image is fully loaded.
// Without a thumbnail the canonical URL is the only renderable image.
func (m Media) FullURL() string {
	if m.Responsive.Thumb == "" || m.Responsive.Large == "" {
		return m.URL
	}
	return m.Responsive.Large
}

type Movie struct {
	ID                  int      `json:"id"`
	IMDbID              string   `json:"imdb_id"`
	Title               string   `json:"title"`
	Year                int      `json:"year"`
	Rated               string   `json:"rated"`
	Released            string   `json:"released"`
	Runtime             string   `json:"runtime"`
	Plot                string   `json:"plot"`
	Language            string   `json:"language"`
	Country             string   `json:"country"`
	Awards              []string `json:"awards"`
	Metascore           string   `json:"metascore"`
	IMDbRating          string   `json:"imdb_rating"`
	IMDbVotes           string   `json:"imdb_votes"`
	Type                string   `json:"type"`
	DVD                 string   `json:"dvd"`
	BoxOfficeCollection float64  `json:"box_office_collection"`
	Production          string   `json:"production"`
	Website             string   `json:"website"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
	Genres              Genres   `json:"genres"`
	Directors           People   `json:"directors"`
	Actors              People   `json:"actors"`
	Producers           People   `json:"producers"`
	Poster              *Media   `json:"poster,omitempty"`
}

// HasPoster reports whether the movie has a poster with a URL.
func (m Movie) HasPoster() bool {
	return m.Poster != nil && m.Poster.URL != ""
}

type Links struct {
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

type Pagination struct {
	// Total number of items
	Total int `json:"total"`
	// Number of items in this page
	Count       int   `json:"count"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	Links       Links `json:"links"`
}

// PaginatedResponse is one page of items plus pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
	Message    string     `json:"message,omitempty"`
}

// The backend's pagination metadata has been sent under different keys over time.
var paginationKeys = []string{"pagination", "metadata", "meta"}

// UnmarshalJSON reads the pagination metadata from the first of "pagination", "metadata" and "meta" that exists.
// "last_page" is accepted as alias for "total_pages".
func (p *PaginatedResponse[T]) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Data    []T    `json:"data"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	var pagination Pagination
	for _, key := range paginationKeys {
		res := gjson.GetBytes(data, key)
		if !res.IsObject() {
			continue
		}
		if err := json.Unmarshal([]byte(res.Raw), &pagination); err != nil {
			return fmt.Errorf("Couldn't decode %v: %w", key, err)
		}
		if pagination.TotalPages == 0 {
			pagination.TotalPages = int(res.Get("last_page").Int())
		}
		break
	}

	*p = PaginatedResponse[T]{
		Data:       envelope.Data,
		Pagination: pagination,
		Message:    envelope.Message,
	}
	return nil
}

// Validate checks that the current page is within the page range and that the page isn't larger than the page size.
func (p PaginatedResponse[T]) Validate() error {
	pg := p.Pagination
	if pg.TotalPages >= 1 && (pg.CurrentPage < 1 || pg.CurrentPage > pg.TotalPages) {
		return fmt.Errorf("current page %d is out of range [1, %d]", pg.CurrentPage, pg.TotalPages)
	}
	if pg.PerPage > 0 && len(p.Data) > pg.PerPage {
		return fmt.Errorf("page contains %d items, but page size is %d", len(p.Data), pg.PerPage)
	}
	return nil
}

func splitList(s string) []string {
	var result []string
	for _, elem := range strings.Split(s, ",") {
		if elem = strings.TrimSpace(elem); elem != "" {
			result = append(result, elem)
		}
	}
	return result
}

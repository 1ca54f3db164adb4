package movies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/api"
)

const moviesResource = "movies"

// Getter is the part of the API client that the Service uses.
type Getter interface {
	Get(ctx context.Context, resource string, params api.Params, opts ...api.RequestOption) (*api.Response, error)
}

var _ Getter = (*api.Client)(nil)

// Service fetches movies from the backend.
type Service struct {
	client Getter
	logger *zap.Logger
}

func NewService(client Getter, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// FetchMovies fetches one page of movies.
// The query is only sent if it's not empty.
// Errors from the API client are returned as they are (*api.ResponseError).
func (s *Service) FetchMovies(ctx context.Context, page int, query string) (PaginatedResponse[Movie], error) {
	params := api.Params{}.Add("page", page)
	if query != "" {
		params = params.Add("q", query)
	}

	res, err := s.client.Get(ctx, moviesResource, params)
	if err != nil {
		return PaginatedResponse[Movie]{}, err
	}

	var result PaginatedResponse[Movie]
	if err = res.Decode(&result); err != nil {
		return PaginatedResponse[Movie]{}, err
	}
	if err = result.Validate(); err != nil {
		s.logger.Warn("Received inconsistent pagination", zap.Error(err), zap.Int("page", page), zap.String("query", query))
	}
	return result, nil
}

// GetMovie fetches a single movie.
// The backend wraps the movie in a "data" object, which is required.
func (s *Service) GetMovie(ctx context.Context, id int) (Movie, error) {
	res, err := s.client.Get(ctx, moviesResource+"/"+strconv.Itoa(id), nil)
	if err != nil {
		return Movie{}, err
	}

	data := gjson.GetBytes(res.Body, "data")
	if !data.Exists() {
		return Movie{}, errors.New("Couldn't find \"data\" in movie response")
	}
	var movie Movie
	if err = json.Unmarshal([]byte(data.Raw), &movie); err != nil {
		return Movie{}, fmt.Errorf("Couldn't decode movie: %w", err)
	}
	return movie, nil
}

package state

import "context"

// Action is an operation on the Store. See Store.Dispatch.
type Action interface {
	apply(ctx context.Context, s *Store) error
}

type SetActivePage struct {
	Page int
}

func (a SetActivePage) apply(_ context.Context, s *Store) error {
	s.SetActivePage(a.Page)
	return nil
}

type SetSearchQuery struct {
	Query string
}

func (a SetSearchQuery) apply(_ context.Context, s *Store) error {
	s.SetSearchQuery(a.Query)
	return nil
}

// FetchMovies fetches a page of movies.
// Query is optional, nil means the store's current search query is used.
type FetchMovies struct {
	Page  int
	Query *string
}

func (a FetchMovies) apply(ctx context.Context, s *Store) error {
	if a.Query != nil {
		return s.FetchMovies(ctx, a.Page, *a.Query)
	}
	return s.FetchMovies(ctx, a.Page)
}

type FetchMovie struct {
	ID int
}

func (a FetchMovie) apply(ctx context.Context, s *Store) error {
	return s.FetchMovie(ctx, a.ID)
}

// Dispatch applies the action to the store.
// Only fetch actions can return an error.
func (s *Store) Dispatch(ctx context.Context, action Action) error {
	return action.apply(ctx, s)
}

package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/movies"
)

// State is a snapshot of the application state.
// Snapshots share the movie data with the store, so they must be treated as read-only.
type State struct {
	Movies     []movies.Movie
	ActivePage int
	TotalPages int
	Loading    bool
	// Used by FetchMovies when no query is passed
	SearchQuery   string
	SelectedMovie *movies.Movie
}

// MovieService is the interface that the Store uses for fetching movies.
// *movies.Service implements it.
type MovieService interface {
	FetchMovies(ctx context.Context, page int, query string) (movies.PaginatedResponse[movies.Movie], error)
	GetMovie(ctx context.Context, id int) (movies.Movie, error)
}

var _ MovieService = (*movies.Service)(nil)

// Listener is called with the new state after each update.
// It must not modify the Store synchronously.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

type Option func(*Store)

// WithLastResolvedWins makes the Store apply fetch results in the order they arrive,
// instead of discarding results of fetches that were superseded by a newer fetch of the same kind.
func WithLastResolvedWins() Option {
	return func(s *Store) {
		s.lastResolvedWins = true
	}
}

// Store holds the application state.
// It's safe for concurrent use.
type Store struct {
	service          MovieService
	logger           *zap.Logger
	lastResolvedWins bool

	// Serializes updates including their notifications, so listeners see updates in order
	updateLock *sync.Mutex
	lock       *sync.RWMutex
	state      State
	// Sequence numbers of the latest issued fetches
	listSeq   uint64
	detailSeq uint64

	subscriptions []subscription
	nextSubID     int
}

// New creates a new Store with the initial state: no movies, page 1 of 1, not loading, no search query and no selected movie.
func New(service MovieService, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		service:    service,
		logger:     logger,
		updateLock: &sync.Mutex{},
		lock:       &sync.RWMutex{},
		state: State{
			Movies:     []movies.Movie{},
			ActivePage: 1,
			TotalPages: 1,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

// Subscribe registers a listener and returns a function that unregisters it.
func (s *Store) Subscribe(fn Listener) func() {
	s.lock.Lock()
	defer s.lock.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscriptions = append(s.subscriptions, subscription{id: id, fn: fn})
	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		for i, sub := range s.subscriptions {
			if sub.id == id {
				s.subscriptions = append(s.subscriptions[:i:i], s.subscriptions[i+1:]...)
				return
			}
		}
	}
}

// update applies fn to the state and notifies all listeners once, unless fn returns false.
func (s *Store) update(fn func(*State) bool) {
	s.updateLock.Lock()
	defer s.updateLock.Unlock()

	s.lock.Lock()
	if !fn(&s.state) {
		s.lock.Unlock()
		return
	}
	snapshot := s.state
	subs := s.subscriptions
	s.lock.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot)
	}
}

// SetActivePage sets the active page. It doesn't fetch anything.
// Pages below 1 are ignored.
func (s *Store) SetActivePage(page int) {
	if page < 1 {
		s.logger.Warn("Ignoring invalid page", zap.Int("page", page))
		return
	}
	s.update(func(st *State) bool {
		st.ActivePage = page
		return true
	})
}

// SetSearchQuery sets the search query and resets the active page to 1. It doesn't fetch anything.
func (s *Store) SetSearchQuery(query string) {
	s.update(func(st *State) bool {
		st.SearchQuery = query
		st.ActivePage = 1
		return true
	})
}

// FetchMovies fetches a page of movies with the given query, or with the current search query if none is given.
// On success the movies and total pages are replaced.
// On failure only the loading flag is reset, and the error is logged and returned.
// Results of a fetch that was superseded by a newer FetchMovies call are discarded.
func (s *Store) FetchMovies(ctx context.Context, page int, query ...string) error {
	var seq uint64
	var effectiveQuery string
	s.update(func(st *State) bool {
		s.listSeq++
		seq = s.listSeq
		effectiveQuery = st.SearchQuery
		if len(query) > 0 {
			effectiveQuery = query[0]
		}
		st.Loading = true
		return true
	})

	zapFieldPage := zap.Int("page", page)
	zapFieldQuery := zap.String("query", effectiveQuery)

	res, err := s.service.FetchMovies(ctx, page, effectiveQuery)
	if err != nil {
		s.logger.Error("Couldn't fetch movies", zap.Error(err), zapFieldPage, zapFieldQuery)
	}
	s.update(func(st *State) bool {
		if !s.lastResolvedWins && seq != s.listSeq {
			s.logger.Debug("Discarding result of superseded movies fetch", zapFieldPage, zapFieldQuery)
			return false
		}
		st.Loading = false
		if err == nil {
			st.Movies = res.Data
			if st.Movies == nil {
				st.Movies = []movies.Movie{}
			}
			st.TotalPages = res.Pagination.TotalPages
			if st.TotalPages < 1 {
				st.TotalPages = 1
			}
		}
		return true
	})
	return err
}

// FetchMovie fetches a single movie and makes it the selected movie.
// The previously selected movie is cleared when the fetch starts, and stays cleared on failure.
// Results of a fetch that was superseded by a newer FetchMovie call are discarded.
func (s *Store) FetchMovie(ctx context.Context, id int) error {
	var seq uint64
	s.update(func(st *State) bool {
		s.detailSeq++
		seq = s.detailSeq
		st.Loading = true
		st.SelectedMovie = nil
		return true
	})

	zapFieldID := zap.Int("id", id)

	movie, err := s.service.GetMovie(ctx, id)
	if err != nil {
		s.logger.Error("Couldn't fetch movie", zap.Error(err), zapFieldID)
	}
	s.update(func(st *State) bool {
		if !s.lastResolvedWins && seq != s.detailSeq {
			s.logger.Debug("Discarding result of superseded movie fetch", zapFieldID)
			return false
		}
		st.Loading = false
		if err == nil {
			st.SelectedMovie = &movie
		}
		return true
	})
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/doingodswork/deflix-movies/pkg/api"
	"github.com/doingodswork/deflix-movies/pkg/favorites"
	"github.com/doingodswork/deflix-movies/pkg/movies"
	"github.com/doingodswork/deflix-movies/pkg/state"
)

const usage = `Commands:
  list [page]              List movies
  search <query> [page]    Search movies
  show <id>                Show a movie's details
  favorite <id>            Add a movie to the favorites or remove it
  favorites                List the favorite movies`

var errUsage = errors.New("invalid command")

// app wires all components together.
type app struct {
	service   *movies.Service
	store     *state.Store
	favorites *favorites.Manager
	logger    *zap.Logger
	closers   []func() error
}

func newApp(ctx context.Context, cfg config, fs afero.Fs, logger *zap.Logger) (*app, error) {
	a := &app{
		logger: logger,
	}

	kvStore, closeStorage, err := openStorage(cfg, fs, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStorage)

	cache, closeCache, err := openResponseCache(ctx, cfg, fs, logger)
	if err != nil {
		return nil, multierr.Append(err, a.close())
	}
	a.closers = append(a.closers, closeCache)

	clientOpts := api.NewClientOpts(cfg.BaseURL, cfg.Timeout, cfg.ExtraHeaders)
	clientOpts.SocksProxyAddr = cfg.SocksProxyAddr
	if cfg.APIToken != "" {
		clientOpts.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken})
	}
	client, err := api.NewClient(clientOpts, cache, logger)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("Couldn't create API client: %w", err), a.close())
	}

	var stateOpts []state.Option
	if cfg.LastResolvedWins {
		stateOpts = append(stateOpts, state.WithLastResolvedWins())
	}
	a.service = movies.NewService(client, logger)
	a.store = state.New(a.service, logger, stateOpts...)
	a.favorites = favorites.NewManager(kvStore, logger)

	a.store.Subscribe(func(st state.State) {
		logger.Debug("State changed",
			zap.Int("activePage", st.ActivePage),
			zap.Int("totalPages", st.TotalPages),
			zap.Bool("loading", st.Loading),
			zap.String("searchQuery", st.SearchQuery),
			zap.Int("movies", len(st.Movies)))
	})

	return a, nil
}

// close closes all resources in reverse order of their creation.
func (a *app) close() error {
	var result error
	for i := len(a.closers) - 1; i >= 0; i-- {
		result = multierr.Append(result, a.closers[i]())
	}
	a.closers = nil
	return result
}

func (a *app) run(ctx context.Context, args []string, w io.Writer) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch cmd, args := args[0], args[1:]; cmd {
	case "list":
		page, err := optionalInt(args, 0, 1)
		if err != nil {
			return err
		}
		return a.list(ctx, w, page)
	case "search":
		if len(args) == 0 || args[0] == "" {
			return fmt.Errorf("%w: search requires a query", errUsage)
		}
		page, err := optionalInt(args, 1, 1)
		if err != nil {
			return err
		}
		if err = a.store.Dispatch(ctx, state.SetSearchQuery{Query: args[0]}); err != nil {
			return err
		}
		return a.list(ctx, w, page)
	case "show":
		id, err := requiredInt(args, "show requires a movie ID")
		if err != nil {
			return err
		}
		return a.show(ctx, w, id)
	case "favorite":
		id, err := requiredInt(args, "favorite requires a movie ID")
		if err != nil {
			return err
		}
		if a.favorites.For(id).Toggle() {
			fmt.Fprintf(w, "Added movie %d to the favorites\n", id)
		} else {
			fmt.Fprintf(w, "Removed movie %d from the favorites\n", id)
		}
		return nil
	case "favorites":
		return a.listFavorites(ctx, w)
	case "help":
		fmt.Fprintln(w, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) list(ctx context.Context, w io.Writer, page int) error {
	if err := a.store.Dispatch(ctx, state.SetActivePage{Page: page}); err != nil {
		return err
	}
	if err := a.store.Dispatch(ctx, state.FetchMovies{Page: page}); err != nil {
		return fmt.Errorf("Couldn't fetch movies: %w", err)
	}
	return renderList(w, a.store.State(), a.favorites.IsFavorite)
}

func (a *app) show(ctx context.Context, w io.Writer, id int) error {
	if err := a.store.Dispatch(ctx, state.FetchMovie{ID: id}); err != nil {
		if api.StatusCode(err) == http.StatusNotFound {
			return fmt.Errorf("movie %d not found", id)
		}
		return fmt.Errorf("Couldn't fetch movie: %w", err)
	}
	st := a.store.State()
	if st.SelectedMovie == nil {
		return fmt.Errorf("movie %d not found", id)
	}
	return renderMovie(w, *st.SelectedMovie, a.favorites.For(id).IsFavorite())
}

func (a *app) listFavorites(ctx context.Context, w io.Writer) error {
	ids := a.favorites.IDs()
	if len(ids) == 0 {
		fmt.Fprintln(w, "No favorites yet")
		return nil
	}
	for _, id := range ids {
		title := notAvailable
		movie, err := a.service.GetMovie(ctx, id)
		if err != nil {
			a.logger.Warn("Couldn't fetch favorite movie", zap.Error(err), zap.Int("id", id))
		} else {
			title = movie.Title
		}
		fmt.Fprintf(w, "%d\t%s\n", id, title)
	}
	return nil
}

func optionalInt(args []string, i, defaultValue int) (int, error) {
	if len(args) <= i {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %q isn't a number", errUsage, args[i])
	}
	return n, nil
}

func requiredInt(args []string, msg string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s", errUsage, msg)
	}
	return optionalInt(args, 0, 0)
}

package favorites

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/doingodswork/deflix-movies/pkg/storage"
)

// Key is the storage key of the favorites list.
const Key = "favorites"

// Manager manages the persisted list of favorite movie IDs.
// The list is read from the store on every call, so changes by other Manager instances on the same store are visible.
type Manager struct {
	store  *storage.Store
	lock   *sync.Mutex
	logger *zap.Logger
}

// NewManager creates a new Manager.
// Favorites that were persisted in a legacy format (IDs as strings, or objects with an "id" field) are migrated.
func NewManager(store *storage.Store, logger *zap.Logger) *Manager {
	m := &Manager{
		store:  store,
		lock:   &sync.Mutex{},
		logger: logger,
	}
	m.migrate()
	return m
}

// IDs returns the favorite movie IDs in the order they were added.
func (m *Manager) IDs() []int {
	ids := storage.Get(m.store, Key, []int{})
	// A persisted null
	if ids == nil {
		return []int{}
	}
	return ids
}

func (m *Manager) IsFavorite(id int) bool {
	for _, fav := range m.IDs() {
		if fav == id {
			return true
		}
	}
	return false
}

// Toggle removes the ID from the favorites if it's in there and adds it otherwise.
// It returns whether the movie is a favorite afterwards.
// The order of the other IDs is kept.
func (m *Manager) Toggle(id int) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	ids := m.IDs()
	remaining := make([]int, 0, len(ids))
	for _, fav := range ids {
		if fav != id {
			remaining = append(remaining, fav)
		}
	}

	if len(remaining) < len(ids) {
		m.store.Set(Key, remaining)
		m.logger.Debug("Removed favorite", zap.Int("id", id))
		return false
	}
	m.store.Set(Key, append(ids, id))
	m.logger.Debug("Added favorite", zap.Int("id", id))
	return true
}

// For returns a handle for a single movie.
func (m *Manager) For(id int) *Favorite {
	return &Favorite{
		manager:    m,
		id:         id,
		isFavorite: m.IsFavorite(id),
	}
}

func (m *Manager) migrate() {
	raw := storage.Get[json.RawMessage](m.store, Key, nil)
	if raw == nil {
		return
	}
	var current []int
	if err := json.Unmarshal(raw, &current); err == nil {
		if deduped := dedupe(current); len(deduped) != len(current) {
			m.store.Set(Key, deduped)
			m.logger.Info("Removed duplicate favorites", zap.Int("before", len(current)), zap.Int("after", len(deduped)))
		}
		return
	}

	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		m.logger.Warn("Couldn't migrate favorites, the persisted value isn't a list", zap.String("value", res.Raw))
		return
	}
	var ids []int
	for _, elem := range res.Array() {
		idRes := elem
		if elem.IsObject() {
			idRes = elem.Get("id")
		}
		id, err := strconv.Atoi(strings.TrimSpace(idRes.String()))
		if err != nil {
			m.logger.Warn("Couldn't migrate favorite, dropping it", zap.Error(err), zap.String("value", elem.Raw))
			continue
		}
		ids = append(ids, id)
	}
	ids = dedupe(ids)
	m.store.Set(Key, ids)
	m.logger.Info("Migrated favorites", zap.Int("count", len(ids)))
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	result := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// Favorite is the favorite state of a single movie, as seen by one consumer.
// The local view is read once when the handle is created and updated by Toggle.
// Changes by other handles aren't reflected until a new handle is created.
type Favorite struct {
	manager    *Manager
	id         int
	isFavorite bool
}

func (f *Favorite) ID() int {
	return f.id
}

func (f *Favorite) IsFavorite() bool {
	return f.isFavorite
}

// Toggle toggles the movie's membership in the persisted favorites and updates the local view.
func (f *Favorite) Toggle() bool {
	f.isFavorite = f.manager.Toggle(f.id)
	return f.isFavorite
}

package checkers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/park285/cheese-checkers/internal/domain"
)

// memrepo keeps games and profiles in process memory. Used when no database is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	gamesByID      map[int64]*domain.CheckersGame
	gamesByPlayer  map[string][]*domain.CheckersGame // playerHash -> games, oldest first
	gamesBySession map[string]*domain.CheckersGame   // sessionUUID|playerHash -> game

	profiles map[string]*domain.CheckersProfile // playerHash|roomHash -> profile
}

func NewMemoryRepository() Repository {
	return &memrepo{
		gamesByID:      make(map[int64]*domain.CheckersGame),
		gamesByPlayer:  make(map[string][]*domain.CheckersGame),
		gamesBySession: make(map[string]*domain.CheckersGame),
		profiles:       make(map[string]*domain.CheckersProfile),
	}
}

func (m *memrepo) InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error) {
	if game == nil {
		return 0, ErrDuplicateGame
	}
	key := joinKey(game.SessionUUID, game.PlayerHash)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.gamesBySession[key]; exists {
		return 0, ErrDuplicateGame
	}
	m.nextID++
	stored := *game
	stored.ID = m.nextID

	m.gamesByID[stored.ID] = &stored
	m.gamesBySession[key] = &stored
	m.gamesByPlayer[game.PlayerHash] = append(m.gamesByPlayer[game.PlayerHash], &stored)
	return stored.ID, nil
}

func (m *memrepo) GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.gamesByPlayer[playerHash]
	items := make([]*domain.CheckersGame, 0, len(list))
	for _, g := range list {
		c := *g
		items = append(items, &c)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gamesByID[id]
	if !ok || g.PlayerHash != playerHash {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (m *memrepo) GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gamesBySession[joinKey(sessionUUID, playerHash)]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (m *memrepo) GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[joinKey(playerHash, roomHash)]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *memrepo) UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error {
	if profile == nil {
		return nil
	}
	c := *profile
	m.mu.Lock()
	m.profiles[joinKey(profile.PlayerHash, profile.RoomHash)] = &c
	m.mu.Unlock()
	return nil
}

func joinKey(a, b string) string {
	return strings.TrimSpace(a) + "|" + strings.TrimSpace(b)
}

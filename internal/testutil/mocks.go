package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
)

// MockDatastore is a testify mock over the Datastore interface
type MockDatastore struct {
	mock.Mock
}

func (m *MockDatastore) GetPlayerRating(ctx context.Context, playerID string, gameID string) (model.PlayerRating, error) {
	args := m.Called(ctx, playerID, gameID)
	return args.Get(0).(model.PlayerRating), args.Error(1)
}

func (m *MockDatastore) SavePlayerRating(ctx context.Context, rating model.PlayerRating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockDatastore) TopPlayerRatings(ctx context.Context, gameID string, limit int) ([]model.PlayerRating, error) {
	args := m.Called(ctx, gameID, limit)
	return args.Get(0).([]model.PlayerRating), args.Error(1)
}

func (m *MockDatastore) CreateGameSession(ctx context.Context, session model.GameSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// FakeNotifier records broadcast calls for assertions
type FakeNotifier struct {
	sync.Mutex

	MatchesFormed []FormedMatch
	MatchResults  []ReportedResult
}

type FormedMatch struct {
	SessionID string
	PlayerIDs []string
}

type ReportedResult struct {
	GameID  string
	Ratings map[string]int
}

func (f *FakeNotifier) NotifyMatchFormed(sessionID string, playerIDs []string) {
	f.Lock()
	defer f.Unlock()
	f.MatchesFormed = append(f.MatchesFormed, FormedMatch{SessionID: sessionID, PlayerIDs: playerIDs})
}

func (f *FakeNotifier) NotifyMatchResult(gameID string, ratings map[string]int) {
	f.Lock()
	defer f.Unlock()
	f.MatchResults = append(f.MatchResults, ReportedResult{GameID: gameID, Ratings: ratings})
}

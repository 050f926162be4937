package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/bingoo-app/tournament-engine/repositories"
)

// In-memory fakes implementing the repository interfaces. They mirror
// the conditional-update semantics of the postgres implementations so
// the idempotency paths behave the same way under test.

// fakeTransactor serializes transactions and rolls the mutable stores
// (participants, users, payouts) back when fn fails, mirroring what
// BeginTx plus the tournament row lock give the real services.
type fakeTransactor struct {
	mu           sync.Mutex
	beginErr     error
	participants *fakeParticipantRepo
	users        *fakeUserRepo
	payouts      *fakePayoutRepo
}

type txSnapshot struct {
	participants map[string]*models.Participant
	users        map[string]*models.User
	payouts      []*models.PayoutRecord
}

func (f *fakeTransactor) snapshot() txSnapshot {
	snap := txSnapshot{
		participants: make(map[string]*models.Participant, len(f.participants.participants)),
		users:        make(map[string]*models.User, len(f.users.users)),
		payouts:      make([]*models.PayoutRecord, 0, len(f.payouts.records)),
	}
	f.participants.mu.Lock()
	for id, p := range f.participants.participants {
		cp := *p
		snap.participants[id] = &cp
	}
	f.participants.mu.Unlock()
	f.users.mu.Lock()
	for id, u := range f.users.users {
		cp := *u
		snap.users[id] = &cp
	}
	f.users.mu.Unlock()
	f.payouts.mu.Lock()
	for _, rec := range f.payouts.records {
		cp := *rec
		snap.payouts = append(snap.payouts, &cp)
	}
	f.payouts.mu.Unlock()
	return snap
}

func (f *fakeTransactor) restore(snap txSnapshot) {
	f.participants.mu.Lock()
	f.participants.participants = snap.participants
	f.participants.mu.Unlock()
	f.users.mu.Lock()
	f.users.users = snap.users
	f.users.mu.Unlock()
	f.payouts.mu.Lock()
	f.payouts.records = snap.payouts
	f.payouts.mu.Unlock()
}

func (f *fakeTransactor) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot()
	if err := fn(nil); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (f *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Tournament
	for _, t := range f.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeTournamentRepo) TransitionStatus(_ context.Context, _ repositories.SQLExecutor, id string, from, to models.TournamentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (f *fakeTournamentRepo) MarkPayoutCompleted(_ context.Context, _ repositories.SQLExecutor, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok || t.PayoutCompletedAt != nil {
		return false, nil
	}
	t.PayoutCompletedAt = &at
	return true, nil
}

func (f *fakeTournamentRepo) ListDueForStart(_ context.Context, now time.Time) ([]*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Tournament
	for _, t := range f.tournaments {
		if t.Status == models.StatusRegistering && !t.StartTime.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTournamentRepo) ListDueForCompletion(_ context.Context, now time.Time) ([]*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Tournament
	for _, t := range f.tournaments {
		if t.Status == models.StatusInProgress && !t.EndTime.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTournamentRepo) ListUnsettled(_ context.Context) ([]*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Tournament
	for _, t := range f.tournaments {
		if t.Status.Terminal() && t.PayoutCompletedAt == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	adjustErr map[string]error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     make(map[string]*models.User),
		adjustErr: make(map[string]error),
	}
}

func (f *fakeUserRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) AdjustPoints(_ context.Context, _ repositories.SQLExecutor, id string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.adjustErr[id]; ok {
		return err
	}
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	if u.Points+delta < 0 {
		return repositories.ErrUserInsufficientPoints
	}
	u.Points += delta
	return nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	tournaments  *fakeTournamentRepo
	users        *fakeUserRepo
	participants map[string]*models.Participant
	joinClock    time.Time
}

func newFakeParticipantRepo(tournaments *fakeTournamentRepo, users *fakeUserRepo) *fakeParticipantRepo {
	return &fakeParticipantRepo{
		tournaments:  tournaments,
		users:        users,
		participants: make(map[string]*models.Participant),
		joinClock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeParticipantRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.participants {
		if existing.TournamentID == p.TournamentID && existing.UserID == p.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	f.users.mu.Lock()
	_, userExists := f.users.users[p.UserID]
	f.users.mu.Unlock()
	if !userExists {
		return repositories.ErrParticipantUserInvalid
	}
	f.joinClock = f.joinClock.Add(time.Second)
	p.JoinedAt = f.joinClock
	cp := *p
	f.participants[p.ID] = &cp
	return nil
}

func (f *fakeParticipantRepo) FindByTournamentAndUser(_ context.Context, tournamentID, userID string) (*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants {
		if p.TournamentID == tournamentID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, p := range f.participants {
		if p.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeParticipantRepo) AddScore(ctx context.Context, tournamentID, userID string, delta int64) (int64, error) {
	t, err := f.tournaments.GetByID(ctx, tournamentID)
	if err != nil || t.Status != models.StatusInProgress {
		// Mirrors the zero-rows outcome of the conditional UPDATE.
		return 0, repositories.ErrParticipantNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants {
		if p.TournamentID == tournamentID && p.UserID == userID {
			p.Score += delta
			return p.Score, nil
		}
	}
	return 0, repositories.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) ListRanked(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Participant
	for _, p := range f.participants {
		if p.TournamentID != tournamentID {
			continue
		}
		cp := *p
		f.users.mu.Lock()
		if u, ok := f.users.users[p.UserID]; ok {
			cp.User = u
		}
		f.users.mu.Unlock()
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type fakePayoutRepo struct {
	mu      sync.Mutex
	records []*models.PayoutRecord
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{}
}

func (f *fakePayoutRepo) Insert(_ context.Context, _ repositories.SQLExecutor, rec *models.PayoutRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.TournamentID == rec.TournamentID && existing.ParticipantID == rec.ParticipantID {
			return false, nil
		}
	}
	rec.CreatedAt = time.Now()
	cp := *rec
	f.records = append(f.records, &cp)
	return true, nil
}

func (f *fakePayoutRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.PayoutRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PayoutRecord
	for _, rec := range f.records {
		if rec.TournamentID == tournamentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type statusEvent struct {
	tournamentID string
	status       models.TournamentStatus
}

type scoreEvent struct {
	tournamentID string
	userID       string
	score        int64
}

type fakeNotifier struct {
	mu           sync.Mutex
	statusEvents []statusEvent
	scoreEvents  []scoreEvent
}

func (f *fakeNotifier) NotifyScoreUpdated(tournamentID, userID string, score int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreEvents = append(f.scoreEvents, scoreEvent{tournamentID, userID, score})
}

func (f *fakeNotifier) NotifyStatusChanged(tournamentID string, status models.TournamentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusEvents = append(f.statusEvents, statusEvent{tournamentID, status})
}

// fixture wires the services against the in-memory fakes.
type fixture struct {
	tournaments  *fakeTournamentRepo
	participants *fakeParticipantRepo
	users        *fakeUserRepo
	payouts      *fakePayoutRepo
	notifier     *fakeNotifier

	entries     *EntryService
	scores      *ScoreService
	leaderboard *LeaderboardService
	rewards     *RewardService
	sweeper     *SweeperService
	admin       *TournamentService
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tournaments := newFakeTournamentRepo()
	users := newFakeUserRepo()
	participants := newFakeParticipantRepo(tournaments, users)
	payouts := newFakePayoutRepo()
	notifier := &fakeNotifier{}
	tx := &fakeTransactor{
		participants: participants,
		users:        users,
		payouts:      payouts,
	}

	rewards := NewRewardService(tx, tournaments, participants, users, payouts, logger)

	return &fixture{
		tournaments:  tournaments,
		participants: participants,
		users:        users,
		payouts:      payouts,
		notifier:     notifier,
		entries:      NewEntryService(tx, tournaments, participants, users, logger),
		scores:       NewScoreService(tournaments, participants, notifier, logger),
		leaderboard:  NewLeaderboardService(tournaments, participants),
		rewards:      rewards,
		sweeper:      NewSweeperService(tournaments, participants, rewards, notifier, logger),
		admin:        NewTournamentService(tournaments, rewards, notifier, logger),
	}
}

func (f *fixture) addUser(id string, points int64) {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	f.users.users[id] = &models.User{ID: id, DisplayName: "player " + id, Points: points}
}

func (f *fixture) addTournament(t *models.Tournament) {
	f.tournaments.mu.Lock()
	defer f.tournaments.mu.Unlock()
	f.tournaments.tournaments[t.ID] = t
}

func (f *fixture) userPoints(id string) int64 {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	return f.users.users[id].Points
}

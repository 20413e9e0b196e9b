package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
	"github.com/marcelovidal/padel-v1-sub001/storage"
)

// In-memory репозитории для тестов сервисов. Условные записи воспроизводят
// семантику условных UPDATE и уникальных ограничений Postgres: мьютекс играет
// роль атомарности одного оператора.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) addUser(role models.UserRole) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{
		ID:    f.nextID,
		Email: "user" + strings.Repeat("x", f.nextID) + "@test.local",
		Role:  role,
	}
	f.nextID++
	f.users[user.ID] = user
	return user
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[int]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (f *fakePlayerRepo) hasProfileLocked(userID int) bool {
	for _, p := range f.players {
		if p.UserID != nil && *p.UserID == userID {
			return true
		}
	}
	return false
}

func (f *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if player.UserID != nil && f.hasProfileLocked(*player.UserID) {
		return repositories.ErrPlayerUserConflict
	}
	player.ID = f.nextID
	f.nextID++
	copied := *player
	f.players[player.ID] = &copied
	return nil
}

func (f *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (f *fakePlayerRepo) GetByUserID(_ context.Context, userID int) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, player := range f.players {
		if player.UserID != nil && *player.UserID == userID {
			copied := *player
			return &copied, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (f *fakePlayerRepo) List(_ context.Context) ([]*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Player, 0, len(f.players))
	for _, player := range f.players {
		copied := *player
		out = append(out, &copied)
	}
	return out, nil
}

// Claim повторяет условный UPDATE: цель свободна и у заявителя нет профиля,
// иначе ноль затронутых строк.
func (f *fakePlayerRepo) Claim(_ context.Context, playerID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if player.UserID != nil || f.hasProfileLocked(userID) {
		return repositories.ErrPlayerClaimConflict
	}
	uid := userID
	player.UserID = &uid
	return nil
}

func (f *fakePlayerRepo) UpdateAvatarKey(_ context.Context, id int, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.AvatarKey = &key
	return nil
}

func (f *fakePlayerRepo) Count(_ context.Context, onlyUnclaimed bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, player := range f.players {
		if onlyUnclaimed && player.UserID != nil {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakePlayerRepo) addPlayer(userID *int, createdBy int) *models.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	player := &models.Player{ID: f.nextID, UserID: userID, FirstName: "Test", CreatedBy: createdBy}
	f.nextID++
	f.players[player.ID] = player
	return player
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (f *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	match.ID = f.nextID
	f.nextID++
	copied := *match
	f.matches[match.ID] = &copied
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (f *fakeMatchRepo) List(_ context.Context) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Match, 0, len(f.matches))
	for _, match := range f.matches {
		copied := *match
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMatchRepo) Update(_ context.Context, match *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.matches[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if stored.Status != models.MatchStatusScheduled {
		return repositories.ErrMatchStatusConflict
	}
	copied := *match
	f.matches[match.ID] = &copied
	return nil
}

func (f *fakeMatchRepo) UpdateStatus(_ context.Context, id int, from, to models.MatchStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	match, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if match.Status != from {
		return repositories.ErrMatchStatusConflict
	}
	match.Status = to
	return nil
}

func (f *fakeMatchRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matches), nil
}

func (f *fakeMatchRepo) addMatch(match *models.Match) *models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	match.ID = f.nextID
	f.nextID++
	f.matches[match.ID] = match
	return match
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[int]*models.MatchResult
	nextID  int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[int]*models.MatchResult), nextID: 1}
}

// Create повторяет уникальный индекс по match_id: вторая запись для того же
// матча проигрывает независимо от порядка прихода.
func (f *fakeResultRepo) Create(_ context.Context, result *models.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.results[result.MatchID]; exists {
		return repositories.ErrMatchResultConflict
	}
	result.ID = f.nextID
	f.nextID++
	copied := *result
	f.results[result.MatchID] = &copied
	return nil
}

func (f *fakeResultRepo) GetByMatchID(_ context.Context, matchID int) (*models.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.results[matchID]
	if !ok {
		return nil, repositories.ErrMatchResultNotFound
	}
	copied := *result
	return &copied, nil
}

func (f *fakeResultRepo) CountAndAverageSets(_ context.Context) (int, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return 0, 0, nil
	}
	total := 0
	for _, result := range f.results {
		total += result.SetsWonA + result.SetsWonB
	}
	return len(f.results), float64(total) / float64(len(f.results)), nil
}

type fakeClubRepo struct {
	mu     sync.Mutex
	clubs  map[int]*models.Club
	nextID int
}

func newFakeClubRepo() *fakeClubRepo {
	return &fakeClubRepo{clubs: make(map[int]*models.Club), nextID: 1}
}

func (f *fakeClubRepo) Create(_ context.Context, club *models.Club) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.clubs {
		if existing.Name == club.Name {
			return repositories.ErrClubNameConflict
		}
	}
	club.ID = f.nextID
	f.nextID++
	copied := *club
	f.clubs[club.ID] = &copied
	return nil
}

func (f *fakeClubRepo) GetByID(_ context.Context, id int) (*models.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	club, ok := f.clubs[id]
	if !ok {
		return nil, repositories.ErrClubNotFound
	}
	copied := *club
	return &copied, nil
}

func (f *fakeClubRepo) List(_ context.Context) ([]*models.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Club, 0, len(f.clubs))
	for _, club := range f.clubs {
		copied := *club
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeClubRepo) MarkClaimPending(_ context.Context, _ repositories.SQLExecutor, clubID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	club, ok := f.clubs[clubID]
	if ok && club.ClaimStatus == models.ClubUnclaimed {
		club.ClaimStatus = models.ClubClaimPending
	}
	return nil
}

// AssignOwner повторяет условие owner_user_id IS NULL: из двух конкурентных
// одобрений проходит ровно одно.
func (f *fakeClubRepo) AssignOwner(_ context.Context, _ repositories.SQLExecutor, clubID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	club, ok := f.clubs[clubID]
	if !ok || club.OwnerUserID != nil {
		return repositories.ErrClubOwnerConflict
	}
	uid := userID
	club.OwnerUserID = &uid
	club.ClaimStatus = models.ClubClaimed
	return nil
}

func (f *fakeClubRepo) ResetClaimStatus(_ context.Context, _ repositories.SQLExecutor, clubID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	club, ok := f.clubs[clubID]
	if ok && club.OwnerUserID == nil {
		club.ClaimStatus = models.ClubUnclaimed
	}
	return nil
}

func (f *fakeClubRepo) UpdateLogoKey(_ context.Context, id int, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	club, ok := f.clubs[id]
	if !ok {
		return repositories.ErrClubNotFound
	}
	club.LogoKey = &key
	return nil
}

func (f *fakeClubRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clubs), nil
}

func (f *fakeClubRepo) addClub(status models.ClubClaimStatus, owner *int) *models.Club {
	f.mu.Lock()
	defer f.mu.Unlock()
	club := &models.Club{ID: f.nextID, Name: "Club " + strings.Repeat("c", f.nextID), ClaimStatus: status, OwnerUserID: owner}
	f.nextID++
	f.clubs[club.ID] = club
	return club
}

type fakeClaimRepo struct {
	mu       sync.Mutex
	requests map[int]*models.ClubClaimRequest
	nextID   int
	clubRepo *fakeClubRepo
}

func newFakeClaimRepo(clubRepo *fakeClubRepo) *fakeClaimRepo {
	return &fakeClaimRepo{requests: make(map[int]*models.ClubClaimRequest), nextID: 1, clubRepo: clubRepo}
}

func (f *fakeClaimRepo) Create(_ context.Context, request *models.ClubClaimRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request.ID = f.nextID
	f.nextID++
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeClaimRepo) GetByID(_ context.Context, id int) (*models.ClubClaimRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, repositories.ErrClaimRequestNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeClaimRepo) ListPending(_ context.Context) ([]*models.ClubClaimRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ClubClaimRequest, 0)
	for _, request := range f.requests {
		if request.Status == models.ClaimRequestPending {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Approve повторяет транзакцию разрешения: заявка помечается разрешённой
// только из состояния pending, передача клуба атомарна с этой пометкой.
func (f *fakeClaimRepo) Approve(ctx context.Context, requestID, resolverID int, resolvedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestID]
	if !ok {
		return repositories.ErrClaimRequestNotFound
	}
	if request.Status != models.ClaimRequestPending {
		return repositories.ErrClaimRequestNotPending
	}
	if err := f.clubRepo.AssignOwner(ctx, nil, request.ClubID, request.UserID); err != nil {
		return err
	}
	request.Status = models.ClaimRequestApproved
	request.ResolvedBy = &resolverID
	request.ResolvedAt = &resolvedAt
	return nil
}

func (f *fakeClaimRepo) Reject(ctx context.Context, requestID, resolverID int, resolvedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestID]
	if !ok {
		return repositories.ErrClaimRequestNotFound
	}
	if request.Status != models.ClaimRequestPending {
		return repositories.ErrClaimRequestNotPending
	}
	request.Status = models.ClaimRequestRejected
	request.ResolvedBy = &resolverID
	request.ResolvedAt = &resolvedAt

	hasPending := false
	for _, other := range f.requests {
		if other.ClubID == request.ClubID && other.Status == models.ClaimRequestPending {
			hasPending = true
			break
		}
	}
	if !hasPending {
		_ = f.clubRepo.ResetClaimStatus(ctx, nil, request.ClubID)
	}
	return nil
}

func (f *fakeClaimRepo) CountPending(ctx context.Context) (int, error) {
	pending, err := f.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// fakeUploader отвечает успехом на любую загрузку и строит публичные URL от
// фиксированной базы.
type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, key string, _ string, _ io.Reader) (*storage.UploadResult, error) {
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (fakeUploader) Delete(_ context.Context, _ string) error { return nil }

func (fakeUploader) GetPublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

type broadcastEvent struct {
	Room string
	Type string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (f *fakeBroadcaster) Publish(room string, eventType string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcastEvent{Room: room, Type: eventType})
}

func (f *fakeBroadcaster) Events() []broadcastEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]broadcastEvent, len(f.events))
	copy(out, f.events)
	return out
}

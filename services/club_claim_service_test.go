package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelovidal/padel-v1-sub001/models"
)

type claimFixture struct {
	userRepo  *fakeUserRepo
	clubRepo  *fakeClubRepo
	claimRepo *fakeClaimRepo
	hub       *fakeBroadcaster
	svc       ClubClaimService
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	userRepo := newFakeUserRepo()
	clubRepo := newFakeClubRepo()
	claimRepo := newFakeClaimRepo(clubRepo)
	hub := &fakeBroadcaster{}
	svc := NewClubClaimService(claimRepo, clubRepo, userRepo, nil, hub, nil)
	return &claimFixture{userRepo: userRepo, clubRepo: clubRepo, claimRepo: claimRepo, hub: hub, svc: svc}
}

func TestRequestClaim(t *testing.T) {
	t.Run("creates a pending request and marks the club", func(t *testing.T) {
		f := newClaimFixture(t)
		club := f.clubRepo.addClub(models.ClubUnclaimed, nil)

		request, err := f.svc.RequestClaim(context.Background(), club.ID, 10, " owner@club.test ", " I run this place ")
		require.NoError(t, err)
		assert.Equal(t, models.ClaimRequestPending, request.Status)
		assert.Equal(t, "owner@club.test", request.ContactInfo)
		assert.Equal(t, "I run this place", request.Message)

		stored, err := f.clubRepo.GetByID(context.Background(), club.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ClubClaimPending, stored.ClaimStatus)
	})

	t.Run("claimed club rejects new requests", func(t *testing.T) {
		f := newClaimFixture(t)
		owner := 5
		club := f.clubRepo.addClub(models.ClubClaimed, &owner)

		_, err := f.svc.RequestClaim(context.Background(), club.ID, 10, "a@b.c", "")
		assert.ErrorIs(t, err, ErrClubAlreadyClaimed)
	})

	t.Run("unknown club", func(t *testing.T) {
		f := newClaimFixture(t)
		_, err := f.svc.RequestClaim(context.Background(), 99, 10, "a@b.c", "")
		assert.ErrorIs(t, err, ErrClubNotFound)
	})

	t.Run("competing pending requests coexist", func(t *testing.T) {
		f := newClaimFixture(t)
		club := f.clubRepo.addClub(models.ClubUnclaimed, nil)

		_, err := f.svc.RequestClaim(context.Background(), club.ID, 10, "a@b.c", "")
		require.NoError(t, err)
		_, err = f.svc.RequestClaim(context.Background(), club.ID, 11, "d@e.f", "")
		require.NoError(t, err)

		pending, err := f.svc.ListPendingRequests(context.Background())
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})
}

func TestResolveClaimAuthorization(t *testing.T) {
	f := newClaimFixture(t)
	player := f.userRepo.addUser(models.RolePlayer)
	club := f.clubRepo.addClub(models.ClubUnclaimed, nil)
	request, err := f.svc.RequestClaim(context.Background(), club.ID, player.ID, "a@b.c", "")
	require.NoError(t, err)

	// Не-админ и несуществующий пользователь отсекаются до чтения заявки.
	err = f.svc.ResolveClaim(context.Background(), request.ID, player.ID, DecisionApproved)
	assert.ErrorIs(t, err, ErrAdminRequired)

	err = f.svc.ResolveClaim(context.Background(), request.ID, 999, DecisionApproved)
	assert.ErrorIs(t, err, ErrAdminRequired)

	admin := f.userRepo.addUser(models.RoleAdmin)
	err = f.svc.ResolveClaim(context.Background(), request.ID, admin.ID, ClaimDecision("maybe"))
	assert.ErrorIs(t, err, ErrInvalidClaimDecision)
}

func TestResolveClaimApprove(t *testing.T) {
	f := newClaimFixture(t)
	admin := f.userRepo.addUser(models.RoleAdmin)
	requester := f.userRepo.addUser(models.RolePlayer)
	club := f.clubRepo.addClub(models.ClubUnclaimed, nil)
	request, err := f.svc.RequestClaim(context.Background(), club.ID, requester.ID, "a@b.c", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveClaim(context.Background(), request.ID, admin.ID, DecisionApproved))

	storedClub, err := f.clubRepo.GetByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClubClaimed, storedClub.ClaimStatus)
	require.NotNil(t, storedClub.OwnerUserID)
	assert.Equal(t, requester.ID, *storedClub.OwnerUserID)

	storedRequest, err := f.claimRepo.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimRequestApproved, storedRequest.Status)
	require.NotNil(t, storedRequest.ResolvedBy)
	assert.Equal(t, admin.ID, *storedRequest.ResolvedBy)
	assert.NotNil(t, storedRequest.ResolvedAt)

	events := f.hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventClaimResolved, events[0].Type)

	// Разрешённая заявка неизменяема.
	err = f.svc.ResolveClaim(context.Background(), request.ID, admin.ID, DecisionRejected)
	assert.ErrorIs(t, err, ErrClaimRequestResolved)
}

func TestResolveClaimApproveAfterClubClaimed(t *testing.T) {
	f := newClaimFixture(t)
	admin := f.userRepo.addUser(models.RoleAdmin)
	first := f.userRepo.addUser(models.RolePlayer)
	second := f.userRepo.addUser(models.RolePlayer)
	club := f.clubRepo.addClub(models.ClubUnclaimed, nil)

	firstReq, err := f.svc.RequestClaim(context.Background(), club.ID, first.ID, "a@b.c", "")
	require.NoError(t, err)
	secondReq, err := f.svc.RequestClaim(context.Background(), club.ID, second.ID, "d@e.f", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveClaim(context.Background(), firstReq.ID, admin.ID, DecisionApproved))

	// Вторая заявка на уже переданный клуб проваливает само одобрение.
	err = f.svc.ResolveClaim(context.Background(), secondReq.ID, admin.ID, DecisionApproved)
	assert.ErrorIs(t, err, ErrClubAlreadyClaimed)

	storedClub, err := f.clubRepo.GetByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, *storedClub.OwnerUserID)
}

func TestResolveClaimReject(t *testing.T) {
	f := newClaimFixture(t)
	admin := f.userRepo.addUser(models.RoleAdmin)
	requester := f.userRepo.addUser(models.RolePlayer)
	club := f.clubRepo.addClub(models.ClubUnclaimed, nil)
	request, err := f.svc.RequestClaim(context.Background(), club.ID, requester.ID, "a@b.c", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveClaim(context.Background(), request.ID, admin.ID, DecisionRejected))

	// Клуб возвращается в unclaimed и открыт для повторных заявок.
	storedClub, err := f.clubRepo.GetByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClubUnclaimed, storedClub.ClaimStatus)
	assert.Nil(t, storedClub.OwnerUserID)

	_, err = f.svc.RequestClaim(context.Background(), club.ID, requester.ID, "a@b.c", "second try")
	require.NoError(t, err)
}

func TestResolveClaimRejectKeepsPendingStatus(t *testing.T) {
	f := newClaimFixture(t)
	admin := f.userRepo.addUser(models.RoleAdmin)
	first := f.userRepo.addUser(models.RolePlayer)
	second := f.userRepo.addUser(models.RolePlayer)
	club := f.clubRepo.addClub(models.ClubUnclaimed, nil)

	firstReq, err := f.svc.RequestClaim(context.Background(), club.ID, first.ID, "a@b.c", "")
	require.NoError(t, err)
	_, err = f.svc.RequestClaim(context.Background(), club.ID, second.ID, "d@e.f", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveClaim(context.Background(), firstReq.ID, admin.ID, DecisionRejected))

	// Пока остаётся другая ожидающая заявка, клуб не возвращается в unclaimed.
	storedClub, err := f.clubRepo.GetByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClubClaimPending, storedClub.ClaimStatus)
}

func TestResolveClaimUnknownRequest(t *testing.T) {
	f := newClaimFixture(t)
	admin := f.userRepo.addUser(models.RoleAdmin)

	err := f.svc.ResolveClaim(context.Background(), 99, admin.ID, DecisionApproved)
	assert.ErrorIs(t, err, ErrClaimRequestNotFound)
}

// Гонка двух одновременных одобрений заявок на один клуб: условие
// owner_user_id IS NULL пропускает ровно одно.
func TestResolveClaimConcurrentApprovals(t *testing.T) {
	f := newClaimFixture(t)
	admin := f.userRepo.addUser(models.RoleAdmin)
	club := f.clubRepo.addClub(models.ClubUnclaimed, nil)

	requestIDs := make([]int, 4)
	for i := range requestIDs {
		requester := f.userRepo.addUser(models.RolePlayer)
		request, err := f.svc.RequestClaim(context.Background(), club.ID, requester.ID, "a@b.c", "")
		require.NoError(t, err)
		requestIDs[i] = request.ID
	}

	errs := make([]error, len(requestIDs))
	var wg sync.WaitGroup
	for i, id := range requestIDs {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			errs[i] = f.svc.ResolveClaim(context.Background(), id, admin.ID, DecisionApproved)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrClubAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, succeeded)

	storedClub, err := f.clubRepo.GetByID(context.Background(), club.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClubClaimed, storedClub.ClaimStatus)
	assert.NotNil(t, storedClub.OwnerUserID)
}

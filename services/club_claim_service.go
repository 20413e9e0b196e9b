package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
)

type ClaimDecision string

const (
	DecisionApproved ClaimDecision = "approved"
	DecisionRejected ClaimDecision = "rejected"
)

type ClubClaimService interface {
	RequestClaim(ctx context.Context, clubID, currentUserID int, contactInfo, message string) (*models.ClubClaimRequest, error)
	ResolveClaim(ctx context.Context, requestID, resolverUserID int, decision ClaimDecision) error
	ListPendingRequests(ctx context.Context) ([]*models.ClubClaimRequest, error)
}

type clubClaimService struct {
	claimRepo repositories.ClubClaimRepository
	clubRepo  repositories.ClubRepository
	userRepo  repositories.UserRepository
	email     *EmailService
	hub       LiveBroadcaster
	logger    *slog.Logger
}

func NewClubClaimService(
	claimRepo repositories.ClubClaimRepository,
	clubRepo repositories.ClubRepository,
	userRepo repositories.UserRepository,
	email *EmailService,
	hub LiveBroadcaster,
	logger *slog.Logger,
) ClubClaimService {
	return &clubClaimService{
		claimRepo: claimRepo,
		clubRepo:  clubRepo,
		userRepo:  userRepo,
		email:     email,
		hub:       hub,
		logger:    logger,
	}
}

// RequestClaim — первая фаза: любой аутентифицированный пользователь подаёт
// заявку на клуб, который ещё никому не передан. Заявка никого не блокирует:
// несколько ожидающих заявок на один клуб сосуществуют, эксклюзивна только
// фаза разрешения.
func (s *clubClaimService) RequestClaim(ctx context.Context, clubID, currentUserID int, contactInfo, message string) (*models.ClubClaimRequest, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", clubID, err)
	}
	if club.ClaimStatus == models.ClubClaimed {
		return nil, ErrClubAlreadyClaimed
	}

	request := &models.ClubClaimRequest{
		ClubID:      clubID,
		UserID:      currentUserID,
		ContactInfo: strings.TrimSpace(contactInfo),
		Message:     strings.TrimSpace(message),
		Status:      models.ClaimRequestPending,
	}
	if err := s.claimRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create claim request for club %d: %w", clubID, err)
	}

	// Статус клуба переводится в pending только для отображения; неудача
	// этого шага заявку не отменяет.
	if err := s.clubRepo.MarkClaimPending(ctx, nil, clubID); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to mark club claim pending",
			slog.Int("club_id", clubID), slog.Any("error", err))
	}
	return request, nil
}

// ResolveClaim — вторая фаза, только для администраторов. Одобрение атомарно
// передаёт клуб автору заявки той же условной дисциплиной, что и заявка на
// профиль игрока: клуб, уже отданный по другой заявке, проваливает само
// одобрение. Отклонение возвращает клуб в unclaimed и разрешает повторные
// заявки. Разрешённая заявка неизменяема.
func (s *clubClaimService) ResolveClaim(ctx context.Context, requestID, resolverUserID int, decision ClaimDecision) error {
	// Авторизация проверяется до любого чтения состояния заявки.
	resolver, err := s.userRepo.GetByID(ctx, resolverUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrAdminRequired
		}
		return fmt.Errorf("failed to get resolver %d: %w", resolverUserID, err)
	}
	if resolver.Role != models.RoleAdmin {
		return ErrAdminRequired
	}

	if decision != DecisionApproved && decision != DecisionRejected {
		return ErrInvalidClaimDecision
	}

	request, err := s.claimRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrClaimRequestNotFound) {
			return ErrClaimRequestNotFound
		}
		return fmt.Errorf("failed to get claim request %d: %w", requestID, err)
	}
	if request.Status != models.ClaimRequestPending {
		return ErrClaimRequestResolved
	}

	now := time.Now()
	if decision == DecisionApproved {
		err = s.claimRepo.Approve(ctx, requestID, resolverUserID, now)
	} else {
		err = s.claimRepo.Reject(ctx, requestID, resolverUserID, now)
	}
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrClaimRequestNotPending):
			return ErrClaimRequestResolved
		case errors.Is(err, repositories.ErrClubOwnerConflict):
			return ErrClubAlreadyClaimed
		case errors.Is(err, repositories.ErrClaimRequestNotFound):
			return ErrClaimRequestNotFound
		}
		return fmt.Errorf("failed to resolve claim request %d: %w", requestID, err)
	}

	s.notifyResolved(ctx, request, decision)
	return nil
}

func (s *clubClaimService) ListPendingRequests(ctx context.Context) ([]*models.ClubClaimRequest, error) {
	requests, err := s.claimRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending claim requests: %w", err)
	}
	return requests, nil
}

// notifyResolved рассылает уведомления о решении: письмо автору заявки и
// событие в live-комнату клуба. Оба шага best-effort.
func (s *clubClaimService) notifyResolved(ctx context.Context, request *models.ClubClaimRequest, decision ClaimDecision) {
	if s.hub != nil {
		s.hub.Publish("club:"+strconv.Itoa(request.ClubID), EventClaimResolved, map[string]interface{}{
			"request_id": request.ID,
			"club_id":    request.ClubID,
			"decision":   decision,
		})
	}

	if s.email == nil {
		return
	}
	requester, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to look up claim requester for notification",
				slog.Int("request_id", request.ID), slog.Any("error", err))
		}
		return
	}
	club, err := s.clubRepo.GetByID(ctx, request.ClubID)
	if err != nil {
		return
	}
	if err := s.email.SendClaimResolved(requester.Email, club.Name, decision == DecisionApproved); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to send claim resolution email",
			slog.Int("request_id", request.ID), slog.Any("error", err))
	}
}

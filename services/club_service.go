package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/geo"
	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/repositories"
	"github.com/marcelovidal/padel-v1-sub001/storage"
)

var ErrClubNameRequired = errors.New("club name is required")

type ClubInput struct {
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
}

type ClubService interface {
	CreateClub(ctx context.Context, currentUserID int, input ClubInput) (*models.Club, error)
	GetClub(ctx context.Context, id int) (*models.Club, error)
	ListClubs(ctx context.Context) ([]*models.Club, error)
	UploadLogo(ctx context.Context, clubID, currentUserID int, isAdmin bool, contentType string, file io.Reader) (*models.Club, error)
}

type clubService struct {
	clubRepo  repositories.ClubRepository
	geoClient *geo.Client
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewClubService(
	clubRepo repositories.ClubRepository,
	geoClient *geo.Client,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ClubService {
	return &clubService{
		clubRepo:  clubRepo,
		geoClient: geoClient,
		uploader:  uploader,
		logger:    logger,
	}
}

func (s *clubService) CreateClub(ctx context.Context, currentUserID int, input ClubInput) (*models.Club, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrClubNameRequired
	}

	city := strings.TrimSpace(input.City)
	if err := s.verifyCity(ctx, city); err != nil {
		return nil, err
	}

	club := &models.Club{
		Name:        name,
		City:        city,
		Address:     input.Address,
		Phone:       input.Phone,
		Email:       input.Email,
		ClaimStatus: models.ClubUnclaimed,
	}

	if err := s.clubRepo.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

// verifyCity сверяет город со внешним географическим справочником.
// Недоступность справочника не блокирует создание клуба — проверка
// best-effort; блокирует только явный ответ "город не найден".
func (s *clubService) verifyCity(ctx context.Context, city string) error {
	if s.geoClient == nil || city == "" {
		return nil
	}
	_, err := s.geoClient.LookupCity(ctx, city)
	if err == nil {
		return nil
	}
	if errors.Is(err, geo.ErrCityNotFound) {
		return ErrClubCityUnknown
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "geo lookup unavailable, skipping city check",
			slog.String("city", city), slog.Any("error", err))
	}
	return nil
}

func (s *clubService) GetClub(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", id, err)
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for _, club := range clubs {
		populateClubLogoURL(club, s.uploader)
	}
	return clubs, nil
}

func (s *clubService) UploadLogo(ctx context.Context, clubID, currentUserID int, isAdmin bool, contentType string, file io.Reader) (*models.Club, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	isOwner := club.OwnerUserID != nil && *club.OwnerUserID == currentUserID
	if !isOwner && !isAdmin {
		return nil, ErrAdminRequired
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("clubs/%d/logo_%d%s", clubID, time.Now().Unix(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo for club %d: %w", clubID, err)
	}

	if err := s.clubRepo.UpdateLogoKey(ctx, clubID, key); err != nil {
		return nil, fmt.Errorf("failed to store logo key for club %d: %w", clubID, err)
	}
	club.LogoKey = &key
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
	"github.com/marcelovidal/padel-v1-sub001/scoring"
	"github.com/marcelovidal/padel-v1-sub001/storage"
)

// isRosterParticipant сообщает, привязан ли кто-то из состава к данной
// учётной записи.
func isRosterParticipant(roster []models.MatchPlayer, userID int) bool {
	for _, entry := range roster {
		if entry.Player != nil && entry.Player.UserID != nil && *entry.Player.UserID == userID {
			return true
		}
	}
	return false
}

// MatchView — матч с выведенным эффективным состоянием для листингов.
type MatchView struct {
	models.Match
	EffectiveStatus models.MatchStatus `json:"effective_status"`
	HasResult       bool               `json:"has_result"`
}

func toMatchView(match *models.Match, now time.Time) MatchView {
	hasResult := match.Result != nil
	return MatchView{
		Match:           *match,
		EffectiveStatus: scoring.EffectiveMatchStatus(match.Status, match.ScheduledAt, hasResult, now),
		HasResult:       hasResult,
	}
}

func populatePlayerAvatarURL(player *models.Player, uploader storage.FileUploader) {
	if player != nil && player.AvatarKey != nil && *player.AvatarKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*player.AvatarKey)
		if url != "" {
			player.AvatarURL = &url
		}
	}
}

func populateClubLogoURL(club *models.Club, uploader storage.FileUploader) {
	if club != nil && club.LogoKey != nil && *club.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*club.LogoKey)
		if url != "" {
			club.LogoURL = &url
		}
	}
}

// GetExtensionFromContentType переводит MIME-тип загружаемой картинки в
// расширение файла для ключа в хранилище.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}

package scoring

import (
	"time"

	"github.com/marcelovidal/padel-v1-sub001/models"
)

// EffectiveMatchStatus выводит эффективное состояние матча из хранимых
// фактов, ничего не изменяя. Приоритет правил:
//
//  1. Отменённый матч остаётся отменённым при любых прочих фактах.
//  2. Матч с записанным результатом завершён.
//  3. Матч, чьё запланированное время строго в прошлом, считается
//     завершённым, даже если счёт никто не внёс.
//  4. Иначе матч запланирован.
func EffectiveMatchStatus(stored models.MatchStatus, scheduledAt time.Time, hasResult bool, now time.Time) models.MatchStatus {
	switch {
	case stored == models.MatchStatusCanceled:
		return models.MatchStatusCanceled
	case hasResult:
		return models.MatchStatusCompleted
	case scheduledAt.Before(now):
		return models.MatchStatusCompleted
	default:
		return models.MatchStatusScheduled
	}
}

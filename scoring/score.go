package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcelovidal/padel-v1-sub001/models"
)

const (
	// Матч выигрывается двумя сетами; счёт принимается максимум из пяти записей.
	SetsToWin = 2
	MaxSets   = 5
)

type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Outcome — нормализованный результат валидации счёта. Winner пустой, пока
// ни одна из команд не набрала SetsToWin выигранных сетов (Finished == false).
type Outcome struct {
	Sets       []SetScore        `json:"sets"`
	SetWinners []models.TeamSide `json:"set_winners"`
	SetsWonA   int               `json:"sets_won_a"`
	SetsWonB   int               `json:"sets_won_b"`
	Winner     models.TeamSide   `json:"winner,omitempty"`
	Finished   bool              `json:"finished"`
}

// ScoreString сериализует нормализованный счёт в строку вида "6-4,3-6,7-5".
func (o *Outcome) ScoreString() string {
	parts := make([]string, 0, len(o.Sets))
	for _, s := range o.Sets {
		parts = append(parts, strconv.Itoa(s.A)+"-"+strconv.Itoa(s.B))
	}
	return strings.Join(parts, ",")
}

// validSet проверяет счёт одного сета: равный счёт невозможен, победитель
// набирает минимум 6 геймов, 6 требует разрыва в 2 гейма, 7 допускается
// только при 7-5 или 7-6 (тай-брейк). Всё остальное, включая счёт выше 7
// и отрицательные значения, невалидно.
func validSet(a, b int) bool {
	if a < 0 || b < 0 || a == b {
		return false
	}
	hi, lo := a, b
	if b > a {
		hi, lo = b, a
	}
	switch hi {
	case 6:
		return hi-lo >= 2
	case 7:
		return lo == 5 || lo == 6
	default:
		return false
	}
}

// ValidateSets превращает сырой посетовый счёт либо в нормализованный
// Outcome, либо в непустой список человекочитаемых ошибок.
//
// Сеты обрабатываются в порядке ввода. Как только одна из команд набирает
// SetsToWin выигранных сетов, обработка останавливается и оставшиеся записи
// молча отбрасываются. Невалидный сет не прерывает обработку: победы
// продолжают накапливаться по валидным сетам вокруг него, но любая посетовая
// ошибка лишает результат доверия — Outcome при этом не возвращается.
//
// Незавершённый счёт (никто не набрал SetsToWin) сам по себе ошибкой не
// является: вызывающая сторона обязана трактовать Finished == false как
// отсутствие исхода.
func ValidateSets(sets []SetScore) (*Outcome, []string) {
	if len(sets) == 0 {
		return nil, []string{"at least one set is required"}
	}

	var problems []string
	if len(sets) > MaxSets {
		problems = append(problems, fmt.Sprintf("no more than %d sets are allowed, got %d", MaxSets, len(sets)))
		sets = sets[:MaxSets]
	}

	out := &Outcome{}
	for i, s := range sets {
		if !validSet(s.A, s.B) {
			problems = append(problems, fmt.Sprintf("set %d: invalid score %d-%d", i+1, s.A, s.B))
			continue
		}

		winner := models.TeamA
		if s.B > s.A {
			winner = models.TeamB
		}
		out.Sets = append(out.Sets, s)
		out.SetWinners = append(out.SetWinners, winner)
		if winner == models.TeamA {
			out.SetsWonA++
		} else {
			out.SetsWonB++
		}

		if out.SetsWonA == SetsToWin || out.SetsWonB == SetsToWin {
			out.Finished = true
			out.Winner = winner
			break
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return out, nil
}

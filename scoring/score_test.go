package scoring

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/marcelovidal/padel-v1-sub001/models"
)

func TestValidSetBoundaries(t *testing.T) {
	tests := []struct {
		a, b int
		want bool
	}{
		{6, 0, true},
		{6, 1, true},
		{6, 2, true},
		{6, 3, true},
		{6, 4, true},
		{6, 5, false},
		{6, 6, false},
		{7, 5, true},
		{7, 6, true},
		{7, 4, false},
		{7, 7, false},
		{8, 6, false},
		{9, 7, false},
		{5, 3, false},
		{5, 0, false},
		{0, 0, false},
		{3, 3, false},
		{-1, 6, false},
		{6, -2, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%d", tt.a, tt.b), func(t *testing.T) {
			if got := validSet(tt.a, tt.b); got != tt.want {
				t.Errorf("validSet(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Счёт симметричен относительно сторон.
			if got := validSet(tt.b, tt.a); got != tt.want {
				t.Errorf("validSet(%d, %d) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestValidateSetsStraightWin(t *testing.T) {
	out, problems := ValidateSets([]SetScore{{6, 4}, {6, 3}})
	if problems != nil {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if !out.Finished {
		t.Error("expected finished outcome")
	}
	if out.Winner != models.TeamA {
		t.Errorf("winner = %q, want %q", out.Winner, models.TeamA)
	}
	if out.SetsWonA != 2 || out.SetsWonB != 0 {
		t.Errorf("sets won = %d-%d, want 2-0", out.SetsWonA, out.SetsWonB)
	}
	if len(out.Sets) != 2 {
		t.Errorf("normalized sets = %d, want 2", len(out.Sets))
	}
	if out.ScoreString() != "6-4,6-3" {
		t.Errorf("score string = %q, want %q", out.ScoreString(), "6-4,6-3")
	}
}

func TestValidateSetsThreeSetWin(t *testing.T) {
	out, problems := ValidateSets([]SetScore{{6, 4}, {3, 6}, {7, 6}})
	if problems != nil {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if out.Winner != models.TeamA || !out.Finished {
		t.Errorf("winner = %q finished = %v, want A finished", out.Winner, out.Finished)
	}
	if len(out.Sets) != 3 {
		t.Errorf("normalized sets = %d, want 3", len(out.Sets))
	}
	wantWinners := []models.TeamSide{models.TeamA, models.TeamB, models.TeamA}
	if !reflect.DeepEqual(out.SetWinners, wantWinners) {
		t.Errorf("set winners = %v, want %v", out.SetWinners, wantWinners)
	}
}

func TestValidateSetsTruncatesAfterClinch(t *testing.T) {
	// Третий и четвёртый сеты поданы после победного второго: они молча
	// отбрасываются, даже если сами по себе невалидны.
	out, problems := ValidateSets([]SetScore{{6, 0}, {6, 1}, {1, 1}, {99, 0}})
	if problems != nil {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if len(out.Sets) != 2 {
		t.Errorf("normalized sets = %d, want 2", len(out.Sets))
	}
	if out.Winner != models.TeamA {
		t.Errorf("winner = %q, want A", out.Winner)
	}
}

func TestValidateSetsNotFinished(t *testing.T) {
	out, problems := ValidateSets([]SetScore{{6, 4}, {3, 6}})
	if problems != nil {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if out.Finished {
		t.Error("outcome must not be finished at 1-1")
	}
	if out.Winner != "" {
		t.Errorf("winner = %q, want empty", out.Winner)
	}
	if out.SetsWonA != 1 || out.SetsWonB != 1 {
		t.Errorf("sets won = %d-%d, want 1-1", out.SetsWonA, out.SetsWonB)
	}
}

// Невалидный сет в середине не прерывает обработку: победы продолжают
// накапливаться по валидным сетам вокруг него, но результат при любой
// посетовой ошибке не возвращается.
func TestValidateSetsPermissiveAroundInvalidSet(t *testing.T) {
	out, problems := ValidateSets([]SetScore{{6, 4}, {5, 5}, {6, 2}})
	if out != nil {
		t.Errorf("expected no outcome, got %+v", out)
	}
	if len(problems) != 1 {
		t.Fatalf("problems = %v, want exactly one", problems)
	}
	if want := "set 2: invalid score 5-5"; problems[0] != want {
		t.Errorf("problem = %q, want %q", problems[0], want)
	}
}

func TestValidateSetsInvalidSetErrorsCarrySetIndex(t *testing.T) {
	_, problems := ValidateSets([]SetScore{{2, 1}, {6, 5}, {8, 6}})
	want := []string{
		"set 1: invalid score 2-1",
		"set 2: invalid score 6-5",
		"set 3: invalid score 8-6",
	}
	if !reflect.DeepEqual(problems, want) {
		t.Errorf("problems = %v, want %v", problems, want)
	}
}

func TestValidateSetsEmptyInput(t *testing.T) {
	out, problems := ValidateSets(nil)
	if out != nil {
		t.Errorf("expected no outcome, got %+v", out)
	}
	if len(problems) == 0 {
		t.Error("expected a problem for empty input")
	}
}

func TestValidateSetsTooManySets(t *testing.T) {
	sets := []SetScore{{6, 4}, {4, 6}, {6, 4}, {4, 6}, {5, 5}, {6, 0}}
	out, problems := ValidateSets(sets)
	if out != nil {
		t.Errorf("expected no outcome, got %+v", out)
	}
	if len(problems) != 2 {
		t.Errorf("problems = %v, want count limit error and set 5 error", problems)
	}
}

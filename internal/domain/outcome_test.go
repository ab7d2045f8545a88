package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func rangeBet(bt BetType, subject string, lo, hi int64) Bet {
	return Bet{BetType: bt, Selection: subject, MinBound: &lo, MaxBound: &hi}
}

func TestOutcomeEvaluate(t *testing.T) {
	out := Outcome{
		Winners: map[BetType]string{MatchWinner: "TeamA", TossWinner: ""},
		Actuals: map[BetType]map[string]int64{PlayerRuns: {"Kohli": 54}, Extras: {"TeamB": 0}},
	}
	tests := []struct {
		name   string
		bet    Bet
		won    bool
		isOkay bool
	}{
		{"categorical win", Bet{BetType: MatchWinner, Selection: "TeamA"}, true, true},
		{"categorical loss", Bet{BetType: MatchWinner, Selection: "TeamB"}, false, true},
		{"selection is case sensitive", Bet{BetType: MatchWinner, Selection: "teama"}, false, true},
		{"empty declared winner", Bet{BetType: TossWinner, Selection: "TeamA"}, false, false},
		{"no winner declared", Bet{BetType: PlayerOfMatch, Selection: "Kohli"}, false, false},
		{"range inside", rangeBet(PlayerRuns, "Kohli", 50, 60), true, true},
		{"range lower bound inclusive", rangeBet(PlayerRuns, "Kohli", 54, 60), true, true},
		{"range upper bound inclusive", rangeBet(PlayerRuns, "Kohli", 40, 54), true, true},
		{"range outside", rangeBet(PlayerRuns, "Kohli", 55, 70), false, true},
		{"zero actual", rangeBet(Extras, "TeamB", 0, 0), true, true},
		{"unknown subject", rangeBet(PlayerRuns, "Smith", 0, 10), false, false},
		{"no actuals for type", rangeBet(PlayerWickets, "Bumrah", 1, 3), false, false},
		{"range bet without bounds", Bet{BetType: PlayerRuns, Selection: "Kohli"}, false, false},
		{"unknown type is categorical", Bet{BetType: "MOST_SIXES", Selection: "X"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			won, ok := out.Evaluate(tt.bet)
			assert.Equal(t, tt.isOkay, ok)
			assert.Equal(t, tt.won, won)
		})
	}
}

// Uma faixa vence sse min <= real <= max.
func TestProperty_RangeContainment(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Int64Range(0, 200).Draw(t, "lo")
		hi := rapid.Int64Range(lo, 300).Draw(t, "hi")
		actual := rapid.Int64Range(0, 400).Draw(t, "actual")

		out := Outcome{Actuals: map[BetType]map[string]int64{PlayerRuns: {"Kohli": actual}}}
		won, ok := out.Evaluate(rangeBet(PlayerRuns, "Kohli", lo, hi))
		if !ok {
			t.Fatalf("bet with declared actual must be resolvable")
		}
		if want := lo <= actual && actual <= hi; won != want {
			t.Fatalf("[%d, %d] actual=%d: won=%v want %v", lo, hi, actual, won, want)
		}
	})
}

func TestParseBetType(t *testing.T) {
	assert.Equal(t, MatchWinner, ParseBetType(" match_winner "))
	assert.True(t, ParseBetType("player_runs").IsRange())
	assert.False(t, ParseBetType("toss_winner").IsRange())
	assert.Equal(t, []BetType{MatchWinner, PlayerOfMatch}, ParseBetTypes([]string{"match_winner", " ", "Player_Of_Match"}))
}

func TestResultTerminal(t *testing.T) {
	assert.False(t, ResultPending.Terminal())
	assert.True(t, ResultWin.Terminal())
	assert.True(t, ResultLose.Terminal())
	assert.True(t, MatchBettingClosed.Valid())
	assert.False(t, MatchStatus("LIVE").Valid())
}

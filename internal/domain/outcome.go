package domain

// Outcome é a declaração do administrador usada na liquidação.
//
// Winners guarda o valor vencedor por tipo categórico (ex: MATCH_WINNER -> "TeamA").
// Actuals guarda os valores numéricos reais por tipo e por sujeito
// (ex: PLAYER_RUNS -> {"Kohli": 54}); o sujeito é a seleção da aposta.
type Outcome struct {
	Winners map[BetType]string           `json:"winners,omitempty" yaml:"winners"`
	Actuals map[BetType]map[string]int64 `json:"actuals,omitempty" yaml:"actuals"`
}

// Winner retorna o vencedor declarado para um tipo categórico.
func (o Outcome) Winner(t BetType) (string, bool) {
	w, ok := o.Winners[t]
	return w, ok && w != ""
}

// Actual retorna o valor real de um sujeito para um tipo de faixa.
func (o Outcome) Actual(t BetType, subject string) (int64, bool) {
	bySubject, ok := o.Actuals[t]
	if !ok {
		return 0, false
	}
	v, ok := bySubject[subject]
	return v, ok
}

// Evaluate decide se a aposta venceu. ok=false significa que faltam dados
// para avaliá-la; nesse caso a aposta deve continuar PENDING.
func (o Outcome) Evaluate(b Bet) (won bool, ok bool) {
	if b.BetType.IsRange() {
		if b.MinBound == nil || b.MaxBound == nil {
			return false, false
		}
		actual, found := o.Actual(b.BetType, b.Selection)
		if !found {
			return false, false
		}
		return *b.MinBound <= actual && actual <= *b.MaxBound, true
	}

	winner, found := o.Winner(b.BetType)
	if !found {
		return false, false
	}
	return b.Selection == winner, true
}

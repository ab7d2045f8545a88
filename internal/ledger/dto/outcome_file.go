package dto

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

// OutcomeFile é o resultado declarado em YAML (ledgerctl settle):
//
//	winners:
//	  MATCH_WINNER: TeamA
//	actuals:
//	  PLAYER_RUNS:
//	    Kohli: 54
type OutcomeFile struct {
	Winners map[string]string           `yaml:"winners"`
	Actuals map[string]map[string]int64 `yaml:"actuals"`
}

// LoadOutcomeFile lê e normaliza o arquivo de resultado
func LoadOutcomeFile(path string) (domain.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("read outcome %q: %w", path, err)
	}
	var f OutcomeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Outcome{}, fmt.Errorf("parse outcome %q: %w", path, err)
	}
	if len(f.Winners) == 0 && len(f.Actuals) == 0 {
		return domain.Outcome{}, fmt.Errorf("outcome %q declares nothing: %w", path, domain.ErrInvalidInput)
	}
	return ToOutcome(f.Winners, f.Actuals), nil
}

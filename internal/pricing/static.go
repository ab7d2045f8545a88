package pricing

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
)

// DefaultBase é a odd neutra para tipos fora da tabela.
const DefaultBase = 2.0

// Table mapeia tipo de aposta -> odd base.
// MATCH_WINNER fica abaixo dos tipos exóticos (PLAYER_OF_MATCH), que têm mais resultados possíveis.
type Table map[domain.BetType]float64

// DefaultTable é a tabela usada quando nenhum arquivo é configurado.
func DefaultTable() Table {
	return Table{
		domain.MatchWinner:   1.9,
		domain.TossWinner:    1.9,
		domain.PlayerRuns:    2.0,
		domain.PlayerWickets: 2.5,
		domain.RunsConceded:  2.0,
		domain.Extras:        2.2,
		domain.PlayerOfMatch: 4.0,
	}
}

// Base retorna a odd base do tipo, ou DefaultBase.
func (t Table) Base(bt domain.BetType) float64 {
	if v, ok := t[bt]; ok && v > 0 {
		return v
	}
	return DefaultBase
}

// LoadTable lê um YAML no formato:
//
//	MATCH_WINNER: 1.9
//	PLAYER_OF_MATCH: 4.0
//
// Entradas do arquivo sobrescrevem a tabela padrão; as demais são mantidas.
func LoadTable(path string) (Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricing.LoadTable: read %q: %w", path, err)
	}
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("pricing.LoadTable: parse YAML: %w", err)
	}
	for k, v := range raw {
		if v <= 0 {
			return nil, fmt.Errorf("pricing.LoadTable: base odds for %s must be positive, got %v", k, v)
		}
		t[domain.ParseBetType(k)] = v
	}
	return t, nil
}

// PriceStatic calcula a odd fixa: base do tipo + (max-min)/10 quando a faixa é informada,
// arredondada para 2 casas. Não tem condição de erro.
func (t Table) PriceStatic(bt domain.BetType, minBound, maxBound *int64) float64 {
	odds := decimal.NewFromFloat(t.Base(bt))
	if minBound != nil && maxBound != nil {
		width := decimal.NewFromInt(*maxBound - *minBound)
		odds = odds.Add(width.Div(decimal.NewFromInt(10)))
	}
	return odds.Round(2).InexactFloat64()
}

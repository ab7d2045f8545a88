package topics

const (
	// Apostas
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// Resultado declarado pelo admin (consumido pelo settlement-worker)
	OutcomeDeclared = "outcome_declared"

	// DLQs
	OutcomeDeclaredDLQ = "outcome_declared_dlq"
)

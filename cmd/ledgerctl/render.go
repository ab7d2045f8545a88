package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
)

func printReport(out io.Writer, rep ledger.Report) {
	scope := "all bet types"
	if rep.BetType != "" {
		scope = string(rep.BetType)
	}
	fmt.Fprintf(out, "settlement %s (%s): won=%d lost=%d flagged=%d failed=%d skipped=%d payout=%d completed=%t\n",
		rep.MatchID, scope, rep.Won, rep.Lost, rep.Flagged, rep.Failed, rep.Skipped, rep.TotalPayout, rep.Completed)

	if len(rep.Bets) == 0 {
		return
	}
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Bet", "Participant", "Type", "Selection", "Result", "Payout", "Note")
	for _, b := range rep.Bets {
		note := b.Error
		if b.Skipped {
			note = "already settled"
		}
		tbl.Append(
			b.BetID,
			b.ParticipantID,
			string(b.BetType),
			b.Selection,
			string(b.Result),
			strconv.FormatInt(b.Payout, 10),
			note,
		)
	}
	tbl.Render()
}

func printQuotes(out io.Writer, quotes []domain.OddsQuote) {
	if len(quotes) == 0 {
		fmt.Fprintln(out, "no quotes yet (static pricing applies)")
		return
	}
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Selection", "Odds", "Version", "Updated")
	for _, q := range quotes {
		tbl.Append(
			q.Selection,
			fmt.Sprintf("%.2f", q.Odds),
			strconv.FormatInt(q.Version, 10),
			q.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	tbl.Render()
}

func printPrice(out io.Writer, bt domain.BetType, odds float64) {
	fmt.Fprintf(out, "%s static odds: %.2f\n", bt, odds)
}

func printFlags(out io.Writer, flags []repo.Flag) {
	if len(flags) == 0 {
		fmt.Fprintln(out, "no bets waiting for manual review")
		return
	}
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Bet", "Reason", "Flagged")
	for _, f := range flags {
		tbl.Append(f.BetID, f.Reason, f.FlaggedAt.Format("2006-01-02 15:04:05"))
	}
	tbl.Render()
}

func printParticipant(out io.Writer, p domain.Participant, bets []domain.Bet) {
	fmt.Fprintf(out, "%s balance=%d net_winnings=%d\n", p.ID, p.Balance, p.NetWinnings)
	if len(bets) == 0 {
		return
	}
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Bet", "Match", "Type", "Selection", "Stake", "Odds", "Result", "Payout")
	for _, b := range bets {
		tbl.Append(
			b.ID,
			b.MatchID,
			string(b.BetType),
			b.Selection,
			strconv.FormatInt(b.Stake, 10),
			fmt.Sprintf("%.2f", b.Odds),
			string(b.Result),
			strconv.FormatInt(b.Payout, 10),
		)
	}
	tbl.Render()
}

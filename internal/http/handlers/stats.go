package handlers

import (
	"net/http"

	"wellspring/internal/domain"
)

// WellsStats serves GET /wells/stats: aggregate counts for the dashboard
// plus the number of charges awaiting reconciliation.
func (a *App) WellsStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wells, err := a.Campaigns.List(ctx)
	if err != nil {
		a.fail(w, err)
		return
	}
	var open int
	var raised int64
	for _, c := range wells {
		if c.Status == domain.CampaignOpen {
			open++
		}
		raised += c.CurrentAmount
	}
	pending, err := a.Reconciliations.ListUnresolved(ctx, 100)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":                true,
		"wells_total":            len(wells),
		"wells_open":             open,
		"raised_total":           raised,
		"pending_reconciliation": len(pending),
	})
}

package controllers

import (
	"net/http"

	"github.com/kioskworks/counter-backend/api/responses"
	statssvc "github.com/kioskworks/counter-backend/internal/stats"
	"github.com/kioskworks/counter-backend/pkg/logger"
)

// WaitEstimate reports the average service time and the estimated wait
// for the current incoming queue.
func WaitEstimate(svc *statssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		estimate, err := svc.WaitEstimate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, estimate)
	}
}

// StatsExport writes the non-canceled order history to CSV. Staff only.
func StatsExport(svc *statssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := svc.ExportCSV(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"path": path})
	}
}

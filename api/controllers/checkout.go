package controllers

import (
	"net/http"
	"strings"

	"github.com/cryptonite-hq/cryptonite-backend/api/responses"
	"github.com/cryptonite-hq/cryptonite-backend/internal/payments"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/logger"
)

// CheckoutSummary previews the charge for the caller's cart without opening
// a payment intent.
func CheckoutSummary(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		purchaseType, err := enums.ParsePurchaseType(strings.TrimSpace(r.URL.Query().Get("purchase_type")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase type"))
			return
		}
		durationDays := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("duration_days")); raw != "" {
			durationDays, err = parsePositiveInt(r, "duration_days")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		summary, err := svc.Summary(r.Context(), userID, purchaseType, durationDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

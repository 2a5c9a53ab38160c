package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cryptonite-hq/cryptonite-backend/api/responses"
	"github.com/cryptonite-hq/cryptonite-backend/api/validators"
	"github.com/cryptonite-hq/cryptonite-backend/internal/payments"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/enums"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/logger"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/types"
)

type createIntentRequest struct {
	PurchaseType     string          `json:"purchase_type" validate:"required"`
	Address          *addressRequest `json:"address,omitempty"`
	SaveAddress      bool            `json:"save_address,omitempty"`
	DurationDays     int             `json:"duration_days,omitempty" validate:"omitempty,min=1"`
	HostingRequestID *string         `json:"hosting_request_id,omitempty" validate:"omitempty,uuid"`
}

type addressRequest struct {
	Name       string `json:"name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

func (a addressRequest) toAddress() types.Address {
	return types.Address{
		Name:       strings.TrimSpace(a.Name),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

// CreatePaymentIntent quotes the checkout and opens a Stripe PaymentIntent.
func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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
		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseType, err := enums.ParsePurchaseType(strings.TrimSpace(payload.PurchaseType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase type"))
			return
		}

		input := payments.CreateIntentInput{
			PurchaseType: purchaseType,
			SaveAddress:  payload.SaveAddress,
			DurationDays: payload.DurationDays,
		}
		if payload.Address != nil {
			address := payload.Address.toAddress()
			input.Address = &address
		}
		if payload.HostingRequestID != nil {
			id, err := uuid.Parse(*payload.HostingRequestID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid hosting request id"))
				return
			}
			input.HostingRequestID = &id
		}

		intent, err := svc.CreateIntent(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

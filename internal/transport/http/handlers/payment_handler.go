package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/Amanc77/Datamart-app/internal/services/auth"
	entitlementsvc "github.com/Amanc77/Datamart-app/internal/services/entitlements"
	exportsvc "github.com/Amanc77/Datamart-app/internal/services/exports"
	paymentsvc "github.com/Amanc77/Datamart-app/internal/services/payments"
	"github.com/Amanc77/Datamart-app/internal/transport/http/dto"
	httperrors "github.com/Amanc77/Datamart-app/internal/transport/http/errors"
)

const (
	webhookSignatureHeader = "X-Razorpay-Signature"
	maxWebhookBody         = 1 << 20
)

type PaymentHandler struct {
	payments     *paymentsvc.Service
	entitlements *entitlementsvc.Service
	exports      *exportsvc.Service
	logger       *zap.Logger
}

func NewPaymentHandler(
	payments *paymentsvc.Service,
	entitlements *entitlementsvc.Service,
	exports *exportsvc.Service,
	logger *zap.Logger,
) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{
		payments:     payments,
		entitlements: entitlements,
		exports:      exports,
		logger:       logger,
	}
}

func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.payments.Checkout(r.Context(), identity.UserID, paymentsvc.CheckoutInput{
		DatasetType: req.DatasetType,
		Filters:     req.Filters,
		RowCount:    req.RowCount,
	})
	if err != nil {
		h.handlePaymentError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CheckoutResponse{
		Success:     true,
		Free:        result.Free,
		PurchaseID:  result.PurchaseID,
		OrderID:     result.OrderID,
		Amount:      result.AmountMinor,
		AmountUSD:   result.AmountUSD,
		Currency:    result.Currency,
		KeyID:       result.KeyID,
		Name:        result.Name,
		Description: result.Description,
		Prefill: dto.CheckoutPrefill{
			Name:  result.PrefillName,
			Email: result.PrefillEmail,
		},
		Status: result.Status,
	})
}

// Webhook consumes gateway deliveries. The signature covers the raw body,
// so it is read before any decoding. Responses are 200 for everything the
// gateway should not retry, including deliveries for orders this backend
// never issued.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "unreadable request body")
		return
	}

	result, err := h.payments.ConfirmWebhook(r.Context(), rawBody, r.Header.Get(webhookSignatureHeader))
	if err != nil {
		if errors.Is(err, paymentsvc.ErrInvalidSignature) {
			h.logger.Warn("webhook signature rejected",
				zap.String("remote_addr", r.RemoteAddr),
			)
			writeBadRequest(w, "INVALID_SIGNATURE", "webhook signature verification failed")
			return
		}
		h.handlePaymentError(w, err)
		return
	}

	if result.Skipped {
		h.logger.Info("webhook delivery skipped")
	}
	httperrors.Write(w, http.StatusOK, dto.WebhookResponse{Success: true})
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "payment service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.payments.VerifyClient(r.Context(), identity.UserID, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		h.handlePaymentError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VerifyResponse{
		Success:          true,
		PurchaseID:       result.PurchaseID,
		Status:           result.Status,
		AlreadyCompleted: result.AlreadyCompleted,
	})
}

func (h *PaymentHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	if h.entitlements == nil {
		writeInternal(w, "PAYMENT_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	records, err := h.entitlements.ListPurchases(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	items := make([]dto.PurchaseItem, 0, len(records))
	for _, record := range records {
		items = append(items, dto.PurchaseItem{
			ID:          record.ID,
			DatasetType: record.DatasetType,
			RowCount:    record.RowCount,
			Amount:      record.Amount,
			Status:      record.Status,
			CreatedAt:   record.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseListResponse{
		Success:   true,
		Purchases: items,
	})
}

func (h *PaymentHandler) Download(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		writeInternal(w, "EXPORT_SERVICE_UNAVAILABLE", "export service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	export, err := h.exports.Download(r.Context(), identity.UserID, chi.URLParam(r, "purchaseId"))
	if err != nil {
		switch {
		case errors.Is(err, exportsvc.ErrValidation):
			writeBadRequest(w, "INVALID_REQUEST", "invalid purchase id")
		case errors.Is(err, exportsvc.ErrNotAuthorized):
			writeNotFound(w, "PURCHASE_NOT_FOUND", "purchase not found")
		case errors.Is(err, exportsvc.ErrNoData):
			writeNotFound(w, "NO_DATA", "no rows matched the purchase filters")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func (h *PaymentHandler) handlePaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymentsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, paymentsvc.ErrInvalidSignature):
		writeBadRequest(w, "INVALID_SIGNATURE", "payment signature verification failed")
	case errors.Is(err, paymentsvc.ErrPurchaseNotFound):
		writeNotFound(w, "PURCHASE_NOT_FOUND", "purchase not found")
	case errors.Is(err, paymentsvc.ErrGatewayUnavailable):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{Code: "GATEWAY_UNAVAILABLE", Message: "payment gateway unavailable"})
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// Package api serves the donation widget over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"donation-widget/internal/database"
	"donation-widget/internal/donation"
	"donation-widget/internal/embed"
	"donation-widget/internal/health"
	"donation-widget/internal/interfaces"
	"donation-widget/internal/models"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// TransferLister reads back the recorded transfers of a project
type TransferLister interface {
	ListTransfers(ctx context.Context, projectID string, limit, offset int) ([]database.Transfer, error)
}

type App struct {
	Projects  interfaces.ProjectStore
	Transfers TransferLister
	Donations *donation.Service
	Embed     *embed.Generator
	Health    *health.Checker
	Logger    *zerolog.Logger
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": errorBody{Code: code, Message: message}})
}

// fail maps a domain error onto a status and error code
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error().
			Err(err).
			Str("requestId", RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	a.json(w, status, map[string]any{"error": errorBody{Code: code, Message: message, Details: details}})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidProject):
		return http.StatusUnprocessableEntity, "invalid_project"
	case errors.Is(err, models.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "invalid_amount"
	case errors.Is(err, models.ErrNoRecipientsForChain):
		return http.StatusUnprocessableEntity, "no_recipients_for_chain"
	case errors.Is(err, models.ErrAddressFormat):
		return http.StatusUnprocessableEntity, "address_format"
	case errors.Is(err, models.ErrUnsupportedChain):
		return http.StatusUnprocessableEntity, "unsupported_chain"
	case errors.Is(err, models.ErrUnknownEmbedKind):
		return http.StatusBadRequest, "unknown_embed_kind"
	case errors.Is(err, models.ErrProjectNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrSignerRejected):
		return http.StatusBadGateway, "signer_rejected"
	case errors.Is(err, models.ErrTransferFailed):
		return http.StatusBadGateway, "transfer_failed"
	}
	return http.StatusInternalServerError, "internal"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// Chains lists the networks donations can be made on
func (a *App) Chains(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"chains": models.SupportedChains})
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/papertrade/ledger/internal/domain"
	"github.com/papertrade/ledger/internal/export"
	"github.com/papertrade/ledger/internal/fx"
	"github.com/papertrade/ledger/internal/ledger"
	"github.com/papertrade/ledger/internal/price"
	"github.com/papertrade/ledger/internal/store"
	"github.com/papertrade/ledger/internal/valuation"
)

// Handler provides the HTTP endpoints of the trading ledger. It holds
// two oracles: live feeds the trade and check paths, which must never
// execute against a stale quote, and quotes serves the display
// endpoints, where a short cache is acceptable.
type Handler struct {
	ledger       *ledger.Service
	valuator     *valuation.Service
	live         price.Oracle
	quotes       price.Oracle
	converter    *fx.Converter
	exporter     *export.Service
	baseCurrency string
}

// NewHandler creates a new API handler.
func NewHandler(ledgerSvc *ledger.Service, valuator *valuation.Service, live, quotes price.Oracle, converter *fx.Converter, exporter *export.Service, baseCurrency string) *Handler {
	return &Handler{
		ledger:       ledgerSvc,
		valuator:     valuator,
		live:         live,
		quotes:       quotes,
		converter:    converter,
		exporter:     exporter,
		baseCurrency: baseCurrency,
	}
}

// accountSnapshot is the wire form of an account. Transactions are
// returned newest first.
type accountSnapshot struct {
	UserID       string               `json:"userId"`
	Currency     string               `json:"currency"`
	Balance      decimal.Decimal      `json:"balance"`
	Holdings     []domain.Holding     `json:"holdings"`
	Transactions []domain.Transaction `json:"transactions"`
}

func (h *Handler) snapshot(account *domain.Account) accountSnapshot {
	transactions := slices.Clone(account.Transactions)
	slices.Reverse(transactions)
	return accountSnapshot{
		UserID:       account.UserID,
		Currency:     h.baseCurrency,
		Balance:      account.Balance,
		Holdings:     account.Holdings,
		Transactions: transactions,
	}
}

// resolveOrderPrice fetches a fresh quote for an order, bypassing the
// quote cache, and converts it to base currency. An order with no
// selected asset is rejected before the feed is consulted; the
// no-asset rule outranks price availability, same as in the ledger's
// rule set. Any feed or FX failure degrades to
// domain.ErrPriceUnavailable.
func (h *Handler) resolveOrderPrice(r *http.Request, order domain.Order) (decimal.Decimal, error) {
	if order.AssetID == "" || !order.AssetType.Valid() {
		return decimal.Decimal{}, domain.ErrNoAssetSelected
	}
	quote, err := h.live.GetPrice(r.Context(), order.AssetType, order.AssetID)
	if err != nil {
		return decimal.Decimal{}, errors.Join(domain.ErrPriceUnavailable, err)
	}
	converted, err := h.converter.Convert(quote.Price, quote.Currency, h.baseCurrency)
	if err != nil {
		return decimal.Decimal{}, errors.Join(domain.ErrPriceUnavailable, err)
	}
	return converted, nil
}

// GetPortfolio handles GET /api/v1/portfolio/{userId}.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.Portfolio(r.Context(), r.PathValue("userId"))
	if err != nil {
		slog.Error("failed to load portfolio", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot(account))
}

// GetSummary handles GET /api/v1/portfolio/{userId}/summary.
// The optional currency query parameter selects the display currency.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	currency := strings.ToUpper(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = h.baseCurrency
	}

	account, err := h.ledger.Portfolio(r.Context(), r.PathValue("userId"))
	if err != nil {
		slog.Error("failed to load portfolio", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summary, err := h.valuator.Summary(r.Context(), account, currency)
	if errors.Is(err, fx.ErrRateUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "no exchange rate for "+currency)
		return
	}
	if err != nil {
		slog.Error("failed to compute summary", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// PostTrade handles POST /api/v1/portfolio/{userId}/trade. The price
// in the request body is advisory only: execution always happens at a
// quote fetched here, immediately before the ledger call, so the
// validation and the execution see the same live price.
func (h *Handler) PostTrade(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid trade request body")
		return
	}

	livePrice, err := h.resolveOrderPrice(r, order)
	if err != nil {
		writeTradeError(w, err)
		return
	}
	order.Price = livePrice

	account, err := h.ledger.ExecuteTrade(r.Context(), r.PathValue("userId"), order)
	if err != nil {
		writeTradeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot(account))
}

// checkResponse is the pre-submit gate verdict.
type checkResponse struct {
	OK      bool             `json:"ok"`
	Reason  string           `json:"reason,omitempty"`
	Message string           `json:"message,omitempty"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

// GetCheck handles GET /api/v1/portfolio/{userId}/check. It runs the
// same rule set a trade submission would, against a fresh quote, so
// the UI can gate its action button without duplicating the rules.
func (h *Handler) GetCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order := domain.Order{
		Side:      domain.TradeSide(q.Get("type")),
		AssetType: domain.AssetType(q.Get("assetType")),
		AssetID:   q.Get("assetId"),
		Symbol:    q.Get("symbol"),
		Quantity:  domain.SafeParse(q.Get("quantity")),
	}

	livePrice, err := h.resolveOrderPrice(r, order)
	if err == nil {
		err = h.ledger.Check(r.Context(), r.PathValue("userId"), order, livePrice)
	}
	if err != nil {
		code := domain.ReasonCode(err)
		if code == "" {
			slog.Error("trade check failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, checkResponse{OK: false, Reason: code, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{OK: true, Price: &livePrice})
}

// PostReset handles POST /api/v1/portfolio/{userId}/reset.
func (h *Handler) PostReset(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.Reset(r.Context(), r.PathValue("userId"))
	if err != nil {
		slog.Error("failed to reset account", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot(account))
}

// GetQuote handles GET /api/v1/quotes/{assetType}/{assetId}. The
// optional currency parameter converts the quote for display.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	assetType := domain.AssetType(r.PathValue("assetType"))
	assetID := r.PathValue("assetId")
	if !assetType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown asset type")
		return
	}

	quote, err := h.quotes.GetPrice(r.Context(), assetType, assetID)
	if err != nil {
		writeTradeError(w, errors.Join(domain.ErrPriceUnavailable, err))
		return
	}

	if currency := strings.ToUpper(r.URL.Query().Get("currency")); currency != "" && currency != quote.Currency {
		converted, err := h.converter.Convert(quote.Price, quote.Currency, currency)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "no exchange rate for "+currency)
			return
		}
		quote.Price = converted
		quote.Currency = currency
	}
	writeJSON(w, http.StatusOK, quote)
}

// GetStatement handles GET /api/v1/portfolio/{userId}/statement.xlsx.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	data, err := h.exporter.Statement(r.Context(), userID)
	if err != nil {
		slog.Error("failed to build statement", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="statement-`+userID+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write statement body", "error", err)
	}
}

// writeTradeError maps a trade rejection to its HTTP status and wire
// code. Rejections are request-level: the account is untouched and
// the client may retry immediately with corrected input.
func writeTradeError(w http.ResponseWriter, err error) {
	code := domain.ReasonCode(err)
	var status int
	switch {
	case errors.Is(err, domain.ErrNoAssetSelected),
		errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrInvalidQuantity):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPriceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientHoldings),
		errors.Is(err, domain.ErrAssetNotHeld):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "AccountNotFound", "error": "account not found"})
		return
	default:
		slog.Error("trade failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, status, map[string]string{"code": code, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type ListCurrenciesRequest struct {
	Page         int
	Size         int
	Search       string
	WithNetworks bool
	All          bool
}

func (r ListCurrenciesRequest) Validate() error {
	if r.Page < 0 {
		return validationError("page", "page must be >= 0")
	}
	if r.Size < 0 {
		return validationError("size", "size must be >= 0")
	}
	return nil
}

func (r ListCurrenciesRequest) query() map[string]any {
	return map[string]any{
		"page":         optionalInt(r.Page),
		"size":         optionalInt(r.Size),
		"search":       optionalString(r.Search),
		"withNetworks": optionalFlag(r.WithNetworks),
		"all":          optionalFlag(r.All),
	}
}

type ListNetworksRequest struct {
	Code string
}

func (r ListNetworksRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return validationError("code", "currency code is required")
	}
	return nil
}

// RateRequest quotes an exchange. Exactly one of Amount (what the user sends)
// or WithdrawalAmount (what the user receives) must be set.
type RateRequest struct {
	CoinFrom         string
	NetworkFrom      string
	CoinTo           string
	NetworkTo        string
	Amount           string
	WithdrawalAmount string
	RateType         RateType
}

func (r RateRequest) Validate() error {
	if strings.TrimSpace(r.CoinFrom) == "" {
		return validationError("coinFrom", "coinFrom is required")
	}
	if strings.TrimSpace(r.CoinTo) == "" {
		return validationError("coinTo", "coinTo is required")
	}
	if err := validateAmounts(r.Amount, r.WithdrawalAmount); err != nil {
		return err
	}
	if !r.RateType.Valid() {
		return validationError("rateType", "rateType must be float or fixed")
	}
	return nil
}

func (r RateRequest) query() map[string]any {
	return map[string]any{
		"coinFrom":         strings.TrimSpace(r.CoinFrom),
		"networkFrom":      optionalString(r.NetworkFrom),
		"coinTo":           strings.TrimSpace(r.CoinTo),
		"networkTo":        optionalString(r.NetworkTo),
		"amount":           optionalString(r.Amount),
		"withdrawalAmount": optionalString(r.WithdrawalAmount),
		"rateType":         optionalString(string(r.RateType)),
	}
}

type CreateTransactionRequest struct {
	CoinFrom          string
	NetworkFrom       string
	CoinTo            string
	NetworkTo         string
	Amount            string
	WithdrawalAmount  string
	WithdrawalAddress string
	WithdrawalExtraID string
	RateType          RateType
	RefundAddress     string
	RefundExtraID     string
}

func (r CreateTransactionRequest) Validate() error {
	if strings.TrimSpace(r.CoinFrom) == "" {
		return validationError("coinFrom", "coinFrom is required")
	}
	if strings.TrimSpace(r.CoinTo) == "" {
		return validationError("coinTo", "coinTo is required")
	}
	if err := validateAmounts(r.Amount, r.WithdrawalAmount); err != nil {
		return err
	}
	if strings.TrimSpace(r.WithdrawalAddress) == "" {
		return validationError("withdrawalAddress", "withdrawalAddress is required")
	}
	if !r.RateType.Valid() {
		return validationError("rateType", "rateType must be float or fixed")
	}
	return nil
}

type createTransactionBody struct {
	CoinFrom          string      `json:"coinFrom"`
	NetworkFrom       string      `json:"networkFrom,omitempty"`
	CoinTo            string      `json:"coinTo"`
	NetworkTo         string      `json:"networkTo,omitempty"`
	Amount            json.Number `json:"amount,omitempty"`
	WithdrawalAmount  json.Number `json:"withdrawalAmount,omitempty"`
	WithdrawalAddress string      `json:"withdrawalAddress"`
	WithdrawalExtraID string      `json:"withdrawalExtraId,omitempty"`
	RateType          RateType    `json:"rateType,omitempty"`
	RefundAddress     string      `json:"refundAddress,omitempty"`
	RefundExtraID     string      `json:"refundExtraId,omitempty"`
}

func (r CreateTransactionRequest) body() ([]byte, error) {
	return json.Marshal(createTransactionBody{
		CoinFrom:          strings.TrimSpace(r.CoinFrom),
		NetworkFrom:       strings.TrimSpace(r.NetworkFrom),
		CoinTo:            strings.TrimSpace(r.CoinTo),
		NetworkTo:         strings.TrimSpace(r.NetworkTo),
		Amount:            json.Number(strings.TrimSpace(r.Amount)),
		WithdrawalAmount:  json.Number(strings.TrimSpace(r.WithdrawalAmount)),
		WithdrawalAddress: strings.TrimSpace(r.WithdrawalAddress),
		WithdrawalExtraID: strings.TrimSpace(r.WithdrawalExtraID),
		RateType:          r.RateType,
		RefundAddress:     strings.TrimSpace(r.RefundAddress),
		RefundExtraID:     strings.TrimSpace(r.RefundExtraID),
	})
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

type ListTransactionsRequest struct {
	Page     int
	Size     int
	Search   string
	DateFrom time.Time
	DateTo   time.Time
	Statuses []TransactionStatus
	Order    SortOrder
	Sort     string
}

func (r ListTransactionsRequest) Validate() error {
	if r.Page < 0 {
		return validationError("page", "page must be >= 0")
	}
	if r.Size < 0 {
		return validationError("size", "size must be >= 0")
	}
	switch r.Order {
	case "", SortOrderAsc, SortOrderDesc:
	default:
		return validationError("order", "order must be asc or desc")
	}
	if !r.DateFrom.IsZero() && !r.DateTo.IsZero() && r.DateTo.Before(r.DateFrom) {
		return validationError("dateTo", "dateTo must not be before dateFrom")
	}
	return nil
}

func (r ListTransactionsRequest) query() map[string]any {
	statuses := make([]string, 0, len(r.Statuses))
	for _, status := range r.Statuses {
		if trimmed := strings.TrimSpace(string(status)); trimmed != "" {
			statuses = append(statuses, trimmed)
		}
	}
	return map[string]any{
		"page":     optionalInt(r.Page),
		"size":     optionalInt(r.Size),
		"search":   optionalString(r.Search),
		"dateFrom": optionalTime(r.DateFrom),
		"dateTo":   optionalTime(r.DateTo),
		"statuses": optionalString(strings.Join(statuses, ",")),
		"order":    optionalString(string(r.Order)),
		"sort":     optionalString(r.Sort),
	}
}

// validateAmounts requires exactly one of amount and withdrawalAmount, and
// that the one given is a positive decimal.
func validateAmounts(amount string, withdrawalAmount string) error {
	amount = strings.TrimSpace(amount)
	withdrawalAmount = strings.TrimSpace(withdrawalAmount)
	switch {
	case amount == "" && withdrawalAmount == "":
		return validationError("amount", "amount or withdrawalAmount is required")
	case amount != "" && withdrawalAmount != "":
		return validationError("amount", "amount and withdrawalAmount are mutually exclusive")
	case amount != "":
		return validatePositiveDecimal("amount", amount)
	default:
		return validatePositiveDecimal("withdrawalAmount", withdrawalAmount)
	}
}

func validatePositiveDecimal(field string, value string) error {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 || !json.Valid([]byte(value)) {
		return validationError(field, field+" must be a positive decimal")
	}
	return nil
}

func optionalString(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

func optionalInt(value int) any {
	if value <= 0 {
		return nil
	}
	return value
}

func optionalFlag(value bool) any {
	if !value {
		return nil
	}
	return true
}

func optionalTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339)
}

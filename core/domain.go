package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Amount is a decimal quantity that the API sends either as a JSON number or
// as a numeric string.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = 0
		return nil
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*a = 0
			return nil
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("core: invalid amount %q: %w", text, err)
		}
		*a = Amount(value)
		return nil
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*a = Amount(value)
	return nil
}

func (a Amount) Float64() float64 { return float64(a) }

func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}

type RateType string

const (
	RateTypeFloat RateType = "float"
	RateTypeFixed RateType = "fixed"
)

func (t RateType) Valid() bool {
	switch t {
	case "", RateTypeFloat, RateTypeFixed:
		return true
	default:
		return false
	}
}

type TransactionStatus string

const (
	TransactionStatusWait         TransactionStatus = "wait"
	TransactionStatusConfirmation TransactionStatus = "confirmation"
	TransactionStatusConfirmed    TransactionStatus = "confirmed"
	TransactionStatusExchanging   TransactionStatus = "exchanging"
	TransactionStatusSending      TransactionStatus = "sending"
	TransactionStatusSuccess      TransactionStatus = "success"
	TransactionStatusOverdue      TransactionStatus = "overdue"
	TransactionStatusRefunded     TransactionStatus = "refunded"
)

// Final reports whether no further status transitions are expected.
func (s TransactionStatus) Final() bool {
	switch s {
	case TransactionStatusSuccess, TransactionStatusOverdue, TransactionStatusRefunded:
		return true
	default:
		return false
	}
}

// Network describes one chain a currency can be sent over.
type Network struct {
	Network          string  `json:"network"`
	Name             string  `json:"name"`
	ShortName        string  `json:"shortName,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	AddressRegex     string  `json:"addressRegex,omitempty"`
	IsDefault        bool    `json:"isDefault"`
	BlockExplorer    string  `json:"blockExplorer,omitempty"`
	DepositMinAmount *Amount `json:"depositMinAmount,omitempty"`
	MemoNeeded       bool    `json:"memoNeeded"`
	MemoName         string  `json:"memoName,omitempty"`
	MemoRegex        string  `json:"memoRegex,omitempty"`
	Precision        int     `json:"precision,omitempty"`
	Decimal          *int    `json:"decimal,omitempty"`
	Contract         *string `json:"contract,omitempty"`
	Icon             *string `json:"icon,omitempty"`
}

// Currency is one entry of the currency listing. Networks is only populated
// when the listing was requested with WithNetworks.
type Currency struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Networks []Network `json:"networks,omitempty"`
}

type CurrencyPage struct {
	Data  []Currency `json:"data"`
	Count int        `json:"count"`
}

// NetworkPage accepts both the paged envelope and a bare array.
type NetworkPage struct {
	Data  []Network `json:"data"`
	Count int       `json:"count"`
}

func (p *NetworkPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Network
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		p.Data = items
		p.Count = len(items)
		return nil
	}
	type envelope NetworkPage
	var out envelope
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*p = NetworkPage(out)
	return nil
}

type Rate struct {
	FromAmount  Amount  `json:"fromAmount"`
	ToAmount    Amount  `json:"toAmount"`
	Rate        Amount  `json:"rate"`
	Message     *string `json:"message"`
	MinAmount   Amount  `json:"minAmount"`
	WithdrawMin Amount  `json:"withdrawMin"`
	MaxAmount   Amount  `json:"maxAmount"`
}

type TransactionCoin struct {
	CoinCode         string `json:"coinCode"`
	CoinName         string `json:"coinName,omitempty"`
	Network          string `json:"network,omitempty"`
	NetworkName      string `json:"networkName,omitempty"`
	NetworkShortName string `json:"networkShortName,omitempty"`
	Icon             string `json:"icon,omitempty"`
	MemoName         string `json:"memoName,omitempty"`
}

type TransactionHash struct {
	Hash *string `json:"hash"`
	Link *string `json:"link"`
}

type Transaction struct {
	ID                string            `json:"id"`
	Amount            Amount            `json:"amount"`
	AmountTo          Amount            `json:"amountTo"`
	CoinFrom          TransactionCoin   `json:"coinFrom"`
	CoinTo            TransactionCoin   `json:"coinTo"`
	Comment           *string           `json:"comment,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	DepositAddress    string            `json:"depositAddress"`
	DepositExtraID    *string           `json:"depositExtraId,omitempty"`
	WithdrawalAddress string            `json:"withdrawalAddress"`
	WithdrawalExtraID *string           `json:"withdrawalExtraId,omitempty"`
	RefundAddress     *string           `json:"refundAddress,omitempty"`
	RefundExtraID     *string           `json:"refundExtraId,omitempty"`
	HashIn            TransactionHash   `json:"hashIn"`
	HashOut           TransactionHash   `json:"hashOut"`
	Rate              Amount            `json:"rate"`
	RateType          RateType          `json:"rateType"`
	Status            TransactionStatus `json:"status"`
	Email             *string           `json:"email,omitempty"`
}

type TransactionPage struct {
	Data  []Transaction `json:"data"`
	Count int           `json:"count"`
}

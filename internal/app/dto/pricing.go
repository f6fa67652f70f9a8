package dto

import (
	"rentora/internal/domain/pricing"
	"rentora/internal/domain/shared/money"
)

type Quote struct {
	Kind          string `json:"kind"`
	Nights        int    `json:"nights,omitempty"`
	Months        int    `json:"months,omitempty"`
	Base          Money  `json:"base"`
	Fee           Money  `json:"fee"`
	Tax           Money  `json:"tax"`
	Subtotal      Money  `json:"subtotal"`
	Discount      Money  `json:"discount"`
	Total         Money  `json:"total"`
	ContractValue Money  `json:"contract_value"`
	PromoCode     string `json:"promo_code,omitempty"`
	PromoPercent  int64  `json:"promo_percent,omitempty"`
}

func NewQuote(q pricing.Quote) Quote {
	return Quote{
		Kind:          string(q.Kind),
		Nights:        q.Nights,
		Months:        q.Months,
		Base:          newMoney(q.Base),
		Fee:           newMoney(q.Fee),
		Tax:           newMoney(q.Tax),
		Subtotal:      newMoney(q.Subtotal),
		Discount:      newMoney(q.Discount),
		Total:         newMoney(q.Total),
		ContractValue: newMoney(q.ContractValue),
		PromoCode:     q.PromoCode,
		PromoPercent:  q.PromoPercent,
	}
}

func newMoney(m money.Money) Money {
	return Money{Amount: m.Amount, Currency: m.Currency}
}

package domain

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

type Order struct {
	ID        int64   `json:"id" csv:"id"`
	Customer  string  `json:"customer" csv:"customer"`
	Email     string  `json:"email" csv:"email"`
	Total     float64 `json:"total" csv:"total"`
	Status    string  `json:"status" csv:"status"`
	CreatedAt string  `json:"created_at" csv:"created_at"`
}

// UnmarshalJSON tolerates the id being sent as order_id and numeric strings
// for the total.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id := raw["id"]
	if id == nil {
		id = raw["order_id"]
	}
	customer := raw["customer"]
	if customer == nil {
		customer = raw["customer_name"]
	}
	*o = Order{
		ID:        lenientInt(id),
		Customer:  cast.ToString(customer),
		Email:     cast.ToString(raw["email"]),
		Total:     lenientFloat(raw["total"]),
		Status:    cast.ToString(raw["status"]),
		CreatedAt: cast.ToString(raw["created_at"]),
	}
	return nil
}

// OrderQuery filters the admin order list. A status of "todos" or "all"
// is not sent to the backend.
type OrderQuery struct {
	Status string `form:"status"`
	Query  string `form:"q"`
	From   string `form:"from"`
	To     string `form:"to"`
}

func (q OrderQuery) Normalize() OrderQuery {
	q.Query = strings.TrimSpace(q.Query)
	if IsAllCategory(q.Status) {
		q.Status = ""
	}
	return q
}

type SalesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func (sp *SalesPoint) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sp.Label = cast.ToString(raw["label"])
	sp.Value = lenientFloat(raw["value"])
	return nil
}

// SalesStats are the admin dashboard KPIs. Missing values are zero.
type SalesStats struct {
	Revenue   float64      `json:"ingresos"`
	Orders    float64      `json:"ordenes"`
	AvgTicket float64      `json:"ticket"`
	ConvRate  float64      `json:"rate"`
	Series    []SalesPoint `json:"series"`
	Range     string       `json:"range,omitempty"`
}

func (s *SalesStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		Revenue   interface{}  `json:"ingresos"`
		Orders    interface{}  `json:"ordenes"`
		AvgTicket interface{}  `json:"ticket"`
		ConvRate  interface{}  `json:"rate"`
		Series    []SalesPoint `json:"series"`
		Range     string       `json:"range"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SalesStats{
		Revenue:   lenientFloat(raw.Revenue),
		Orders:    lenientFloat(raw.Orders),
		AvgTicket: lenientFloat(raw.AvgTicket),
		ConvRate:  lenientFloat(raw.ConvRate),
		Series:    raw.Series,
		Range:     raw.Range,
	}
	if s.Series == nil {
		s.Series = []SalesPoint{}
	}
	return nil
}

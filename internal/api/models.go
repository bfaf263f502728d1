package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/susu3304/taru/internal/barrel"
)

// Field names follow the JSON the web frontend consumes.

type participantResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	TotalBeer float64 `json:"totalBeer"`
}

type sessionResponse struct {
	Name        string             `json:"name"`
	Buyer       string             `json:"buyer"`
	Price       float64            `json:"price"`
	Volume      float64            `json:"volume"`
	Open        bool               `json:"open"`
	StartTotals map[string]float64 `json:"startTotals"`
	OpenedAt    int64              `json:"openedAt"`
}

type noSessionResponse struct {
	Open bool `json:"open"`
}

type startResponse struct {
	Status  string          `json:"status"`
	Session sessionResponse `json:"barrelSession"`
}

type historyResponse struct {
	Name      string             `json:"name"`
	Buyer     string             `json:"buyer"`
	Price     float64            `json:"price"`
	Volume    float64            `json:"volume"`
	Consumed  map[string]float64 `json:"consumed"`
	UserOwes  map[string]float64 `json:"userOwes"`
	PricePerL float64            `json:"pricePerL"`
	ClosedAt  int64              `json:"closedAt"`
	Open      bool               `json:"open"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

type registerRequest struct {
	Name string `json:"name"`
}

type consumptionRequest struct {
	UserID string       `json:"userId"`
	Amount *numberValue `json:"amount"`
}

type startRequest struct {
	Name   string       `json:"name"`
	Buyer  string       `json:"buyer"`
	Price  *numberValue `json:"price"`
	Volume *numberValue `json:"volume"`
}

// numberValue accepts a JSON number or a numeric string ("1.5").
type numberValue float64

func (v *numberValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	*v = numberValue(f)
	return nil
}

func (v *numberValue) float() float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

func toParticipantResponse(p barrel.Participant) participantResponse {
	return participantResponse{ID: p.ID, Name: p.Name, TotalBeer: p.TotalConsumed}
}

func toParticipantResponses(ps []barrel.Participant) []participantResponse {
	out := make([]participantResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toParticipantResponse(p))
	}
	return out
}

func toSessionResponse(s barrel.Session) sessionResponse {
	return sessionResponse{
		Name:        s.Label,
		Buyer:       s.Payer,
		Price:       s.UnitPrice,
		Volume:      s.NominalVolume,
		Open:        s.Status == barrel.StatusOpen,
		StartTotals: s.Baseline,
		OpenedAt:    s.OpenedAt.UnixMilli(),
	}
}

func toHistoryResponse(r barrel.HistoryRecord) historyResponse {
	return historyResponse{
		Name:      r.Label,
		Buyer:     r.Payer,
		Price:     r.UnitPrice,
		Volume:    r.NominalVolume,
		Consumed:  r.Consumed,
		UserOwes:  r.Owed,
		PricePerL: r.EffectivePricePerUnit,
		ClosedAt:  r.ClosedAt.UnixMilli(),
		Open:      r.Open(),
	}
}

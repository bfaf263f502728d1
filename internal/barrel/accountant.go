package barrel

import (
	"math"
	"strings"
	"time"
)

// Accountant owns at most one open Session. Closing returns it to the
// no-session state and leaves a Closed record in the history.
type Accountant struct {
	ledger  *Ledger
	history *History
	session *Session
	now     func() time.Time
}

func NewAccountant(ledger *Ledger, history *History, now func() time.Time) *Accountant {
	if now == nil {
		now = time.Now
	}
	return &Accountant{ledger: ledger, history: history, now: now}
}

func (a *Accountant) Open(label, payer string, unitPrice, nominalVolume float64) (Session, error) {
	if a.session != nil {
		return Session{}, ErrSessionOpen
	}
	if strings.TrimSpace(payer) == "" {
		return Session{}, invalid("payer", "must not be empty")
	}
	if err := validatePositive("price", unitPrice); err != nil {
		return Session{}, err
	}
	if err := validatePositive("volume", nominalVolume); err != nil {
		return Session{}, err
	}
	if math.IsInf(unitPrice/nominalVolume, 0) {
		return Session{}, invalid("volume", "too small for the price")
	}

	sess := &Session{
		Label:         label,
		Payer:         payer,
		UnitPrice:     unitPrice,
		NominalVolume: nominalVolume,
		Status:        StatusOpen,
		Baseline:      a.ledger.Totals(),
		OpenedAt:      a.now(),
	}
	a.session = sess

	a.history.Prepend(HistoryRecord{
		Label:                 sess.Label,
		Payer:                 sess.Payer,
		UnitPrice:             sess.UnitPrice,
		NominalVolume:         sess.NominalVolume,
		Consumed:              map[string]float64{},
		Owed:                  map[string]float64{},
		EffectivePricePerUnit: sess.NominalPricePerUnit(),
		OpenedAt:              sess.OpenedAt,
		ClosedAt:              sess.OpenedAt,
		Status:                StatusOpen,
	})
	return sess.clone(), nil
}

// RecordConsumption records amount for id and refreshes the live record. An
// amount whose live or closing settlement would not be finite is rejected
// before anything changes.
func (a *Accountant) RecordConsumption(id string, amount float64) (Participant, error) {
	next, err := a.ledger.nextTotal(id, amount)
	if err != nil {
		return Participant{}, err
	}
	if err := a.checkSettlement(id, next); err != nil {
		return Participant{}, err
	}
	p, err := a.ledger.RecordConsumption(id, amount)
	if err != nil {
		return Participant{}, err
	}
	a.RecomputeLive()
	return p, nil
}

func (a *Accountant) checkSettlement(id string, total float64) error {
	if a.session == nil {
		return nil
	}
	consumed := a.consumedInSession()
	consumed[id] = math.Max(0, total-a.session.Baseline[id])

	closing := Settle(a.session.UnitPrice, a.session.NominalVolume, consumed)
	live := priceAmounts(consumed, a.session.NominalPricePerUnit())
	if !isFinite(closing.TotalConsumed) || !isFinite(closing.PricePerUnit) ||
		!allFinite(closing.Owed) || !allFinite(live) {
		return invalid("amount", "would overflow the session settlement")
	}
	return nil
}

// RecomputeLive refreshes the Open history record from the ledger, priced
// at the nominal per-unit price. It does nothing without an open session.
func (a *Accountant) RecomputeLive() {
	if a.session == nil {
		return
	}
	consumed := a.consumedInSession()
	a.history.refreshHead(consumed, priceAmounts(consumed, a.session.NominalPricePerUnit()))
}

func (a *Accountant) Close() (HistoryRecord, error) {
	if a.session == nil {
		return HistoryRecord{}, ErrNoSession
	}
	sess := a.session

	a.history.RemoveHeadIfOpen()
	settlement := Settle(sess.UnitPrice, sess.NominalVolume, a.consumedInSession())

	rec := HistoryRecord{
		Label:                 sess.Label,
		Payer:                 sess.Payer,
		UnitPrice:             sess.UnitPrice,
		NominalVolume:         sess.NominalVolume,
		Consumed:              settlement.Consumed,
		Owed:                  settlement.Owed,
		EffectivePricePerUnit: settlement.PricePerUnit,
		OpenedAt:              sess.OpenedAt,
		ClosedAt:              a.now(),
		Status:                StatusClosed,
	}
	a.history.Prepend(rec)

	a.session = nil
	a.ledger.ResetAll()
	return rec.clone(), nil
}

func (a *Accountant) Current() (Session, bool) {
	if a.session == nil {
		return Session{}, false
	}
	return a.session.clone(), true
}

// Discard drops the open session without settling it.
func (a *Accountant) Discard() {
	a.session = nil
}

// consumedInSession computes each current participant's delta against the
// baseline. Participants registered after open have an implicit baseline of 0.
func (a *Accountant) consumedInSession() map[string]float64 {
	consumed := make(map[string]float64, a.ledger.Len())
	for _, p := range a.ledger.participants {
		consumed[p.ID] = math.Max(0, p.TotalConsumed-a.session.Baseline[p.ID])
	}
	return consumed
}

func validatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return invalid(field, "must be a positive number")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(amounts map[string]float64) bool {
	for _, v := range amounts {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

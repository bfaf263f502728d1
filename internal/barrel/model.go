package barrel

import "time"

type Participant struct {
	ID            string
	Name          string
	TotalConsumed float64
}

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Session is a single priced purchase shared by whoever drinks from it.
// Baseline is captured at open time and never changes afterwards.
type Session struct {
	Label         string
	Payer         string
	UnitPrice     float64
	NominalVolume float64
	Status        Status
	Baseline      map[string]float64
	OpenedAt      time.Time
}

// NominalPricePerUnit is the price used for live (pre-close) figures.
func (s Session) NominalPricePerUnit() float64 {
	return s.UnitPrice / s.NominalVolume
}

type HistoryRecord struct {
	Label                 string
	Payer                 string
	UnitPrice             float64
	NominalVolume         float64
	Consumed              map[string]float64
	Owed                  map[string]float64
	EffectivePricePerUnit float64
	OpenedAt              time.Time
	ClosedAt              time.Time
	Status                Status
}

// Open reports whether the record is the live view of the current session.
func (r HistoryRecord) Open() bool {
	return r.Status == StatusOpen
}

func (r HistoryRecord) clone() HistoryRecord {
	r.Consumed = cloneAmounts(r.Consumed)
	r.Owed = cloneAmounts(r.Owed)
	return r
}

func (s Session) clone() Session {
	s.Baseline = cloneAmounts(s.Baseline)
	return s
}

func cloneAmounts(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package barrel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/susu3304/taru/internal/metrics"
)

// Archiver receives every closed settlement. Archiving happens after the
// close has been applied, so an archive failure never undoes a close.
type Archiver interface {
	ArchiveSettlement(ctx context.Context, rec HistoryRecord) error
}

// Service is the process-wide accounting object. Every operation runs under
// one mutex, so a consumption event and its live recompute are never
// interleaved with a close.
type Service struct {
	mu         sync.Mutex
	ledger     *Ledger
	history    *History
	accountant *Accountant
	archiver   Archiver
	logger     zerolog.Logger

	archiveTimeout time.Duration
}

// DefaultArchiveTimeout must stay below Discord's 3s interaction deadline.
const DefaultArchiveTimeout = 2 * time.Second

type options struct {
	now            func() time.Time
	newID          IDGenerator
	archiver       Archiver
	archiveTimeout time.Duration
	logger         zerolog.Logger
}

type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) { o.newID = gen }
}

func WithArchiver(a Archiver) Option {
	return func(o *options) { o.archiver = a }
}

// WithArchiveTimeout bounds each archive write. Non-positive values keep the default.
func WithArchiveTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.archiveTimeout = d
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func NewService(opts ...Option) *Service {
	o := options{logger: zerolog.Nop(), archiveTimeout: DefaultArchiveTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	ledger := NewLedger(o.newID)
	history := NewHistory()
	return &Service{
		ledger:     ledger,
		history:    history,
		accountant: NewAccountant(ledger, history, o.now),
		archiver:   o.archiver,
		logger:     o.logger.With().Str("component", "barrel").Logger(),

		archiveTimeout: o.archiveTimeout,
	}
}

func (s *Service) RegisterParticipant(name string) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.ledger.Register(name)
	if err != nil {
		return Participant{}, s.reject("register", err)
	}
	metrics.Participants.Set(float64(s.ledger.Len()))
	s.logger.Debug().Str("participant_id", p.ID).Str("name", p.Name).Msg("Participant registered")
	return p, nil
}

func (s *Service) RemoveParticipant(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.Remove(id) {
		return
	}
	s.accountant.RecomputeLive()
	metrics.Participants.Set(float64(s.ledger.Len()))
	s.logger.Debug().Str("participant_id", id).Msg("Participant removed")
}

// Participant looks up a single participant by id.
func (s *Service) Participant(id string) (Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(id)
}

func (s *Service) RecordConsumption(id string, amount float64) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.accountant.RecordConsumption(id, amount)
	if err != nil {
		return Participant{}, s.reject("consume", err)
	}

	metrics.ConsumptionEvents.Inc()
	metrics.ConsumptionAmount.Add(amount)
	s.logger.Debug().
		Str("participant_id", id).
		Float64("amount", amount).
		Float64("total", p.TotalConsumed).
		Msg("Consumption recorded")
	return p, nil
}

func (s *Service) ListParticipants() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.List()
}

func (s *Service) Leaderboard() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Leaderboard()
}

func (s *Service) OpenSession(label, payer string, unitPrice, nominalVolume float64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.accountant.Open(label, payer, unitPrice, nominalVolume)
	if err != nil {
		return Session{}, s.reject("open", err)
	}

	metrics.SessionsOpened.Inc()
	metrics.SessionOpen.Set(1)
	s.logger.Info().
		Str("label", sess.Label).
		Str("payer", sess.Payer).
		Float64("price", sess.UnitPrice).
		Float64("volume", sess.NominalVolume).
		Int("participants", len(sess.Baseline)).
		Msg("Session opened")
	return sess, nil
}

// CloseSession settles the open session, resets every participant's counter
// and hands the closed record to the archiver, if any.
func (s *Service) CloseSession(ctx context.Context) (HistoryRecord, error) {
	s.mu.Lock()
	rec, err := s.accountant.Close()
	if err != nil {
		err = s.reject("close", err)
		s.mu.Unlock()
		return HistoryRecord{}, err
	}
	metrics.SessionsClosed.Inc()
	metrics.SessionOpen.Set(0)
	metrics.SettlementPricePerUnit.Observe(rec.EffectivePricePerUnit)
	s.mu.Unlock()

	s.logger.Info().
		Str("label", rec.Label).
		Str("payer", rec.Payer).
		Float64("price_per_unit", rec.EffectivePricePerUnit).
		Int("consumers", len(rec.Consumed)).
		Msg("Session closed")

	if s.archiver != nil {
		s.archive(ctx, rec.clone())
	}
	return rec, nil
}

// archive ignores the caller's cancellation and is bounded by archiveTimeout.
func (s *Service) archive(ctx context.Context, rec HistoryRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.archiveTimeout)
	defer cancel()

	if err := s.archiver.ArchiveSettlement(ctx, rec); err != nil {
		metrics.ArchiveErrors.Inc()
		s.logger.Error().Err(err).Str("label", rec.Label).Msg("Failed to archive settlement")
	}
}

func (s *Service) CurrentSession() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountant.Current()
}

// ListHistory returns records newest first. The open session, if any, is the
// head record and is refreshed before the copy is taken.
func (s *Service) ListHistory() []HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accountant.RecomputeLive()
	return s.history.List()
}

// ResetAll wipes participants, the open session and the history.
func (s *Service) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.ClearAll()
	s.accountant.Discard()
	s.history.Clear()

	metrics.Participants.Set(0)
	metrics.SessionOpen.Set(0)
	s.logger.Info().Msg("All data cleared")
}

func (s *Service) reject(op string, err error) error {
	metrics.RejectedOperations.WithLabelValues(op, ErrorKind(err)).Inc()
	s.logger.Debug().Err(err).Str("op", op).Msg("Operation rejected")
	return err
}

// ErrorKind classifies err into the taxonomy used by transports.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	case IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}

// Package session drives the form lifecycles of the console. A session owns
// the raw field values while a modal is open, runs intake validation on
// submit, performs the gateway call, and reconciles the record store from the
// response. The console runs on a single event loop, so the guards here are
// reentrancy guards, not locks.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kresfloral/kres-console/internal/intake"
	"github.com/kresfloral/kres-console/internal/records"
	pkgerrors "github.com/kresfloral/kres-console/pkg/errors"
	"github.com/kresfloral/kres-console/pkg/logger"
)

// Phase is where a form session sits in its lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// Mode distinguishes a blank form from one pre-populated for editing.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

var (
	// ErrSubmitInFlight signals a duplicate submit while one is pending.
	// The caller drops it silently; the first submit proceeds alone.
	ErrSubmitInFlight = errors.New("submit already in flight")

	// ErrSuperseded signals that the session was closed or reopened while
	// the call was in flight. The response has been discarded.
	ErrSuperseded = errors.New("session superseded before the response arrived")
)

// state is the lifecycle core shared by the form sessions. The epoch bumps on
// every close/reopen so a stale response can be recognized and dropped.
type state struct {
	id      string
	phase   Phase
	mode    Mode
	epoch   uint64
	message string
	logg    *logger.Logger
}

func newState(logg *logger.Logger) state {
	return state{
		id:    uuid.NewString(),
		phase: PhaseIdle,
		mode:  ModeCreate,
		logg:  logg,
	}
}

// ID returns the session identity used in log correlation.
func (s *state) ID() string { return s.id }

// Phase returns the current lifecycle phase.
func (s *state) Phase() Phase { return s.phase }

// Mode reports whether the session edits an existing record.
func (s *state) Mode() Mode { return s.mode }

// Message returns the last user-facing status line, success or failure.
func (s *state) Message() string { return s.message }

// open moves into editing and invalidates any in-flight call.
func (s *state) open(mode Mode) {
	s.epoch++
	s.phase = PhaseEditing
	s.mode = mode
	s.message = ""
}

// close returns to idle and invalidates any in-flight call.
func (s *state) close() {
	s.epoch++
	s.phase = PhaseIdle
	s.message = ""
}

// resumeEditing brings an errored session back to the form so the user can
// retry. Other phases are left alone.
func (s *state) resumeEditing() {
	if s.phase == PhaseError {
		s.phase = PhaseEditing
	}
}

// enterSubmitting flips to submitting and captures the epoch the response
// must still match to be applied. Callers validate first: a form that fails
// intake never leaves editing.
func (s *state) enterSubmitting() uint64 {
	s.phase = PhaseSubmitting
	return s.epoch
}

// settle applies the outcome of a finished call unless the session moved on
// while it was in flight.
func (s *state) settle(ctx context.Context, epoch uint64, err error) error {
	if epoch != s.epoch {
		if s.logg != nil {
			s.logg.Debug(s.logg.WithSessionID(ctx, s.id), "discarding superseded response")
		}
		return ErrSuperseded
	}
	if err != nil {
		s.phase = PhaseError
		s.message = pkgerrors.UserMessage(err)
		return err
	}
	s.phase = PhaseSuccess
	return nil
}

// unusableResponse classifies a record that a successful call returned but
// the store cannot hold. The backend broke the wire contract, so this is a
// malformed response, not a local validation problem.
func (s *state) unusableResponse(ctx context.Context, entity string, err error) error {
	wrapped := pkgerrors.Wrap(pkgerrors.KindMalformedResponse, err, "backend returned an unusable "+entity)
	if s.logg != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, s.id), wrapped.Error())
	}
	return wrapped
}

// rejectLocally records a validation failure without touching the network.
// The session stays in editing: the form remains on screen with the message
// shown inline and the typed values intact.
func (s *state) rejectLocally(err error) error {
	s.phase = PhaseEditing
	s.message = pkgerrors.UserMessage(err)
	return err
}

// OrderGateway is the slice of the backend client the order form needs.
type OrderGateway interface {
	CreateOrder(ctx context.Context, payload intake.OrderPayload) (records.Order, error)
}

// OrderFormSession owns the customer order form.
type OrderFormSession struct {
	state
	form      intake.OrderForm
	gate      OrderGateway
	store     *records.Store
	onRefresh func()
	now       func() time.Time
}

// OrderOption configures optional order session behavior.
type OrderOption func(*OrderFormSession)

// WithOrderRefresh registers a callback fired after a successful submit, once
// the store already reflects the new order.
func WithOrderRefresh(fn func()) OrderOption {
	return func(s *OrderFormSession) { s.onRefresh = fn }
}

// WithOrderClock overrides the time source used for delivery-date validation
// and placeholder email synthesis.
func WithOrderClock(now func() time.Time) OrderOption {
	return func(s *OrderFormSession) {
		if now != nil {
			s.now = now
		}
	}
}

// NewOrderSession builds an order form session around the gateway and store.
func NewOrderSession(gate OrderGateway, store *records.Store, logg *logger.Logger, opts ...OrderOption) *OrderFormSession {
	s := &OrderFormSession{
		state: newState(logg),
		gate:  gate,
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open starts a fresh order form.
func (s *OrderFormSession) Open() {
	s.open(ModeCreate)
	s.form = intake.OrderForm{}
}

// Close abandons the form. A response still in flight will be discarded.
func (s *OrderFormSession) Close() {
	s.state.close()
	s.form = intake.OrderForm{}
}

// SetForm replaces the raw field values. Field state lives here so a failed
// submit keeps what the user typed.
func (s *OrderFormSession) SetForm(form intake.OrderForm) {
	if s.phase == PhaseIdle {
		s.open(ModeCreate)
	}
	s.resumeEditing()
	s.form = form
}

// Form returns the current raw field values.
func (s *OrderFormSession) Form() intake.OrderForm { return s.form }

// Submit validates the form and places the order. A form that fails intake
// stays in editing and never reaches the network; a duplicate submit while
// one is pending is ignored.
func (s *OrderFormSession) Submit(ctx context.Context) error {
	if s.phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	s.resumeEditing()

	payload, err := intake.ValidateOrder(s.form, s.now())
	if err != nil {
		return s.rejectLocally(err)
	}

	epoch := s.enterSubmitting()
	order, err := s.gate.CreateOrder(ctx, *payload)
	if err := s.settle(ctx, epoch, err); err != nil {
		return err
	}

	if err := s.store.Orders.Upsert(ctx, order); err != nil {
		return s.settle(ctx, epoch, s.unusableResponse(ctx, "order", err))
	}
	s.message = "Order placed successfully."
	s.form = intake.OrderForm{}
	if s.onRefresh != nil {
		s.onRefresh()
	}
	return nil
}

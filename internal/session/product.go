package session

import (
	"context"

	"github.com/kresfloral/kres-console/internal/intake"
	"github.com/kresfloral/kres-console/internal/records"
	pkgerrors "github.com/kresfloral/kres-console/pkg/errors"
	"github.com/kresfloral/kres-console/pkg/logger"
)

// ProductGateway is the slice of the backend client the inventory modal needs.
type ProductGateway interface {
	GetProduct(ctx context.Context, id string) (records.Product, error)
	CreateProduct(ctx context.Context, payload intake.ProductPayload) (records.Product, error)
	UpdateProduct(ctx context.Context, id string, payload intake.ProductPayload) (records.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProductFormSession owns the inventory create/edit modal.
type ProductFormSession struct {
	state
	form      intake.ProductForm
	editID    string
	gate      ProductGateway
	store     *records.Store
	onRefresh func()
}

// ProductOption configures optional product session behavior.
type ProductOption func(*ProductFormSession)

// WithProductRefresh registers a callback fired after any successful mutation.
func WithProductRefresh(fn func()) ProductOption {
	return func(s *ProductFormSession) { s.onRefresh = fn }
}

// NewProductSession builds a product form session around the gateway and store.
func NewProductSession(gate ProductGateway, store *records.Store, logg *logger.Logger, opts ...ProductOption) *ProductFormSession {
	s := &ProductFormSession{
		state: newState(logg),
		gate:  gate,
		store: store,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OpenCreate starts a blank inventory form.
func (s *ProductFormSession) OpenCreate() {
	s.open(ModeCreate)
	s.editID = ""
	s.form = intake.ProductForm{}
}

// OpenEdit fetches the product and pre-populates the form from the fetched
// record, never from the list row, so stale rows cannot leak into an edit.
func (s *ProductFormSession) OpenEdit(ctx context.Context, id string) error {
	s.open(ModeEdit)
	epoch := s.epoch

	product, err := s.gate.GetProduct(ctx, id)
	if epoch != s.epoch {
		return ErrSuperseded
	}
	if err != nil {
		s.phase = PhaseError
		s.message = pkgerrors.UserMessage(err)
		return err
	}

	s.editID = product.ID
	s.form = intake.ProductForm{
		Name:              product.Name,
		Category:          product.Category.String(),
		StockQuantity:     product.StockQuantity,
		Unit:              product.Unit,
		UnitPrice:         product.UnitPrice.InexactFloat64(),
		LowStockThreshold: product.LowStockThreshold,
	}
	return nil
}

// Close abandons the modal. A response still in flight will be discarded.
func (s *ProductFormSession) Close() {
	s.state.close()
	s.editID = ""
	s.form = intake.ProductForm{}
}

// SetForm replaces the raw field values.
func (s *ProductFormSession) SetForm(form intake.ProductForm) {
	if s.phase == PhaseIdle {
		s.open(ModeCreate)
	}
	s.resumeEditing()
	s.form = form
}

// Form returns the current raw field values.
func (s *ProductFormSession) Form() intake.ProductForm { return s.form }

// EditID returns the id being edited, empty in create mode.
func (s *ProductFormSession) EditID() string { return s.editID }

// Submit validates the form and creates or updates the product depending on
// the mode. A form that fails intake stays in editing and never reaches the
// network; duplicate submits while one is pending are ignored.
func (s *ProductFormSession) Submit(ctx context.Context) error {
	if s.phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	s.resumeEditing()

	payload, err := intake.ValidateProduct(s.form)
	if err != nil {
		return s.rejectLocally(err)
	}

	epoch := s.enterSubmitting()
	var product records.Product
	if s.mode == ModeEdit {
		product, err = s.gate.UpdateProduct(ctx, s.editID, *payload)
	} else {
		product, err = s.gate.CreateProduct(ctx, *payload)
	}
	if err := s.settle(ctx, epoch, err); err != nil {
		return err
	}

	if err := s.store.Products.Upsert(ctx, product); err != nil {
		return s.settle(ctx, epoch, s.unusableResponse(ctx, "product", err))
	}
	if s.mode == ModeEdit {
		s.message = "Product updated successfully."
	} else {
		s.message = "Product added successfully."
	}
	s.form = intake.ProductForm{}
	s.editID = ""
	if s.onRefresh != nil {
		s.onRefresh()
	}
	return nil
}

// Delete removes the product and drops it from the store. Removal is
// idempotent locally, so a not-found answer still clears the row.
func (s *ProductFormSession) Delete(ctx context.Context, id string) error {
	if s.phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	epoch := s.enterSubmitting()

	err := s.gate.DeleteProduct(ctx, id)
	if err != nil && pkgerrors.KindOf(err) == pkgerrors.KindNotFound {
		// Already gone remotely; clearing the local row is still correct.
		err = nil
	}
	if err := s.settle(ctx, epoch, err); err != nil {
		return err
	}

	s.store.Products.Remove(id)
	s.message = "Product deleted."
	if s.onRefresh != nil {
		s.onRefresh()
	}
	return nil
}

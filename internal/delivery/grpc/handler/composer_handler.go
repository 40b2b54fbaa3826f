package handler

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"order-composer/internal/domain/draft"
	"order-composer/internal/usecase"
)

var _ ComposerServer = (*ComposerHandler)(nil)

type ComposerHandler struct {
	composer      *usecase.OrderComposer
	submitTimeout time.Duration
}

// NewComposerHandler wraps the composer. A positive submitTimeout bounds
// Submit and RetryFailedItems on top of the caller's deadline.
func NewComposerHandler(composer *usecase.OrderComposer, submitTimeout time.Duration) *ComposerHandler {
	return &ComposerHandler{
		composer:      composer,
		submitTimeout: submitTimeout,
	}
}

func (h *ComposerHandler) StartDraft(ctx context.Context, req *StartDraftRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.StartDraft(ctx, req.Customer, req.StoreID))
}

func (h *ComposerHandler) GetDraft(ctx context.Context, req *DraftRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.Draft(req.DraftID))
}

func (h *ComposerHandler) AddProduct(ctx context.Context, req *ProductRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.AddProduct(req.DraftID, req.ProductID))
}

func (h *ComposerHandler) RemoveProduct(ctx context.Context, req *ProductRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.RemoveProduct(req.DraftID, req.ProductID))
}

func (h *ComposerHandler) SetQuantity(ctx context.Context, req *SetQuantityRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.SetQuantity(req.DraftID, req.ProductID, req.Quantity))
}

func (h *ComposerHandler) SetVariety(ctx context.Context, req *SetVarietyRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.SetVariety(req.DraftID, req.ProductID, req.Variety))
}

func (h *ComposerHandler) ChooseRequired(ctx context.Context, req *ChoiceRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.ChooseRequired(req.DraftID, req.ProductID, req.Group, req.Choice, req.Quantity))
}

func (h *ComposerHandler) ClearRequired(ctx context.Context, req *ChoiceRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.ClearRequired(req.DraftID, req.ProductID, req.Group))
}

func (h *ComposerHandler) SetOptional(ctx context.Context, req *ChoiceRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.SetOptional(req.DraftID, req.ProductID, req.Group, req.Choice, req.Quantity))
}

func (h *ComposerHandler) ClearOptional(ctx context.Context, req *ChoiceRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.ClearOptional(req.DraftID, req.ProductID, req.Group))
}

func (h *ComposerHandler) SetDelivery(ctx context.Context, req *SetDeliveryRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.SetDelivery(req.DraftID, req.Location, req.Payment, req.Rider, req.Preference))
}

func (h *ComposerHandler) Submit(ctx context.Context, req *DraftRequest) (*SubmitResponse, error) {
	ctx, cancel := h.withSubmitTimeout(ctx)
	defer cancel()

	return h.submitResponse(h.composer.Submit(ctx, req.DraftID))
}

func (h *ComposerHandler) RetryFailedItems(ctx context.Context, req *DraftRequest) (*SubmitResponse, error) {
	ctx, cancel := h.withSubmitTimeout(ctx)
	defer cancel()

	return h.submitResponse(h.composer.RetryFailedItems(ctx, req.DraftID))
}

func (h *ComposerHandler) Reopen(ctx context.Context, req *DraftRequest) (*DraftResponse, error) {
	return h.draftResponse(h.composer.Reopen(req.DraftID))
}

func (h *ComposerHandler) Cancel(ctx context.Context, req *DraftRequest) (*CancelResponse, error) {
	if err := h.composer.Cancel(req.DraftID); err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &CancelResponse{}, nil
}

func (h *ComposerHandler) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	if req.Selection.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "selection product is required")
	}

	breakdown, err := h.composer.Quote(ctx, &req.Selection)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &QuoteResponse{Breakdown: breakdown}, nil
}

func (h *ComposerHandler) ListCategories(ctx context.Context, req *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	categories, err := h.composer.ListCategories(ctx)
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &ListCategoriesResponse{Categories: categories}, nil
}

func (h *ComposerHandler) withSubmitTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.submitTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.submitTimeout)
}

func (h *ComposerHandler) draftResponse(view *usecase.DraftView, err error) (*DraftResponse, error) {
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &DraftResponse{Draft: toDraftMessage(view)}, nil
}

// submitResponse returns the result even when some items failed; only a
// submission that never produced a result is an RPC error.
func (h *ComposerHandler) submitResponse(result *usecase.SubmissionResult, err error) (*SubmitResponse, error) {
	if err != nil {
		return nil, h.mapErrorToStatus(err)
	}
	return &SubmitResponse{Result: toSubmissionMessage(result)}, nil
}

func (h *ComposerHandler) mapErrorToStatus(err error) error {
	var (
		validationErr *draft.ValidationError
		headerErr     *usecase.HeaderCreationError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, usecase.ErrInvalidCustomer),
		errors.Is(err, usecase.ErrInvalidDraftID),
		errors.Is(err, draft.ErrEmptyDraft):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, usecase.ErrDraftNotFound),
		errors.Is(err, usecase.ErrProductNotFound),
		errors.Is(err, draft.ErrProductNotInDraft):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, draft.ErrDraftLocked),
		errors.Is(err, draft.ErrInvalidTransition),
		errors.Is(err, usecase.ErrNothingToRetry):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &headerErr),
		errors.Is(err, usecase.ErrCatalogUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"order-composer/internal/domain/draft"
	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/pricing"
	"order-composer/internal/domain/repositories"
	"order-composer/internal/infrastructure/logger"
)

type EventPublisher interface {
	PublishOrderSubmitted(ctx context.Context, result *SubmissionResult) error
	Close()
}

// DraftView is a read-only snapshot of a composing session.
type DraftView struct {
	ID         string
	Customer   string
	StoreID    string
	State      draft.State
	Selections []*entities.Selection
	Preview    draft.Preview
	// LastResult is set while the draft is Failed after a submission.
	LastResult *SubmissionResult
}

type session struct {
	mu      sync.Mutex
	draft   *draft.Draft
	catalog map[string]*entities.Product

	order  *entities.Order
	steps  []itemStep
	result *SubmissionResult
}

// OrderComposer drives drafts from composition to persisted orders. Each
// draft is owned by one session; operations on the same draft are
// serialized, so two submissions never overlap.
type OrderComposer struct {
	catalogRepo repositories.CatalogRepository
	orderRepo   repositories.OrderRepository
	publisher   EventPublisher
	engine      *pricing.Engine
	logger      *logger.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewOrderComposer(
	catalogRepo repositories.CatalogRepository,
	orderRepo repositories.OrderRepository,
	publisher EventPublisher,
	engine *pricing.Engine,
	logger *logger.Logger,
) *OrderComposer {
	return &OrderComposer{
		catalogRepo: catalogRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		engine:      engine,
		logger:      logger,
		sessions:    make(map[string]*session),
	}
}

// StartDraft opens a composing session. The catalog of storeID (all stores
// when empty) is fetched once and used for previews.
func (c *OrderComposer) StartDraft(ctx context.Context, customer, storeID string) (*DraftView, error) {
	if customer == "" {
		return nil, ErrInvalidCustomer
	}

	products, err := c.catalogRepo.ListProducts(ctx, repositories.ProductFilter{StoreID: storeID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	d := draft.New(uuid.New().String(), customer)
	d.StoreID = storeID
	s := &session{draft: d, catalog: indexProducts(products)}

	c.mu.Lock()
	c.sessions[d.ID] = s
	c.mu.Unlock()

	c.logger.Info("Draft started", "draft_id", d.ID, "customer", customer, "products", len(products))
	return c.view(s), nil
}

func (c *OrderComposer) Draft(draftID string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error { return nil })
}

func (c *OrderComposer) AddProduct(draftID, productID string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		if _, ok := s.catalog[productID]; !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return s.draft.AddProduct(productID)
	})
}

func (c *OrderComposer) RemoveProduct(draftID, productID string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.RemoveProduct(productID)
	})
}

func (c *OrderComposer) SetQuantity(draftID, productID string, quantity int) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.SetQuantity(productID, quantity)
	})
}

func (c *OrderComposer) SetVariety(draftID, productID, variety string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.SetVariety(productID, variety)
	})
}

func (c *OrderComposer) ChooseRequired(draftID, productID, group, choiceKey string, quantity int) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.ChooseRequired(productID, group, choiceKey, quantity)
	})
}

func (c *OrderComposer) ClearRequired(draftID, productID, group string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.ClearRequired(productID, group)
	})
}

func (c *OrderComposer) SetOptional(draftID, productID, group, choiceKey string, quantity int) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.SetOptional(productID, group, choiceKey, quantity)
	})
}

func (c *OrderComposer) ClearOptional(draftID, productID, group string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.ClearOptional(productID, group)
	})
}

func (c *OrderComposer) SetDelivery(draftID string, location entities.Location, payment, rider, preference string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		return s.draft.SetDelivery(location, payment, rider, preference)
	})
}

// Reopen moves a failed draft back to composing. The next submission
// creates a new order header.
func (c *OrderComposer) Reopen(draftID string) (*DraftView, error) {
	return c.withSession(draftID, func(s *session) error {
		if err := s.draft.Reopen(); err != nil {
			return err
		}
		if s.order != nil {
			c.logger.Warn("Draft reopened with a partially persisted order",
				"draft_id", draftID,
				"order_id", s.order.ID,
				"failed_items", len(s.result.Failed))
		}
		s.order, s.steps, s.result = nil, nil, nil
		return nil
	})
}

// Cancel destroys the session.
func (c *OrderComposer) Cancel(draftID string) error {
	s, err := c.session(draftID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.order != nil {
		c.logger.Warn("Draft cancelled with a partially persisted order",
			"draft_id", draftID,
			"order_id", s.order.ID)
	}
	c.forget(draftID)
	c.logger.Info("Draft cancelled", "draft_id", draftID)
	return nil
}

// Quote prices a single selection against the current catalog without
// touching any draft.
func (c *OrderComposer) Quote(ctx context.Context, sel *entities.Selection) (pricing.Breakdown, error) {
	products, err := c.catalogRepo.ListProducts(ctx, repositories.ProductFilter{IDs: []string{sel.ProductID}})
	if err != nil {
		return pricing.Breakdown{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	product, ok := indexProducts(products)[sel.ProductID]
	if !ok {
		return pricing.Breakdown{}, fmt.Errorf("%w: %s", ErrProductNotFound, sel.ProductID)
	}
	return c.engine.Compute(product, sel), nil
}

func (c *OrderComposer) ListCategories(ctx context.Context) ([]entities.Category, error) {
	categories, err := c.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return categories, nil
}

// Submit validates the draft, creates the order header and then creates one
// order item per selection, strictly one after another. Amounts are
// recomputed from a fresh catalog read, never taken from the preview.
//
// A validation failure returns a *draft.ValidationError before any store is
// called. A rejected header returns a *HeaderCreationError and the draft goes
// back to composing. Item failures do not stop the sequence; they are
// reported in the result and leave the draft Failed for RetryFailedItems.
// The context is checked between items; once cancelled, the remaining items
// are reported as failed.
func (c *OrderComposer) Submit(ctx context.Context, draftID string) (*SubmissionResult, error) {
	s, err := c.session(draftID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draft
	if d.Len() == 0 {
		return nil, draft.ErrEmptyDraft
	}
	if err := d.BeginValidation(); err != nil {
		return nil, err
	}
	if err := draft.Validate(d, s.catalog); err != nil {
		_ = d.RejectValidation()
		return nil, err
	}

	products, err := c.refreshProducts(ctx, d.ProductIDs())
	if err != nil {
		_ = d.RejectValidation()
		return nil, err
	}
	for id, p := range products {
		s.catalog[id] = p
	}
	if err := draft.Validate(d, products); err != nil {
		_ = d.RejectValidation()
		return nil, err
	}

	if err := d.BeginSubmission(); err != nil {
		return nil, err
	}

	selections := d.Selections()
	steps := make([]itemStep, len(selections))
	lines := make([]pricing.Breakdown, len(selections))
	for i, sel := range selections {
		steps[i] = itemStep{index: i, product: products[sel.ProductID], selection: sel}
		lines[i] = c.engine.Compute(steps[i].product, sel)
	}

	order := &entities.Order{
		User:        d.Customer,
		Rider:       d.Rider,
		Products:    d.ProductIDs(),
		TotalAmount: pricing.Sum(lines),
		Location:    d.Location,
		Status:      entities.StatusPending,
		Payment:     d.Payment,
		CreatedAt:   time.Now(),
	}

	orderID, err := c.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		_ = d.AbortSubmission()
		c.logger.Error("Failed to create order header", "draft_id", draftID, "error", err)
		return nil, &HeaderCreationError{Err: err}
	}
	order.ID = orderID
	c.logger.Info("Order header created",
		"draft_id", draftID,
		"order_id", orderID,
		"total_amount", order.TotalAmount,
		"items", len(steps))

	s.order = order
	s.steps = steps
	s.result = &SubmissionResult{DraftID: draftID, OrderID: orderID, TotalAmount: order.TotalAmount}

	succeeded, failed := c.createItems(ctx, s, steps)
	s.result.Succeeded = succeeded
	s.result.Failed = failed

	return c.finish(s), nil
}

// RetryFailedItems re-runs the failed item steps of a Failed draft against
// the order header that was already created.
func (c *OrderComposer) RetryFailedItems(ctx context.Context, draftID string) (*SubmissionResult, error) {
	s, err := c.session(draftID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil || len(s.result.Failed) == 0 {
		return nil, ErrNothingToRetry
	}
	if err := s.draft.BeginRetry(); err != nil {
		return nil, err
	}

	pending := make(map[int]bool, len(s.result.Failed))
	for _, f := range s.result.Failed {
		pending[f.SelectionIndex] = true
	}
	var steps []itemStep
	for _, step := range s.steps {
		if pending[step.index] {
			steps = append(steps, step)
		}
	}

	c.logger.Info("Retrying failed order items", "draft_id", draftID, "order_id", s.order.ID, "items", len(steps))

	succeeded, failed := c.createItems(ctx, s, steps)
	s.result.Succeeded = append(s.result.Succeeded, succeeded...)
	sort.Slice(s.result.Succeeded, func(i, j int) bool {
		return s.result.Succeeded[i].SelectionIndex < s.result.Succeeded[j].SelectionIndex
	})
	s.result.Failed = failed

	return c.finish(s), nil
}

func (c *OrderComposer) createItems(ctx context.Context, s *session, steps []itemStep) ([]CreatedItem, []FailedItem) {
	var (
		succeeded []CreatedItem
		failed    []FailedItem
	)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			failed = append(failed, FailedItem{
				SelectionIndex: step.index,
				ProductID:      step.product.ID,
				Err:            &ItemCreationError{SelectionIndex: step.index, ProductID: step.product.ID, Err: err},
			})
			continue
		}

		line := c.engine.Compute(step.product, step.selection)
		item := &entities.OrderItem{
			Order:        s.order.ID,
			Product:      step.product.ID,
			Store:        step.product.StoreID,
			User:         s.order.User,
			Rider:        s.order.Rider,
			Quantity:     line.Quantity,
			Status:       entities.StatusPending,
			Amount:       line.LineAmount,
			Preference:   s.draft.Preference,
			Variety:      step.selection.VarietyName,
			OrderOptions: line.NormalizedOptions,
		}

		itemID, err := c.orderRepo.CreateOrderItem(ctx, item)
		if err != nil {
			c.logger.Warn("Failed to create order item",
				"order_id", s.order.ID,
				"selection_index", step.index,
				"product_id", step.product.ID,
				"error", err)
			failed = append(failed, FailedItem{
				SelectionIndex: step.index,
				ProductID:      step.product.ID,
				Err:            &ItemCreationError{SelectionIndex: step.index, ProductID: step.product.ID, Err: err},
			})
			continue
		}

		succeeded = append(succeeded, CreatedItem{
			SelectionIndex: step.index,
			ProductID:      step.product.ID,
			ItemID:         itemID,
			Amount:         line.LineAmount,
		})
	}

	return succeeded, failed
}

// finish settles the draft state after an item run and publishes the outcome.
func (c *OrderComposer) finish(s *session) *SubmissionResult {
	result := s.result.clone()

	if result.Complete() {
		_ = s.draft.MarkSubmitted()
		c.forget(s.draft.ID)
		c.logger.Info("Order submitted",
			"draft_id", s.draft.ID,
			"order_id", result.OrderID,
			"items", len(result.Succeeded))
	} else {
		_ = s.draft.MarkFailed()
		c.logger.Warn("Order submitted with failed items",
			"draft_id", s.draft.ID,
			"order_id", result.OrderID,
			"succeeded", len(result.Succeeded),
			"failed", len(result.Failed))
	}

	c.publish(result.clone())
	return result
}

func (c *OrderComposer) publish(result *SubmissionResult) {
	if c.publisher == nil {
		return
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := c.publisher.PublishOrderSubmitted(pubCtx, result); err != nil {
			c.logger.Warn("Failed to publish order.submitted event", "order_id", result.OrderID, "error", err)
		}
	}()
}

func (c *OrderComposer) refreshProducts(ctx context.Context, ids []string) (map[string]*entities.Product, error) {
	products, err := c.catalogRepo.ListProducts(ctx, repositories.ProductFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return indexProducts(products), nil
}

func (c *OrderComposer) withSession(draftID string, fn func(s *session) error) (*DraftView, error) {
	s, err := c.session(draftID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s); err != nil {
		return nil, err
	}
	return c.view(s), nil
}

func (c *OrderComposer) session(draftID string) (*session, error) {
	if draftID == "" {
		return nil, ErrInvalidDraftID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[draftID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, draftID)
	}
	return s, nil
}

func (c *OrderComposer) forget(draftID string) {
	c.mu.Lock()
	delete(c.sessions, draftID)
	c.mu.Unlock()
}

func (c *OrderComposer) view(s *session) *DraftView {
	v := &DraftView{
		ID:         s.draft.ID,
		Customer:   s.draft.Customer,
		StoreID:    s.draft.StoreID,
		State:      s.draft.State(),
		Selections: s.draft.Selections(),
		Preview:    s.draft.Preview(c.engine, s.catalog),
	}
	if s.result != nil {
		v.LastResult = s.result.clone()
	}
	return v
}

func indexProducts(products []entities.Product) map[string]*entities.Product {
	index := make(map[string]*entities.Product, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index
}

package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"order-composer/internal/domain/draft"
	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/pricing"
	"order-composer/internal/domain/repositories"
	"order-composer/internal/infrastructure/logger"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]entities.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Product), args.Error(1)
}

func (m *MockCatalogRepository) ListCategories(ctx context.Context) ([]entities.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Category), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *entities.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) CreateOrderItem(ctx context.Context, item *entities.OrderItem) (string, error) {
	args := m.Called(ctx, item)
	return args.String(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderSubmitted(ctx context.Context, result *SubmissionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() {
	m.Called()
}

func burgerShop(burgerPrice float64) []entities.Product {
	return []entities.Product{
		{
			ID:        "burger",
			Name:      "Burger",
			Price:     burgerPrice,
			StoreID:   "store-1",
			Varieties: []entities.Variety{{Name: "Double", PriceDifference: 400}},
			OptionGroups: []entities.OptionGroup{
				{
					Name:     "Bun",
					Required: true,
					Choices:  []entities.Choice{entities.NewRichChoice("brioche", "Brioche", 50)},
				},
				{
					Name: "Extras",
					Choices: []entities.Choice{
						entities.NewRichChoice("cheese", "Cheese", 50),
						entities.NewRichChoice("bacon", "Bacon", 30),
					},
				},
			},
		},
		{ID: "fries", Name: "Fries", Price: 350, StoreID: "store-1"},
	}
}

func byStore(storeID string) interface{} {
	return mock.MatchedBy(func(f repositories.ProductFilter) bool {
		return f.StoreID == storeID && len(f.IDs) == 0
	})
}

func byIDs() interface{} {
	return mock.MatchedBy(func(f repositories.ProductFilter) bool {
		return len(f.IDs) > 0
	})
}

func newTestComposer(publisher EventPublisher) (*OrderComposer, *MockCatalogRepository, *MockOrderRepository) {
	catalogRepo := new(MockCatalogRepository)
	orderRepo := new(MockOrderRepository)
	composer := NewOrderComposer(catalogRepo, orderRepo, publisher, pricing.NewEngine(pricing.DefaultMarkup), logger.Nop())
	return composer, catalogRepo, orderRepo
}

// composeBurgerOrder builds a draft worth 3300 at a burger price of 1000.
func composeBurgerOrder(t *testing.T, composer *OrderComposer) string {
	t.Helper()

	view, err := composer.StartDraft(context.Background(), "user123", "store-1")
	require.NoError(t, err)
	id := view.ID

	_, err = composer.AddProduct(id, "burger")
	require.NoError(t, err)
	_, err = composer.SetQuantity(id, "burger", 2)
	require.NoError(t, err)
	_, err = composer.SetVariety(id, "burger", "Double")
	require.NoError(t, err)
	_, err = composer.ChooseRequired(id, "burger", "Bun", "brioche", 1)
	require.NoError(t, err)
	_, err = composer.SetOptional(id, "burger", "Extras", "cheese", 2)
	require.NoError(t, err)
	_, err = composer.AddProduct(id, "fries")
	require.NoError(t, err)
	view, err = composer.SetDelivery(id, entities.Location{Address: "1 Main St", Lat: 1.5, Lng: 2.5}, "cash", "rider-9", "no onions")
	require.NoError(t, err)

	assert.Equal(t, int64(3300), view.Preview.Total)
	return id
}

func TestOrderComposer_StartDraft_InvalidCustomer(t *testing.T) {
	composer, catalogRepo, _ := newTestComposer(nil)

	view, err := composer.StartDraft(context.Background(), "", "store-1")

	assert.ErrorIs(t, err, ErrInvalidCustomer)
	assert.Nil(t, view)
	catalogRepo.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestOrderComposer_StartDraft_CatalogUnavailable(t *testing.T) {
	composer, catalogRepo, _ := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(nil, errors.New("connection refused"))

	_, err := composer.StartDraft(context.Background(), "user123", "store-1")

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOrderComposer_AddUnknownProduct(t *testing.T) {
	composer, catalogRepo, _ := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)

	view, err := composer.StartDraft(context.Background(), "user123", "store-1")
	require.NoError(t, err)
	assert.Equal(t, draft.StateEmpty, view.State)

	_, err = composer.AddProduct(view.ID, "pizza")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderComposer_UnknownDraft(t *testing.T) {
	composer, _, _ := newTestComposer(nil)

	_, err := composer.Draft("missing")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	_, err = composer.Submit(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidDraftID)
}

func TestOrderComposer_Submit_EmptyDraft(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)

	view, err := composer.StartDraft(context.Background(), "user123", "store-1")
	require.NoError(t, err)

	_, err = composer.Submit(context.Background(), view.ID)
	assert.ErrorIs(t, err, draft.ErrEmptyDraft)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)

	current, err := composer.Draft(view.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.StateEmpty, current.State)
}

func TestOrderComposer_Submit_ValidationMakesNoNetworkCalls(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)

	view, err := composer.StartDraft(context.Background(), "user123", "store-1")
	require.NoError(t, err)
	_, err = composer.AddProduct(view.ID, "burger")
	require.NoError(t, err)

	result, err := composer.Submit(context.Background(), view.ID)

	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, result)
	assert.Equal(t, []draft.Violation{{ProductID: "burger", GroupName: "Bun"}}, verr.Violations)

	catalogRepo.AssertNumberOfCalls(t, "ListProducts", 1)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "CreateOrderItem", mock.Anything, mock.Anything)

	current, err := composer.Draft(view.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.StateComposing, current.State)
}

func TestOrderComposer_Submit(t *testing.T) {
	publisher := new(MockEventPublisher)
	composer, catalogRepo, orderRepo := newTestComposer(publisher)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)
	catalogRepo.On("ListProducts", mock.Anything, byIDs()).Return(burgerShop(1000), nil)

	var wg sync.WaitGroup
	wg.Add(1)

	orderRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*entities.Order")).
		Return("order-1", nil).
		Run(func(args mock.Arguments) {
			order := args.Get(1).(*entities.Order)
			assert.Equal(t, "user123", order.User)
			assert.Equal(t, "rider-9", order.Rider)
			assert.Equal(t, int64(3300), order.TotalAmount)
			assert.Equal(t, []string{"burger", "fries"}, order.Products)
			assert.Equal(t, "cash", order.Payment)
			assert.Equal(t, "1 Main St", order.Location.Address)
			assert.Equal(t, entities.StatusPending, order.Status)
		})

	var items []*entities.OrderItem
	capture := func(args mock.Arguments) {
		items = append(items, args.Get(1).(*entities.OrderItem))
	}
	orderRepo.On("CreateOrderItem", mock.Anything, mock.AnythingOfType("*entities.OrderItem")).Return("item-1", nil).Once().Run(capture)
	orderRepo.On("CreateOrderItem", mock.Anything, mock.AnythingOfType("*entities.OrderItem")).Return("item-2", nil).Once().Run(capture)

	publisher.On("PublishOrderSubmitted", mock.Anything, mock.AnythingOfType("*usecase.SubmissionResult")).
		Return(nil).
		Run(func(args mock.Arguments) {
			result := args.Get(1).(*SubmissionResult)
			assert.Equal(t, "order-1", result.OrderID)
			wg.Done()
		})

	id := composeBurgerOrder(t, composer)

	result, err := composer.Submit(context.Background(), id)
	require.NoError(t, err)

	assert.True(t, result.Complete())
	assert.Equal(t, "order-1", result.OrderID)
	assert.Equal(t, int64(3300), result.TotalAmount)
	assert.Equal(t, []CreatedItem{
		{SelectionIndex: 0, ProductID: "burger", ItemID: "item-1", Amount: 2950},
		{SelectionIndex: 1, ProductID: "fries", ItemID: "item-2", Amount: 350},
	}, result.Succeeded)

	require.Len(t, items, 2)
	burger := items[0]
	assert.Equal(t, "order-1", burger.Order)
	assert.Equal(t, "store-1", burger.Store)
	assert.Equal(t, "user123", burger.User)
	assert.Equal(t, 2, burger.Quantity)
	assert.Equal(t, "Double", burger.Variety)
	assert.Equal(t, "no onions", burger.Preference)
	assert.Equal(t, int64(2950), burger.Amount)
	assert.Equal(t, []entities.OrderOption{
		{Name: "Bun", Options: []entities.OrderOptionValue{{OptionName: "Brioche", Quantity: 1}}},
		{Name: "Extras", Options: []entities.OrderOptionValue{{OptionName: "Cheese", Quantity: 2}}},
	}, burger.OrderOptions)
	assert.Equal(t, "fries", items[1].Product)

	wg.Wait()

	_, err = composer.Draft(id)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	orderRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderComposer_Submit_TotalIgnoresStalePreview(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)
	catalogRepo.On("ListProducts", mock.Anything, byIDs()).Return(burgerShop(1200), nil)

	var header *entities.Order
	orderRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*entities.Order")).
		Return("order-1", nil).
		Run(func(args mock.Arguments) { header = args.Get(1).(*entities.Order) })

	var amounts []int64
	orderRepo.On("CreateOrderItem", mock.Anything, mock.AnythingOfType("*entities.OrderItem")).
		Return("item", nil).
		Run(func(args mock.Arguments) { amounts = append(amounts, args.Get(1).(*entities.OrderItem).Amount) })

	id := composeBurgerOrder(t, composer)

	result, err := composer.Submit(context.Background(), id)
	require.NoError(t, err)

	// (1200 + 400) * 2 + 50 + 2*50 = 3350, plus fries
	assert.Equal(t, []int64{3350, 350}, amounts)
	assert.Equal(t, int64(3700), header.TotalAmount)
	assert.Equal(t, int64(3700), result.TotalAmount)
}

func TestOrderComposer_Submit_RefreshedCatalogFailsValidation(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)
	catalogRepo.On("ListProducts", mock.Anything, byIDs()).Return(burgerShop(1000)[:1], nil)

	id := composeBurgerOrder(t, composer)

	_, err := composer.Submit(context.Background(), id)

	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []draft.Violation{{ProductID: "fries"}}, verr.Violations)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderComposer_Submit_RequiredChoiceRemovedFromCatalog(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)

	refreshed := burgerShop(1000)
	refreshed[0].OptionGroups[0].Choices = []entities.Choice{entities.NewRichChoice("sesame", "Sesame", 40)}
	catalogRepo.On("ListProducts", mock.Anything, byIDs()).Return(refreshed, nil)

	id := composeBurgerOrder(t, composer)

	_, err := composer.Submit(context.Background(), id)

	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []draft.Violation{{ProductID: "burger", GroupName: "Bun"}}, verr.Violations)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)

	current, err := composer.Draft(id)
	require.NoError(t, err)
	assert.Equal(t, draft.StateComposing, current.State)
}

func TestOrderComposer_Submit_UnknownRequiredChoice(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byStore("store-1")).Return(burgerShop(1000), nil)

	view, err := composer.StartDraft(context.Background(), "user123", "store-1")
	require.NoError(t, err)
	_, err = composer.AddProduct(view.ID, "burger")
	require.NoError(t, err)
	_, err = composer.ChooseRequired(view.ID, "burger", "Bun", "no-such-bun", 1)
	require.NoError(t, err)

	_, err = composer.Submit(context.Background(), view.ID)

	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []draft.Violation{{ProductID: "burger", GroupName: "Bun"}}, verr.Violations)
	catalogRepo.AssertNumberOfCalls(t, "ListProducts", 1)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderComposer_Submit_HeaderCreationError(t *testing.T) {
	publisher := new(MockEventPublisher)
	composer, catalogRepo, orderRepo := newTestComposer(publisher)
	catalogRepo.On("ListProducts", mock.Anything, mock.Anything).Return(burgerShop(1000), nil)
	orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return("", errors.New("write conflict"))

	id := composeBurgerOrder(t, composer)

	result, err := composer.Submit(context.Background(), id)

	var herr *HeaderCreationError
	require.ErrorAs(t, err, &herr)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "write conflict")

	orderRepo.AssertNotCalled(t, "CreateOrderItem", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishOrderSubmitted", mock.Anything, mock.Anything)

	view, err := composer.Draft(id)
	require.NoError(t, err)
	assert.Equal(t, draft.StateComposing, view.State)
}

func TestOrderComposer_Submit_PartialFailureThenRetry(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, mock.Anything).Return(burgerShop(1000), nil)
	orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return("order-1", nil).Once()

	orderRepo.On("CreateOrderItem", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Once()
	orderRepo.On("CreateOrderItem", mock.Anything, mock.Anything).Return("item-2", nil).Once()

	id := composeBurgerOrder(t, composer)

	result, err := composer.Submit(context.Background(), id)
	require.NoError(t, err)

	assert.False(t, result.Complete())
	assert.Equal(t, "order-1", result.OrderID)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 0, result.Failed[0].SelectionIndex)
	assert.Equal(t, "burger", result.Failed[0].ProductID)

	var ierr *ItemCreationError
	require.ErrorAs(t, result.Failed[0].Err, &ierr)
	assert.Contains(t, ierr.Error(), "timeout")
	assert.Equal(t, []CreatedItem{{SelectionIndex: 1, ProductID: "fries", ItemID: "item-2", Amount: 350}}, result.Succeeded)

	view, err := composer.Draft(id)
	require.NoError(t, err)
	assert.Equal(t, draft.StateFailed, view.State)
	require.NotNil(t, view.LastResult)
	assert.Len(t, view.LastResult.Failed, 1)

	_, err = composer.SetQuantity(id, "fries", 3)
	assert.ErrorIs(t, err, draft.ErrDraftLocked)

	var retried *entities.OrderItem
	orderRepo.On("CreateOrderItem", mock.Anything, mock.Anything).Return("item-1", nil).Once().
		Run(func(args mock.Arguments) { retried = args.Get(1).(*entities.OrderItem) })

	result, err = composer.RetryFailedItems(context.Background(), id)
	require.NoError(t, err)

	assert.True(t, result.Complete())
	assert.Equal(t, []CreatedItem{
		{SelectionIndex: 0, ProductID: "burger", ItemID: "item-1", Amount: 2950},
		{SelectionIndex: 1, ProductID: "fries", ItemID: "item-2", Amount: 350},
	}, result.Succeeded)
	assert.Equal(t, "order-1", retried.Order)
	assert.Equal(t, int64(2950), retried.Amount)

	orderRepo.AssertNumberOfCalls(t, "CreateOrder", 1)
	orderRepo.AssertNumberOfCalls(t, "CreateOrderItem", 3)

	_, err = composer.RetryFailedItems(context.Background(), id)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestOrderComposer_Submit_CancelledBetweenItems(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, mock.Anything).Return(burgerShop(1000), nil)
	orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return("order-1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orderRepo.On("CreateOrderItem", mock.Anything, mock.Anything).
		Return("item-1", nil).
		Run(func(args mock.Arguments) { cancel() })

	id := composeBurgerOrder(t, composer)

	result, err := composer.Submit(ctx, id)
	require.NoError(t, err)

	assert.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "fries", result.Failed[0].ProductID)
	assert.ErrorIs(t, result.Failed[0].Err, context.Canceled)
	orderRepo.AssertNumberOfCalls(t, "CreateOrderItem", 1)
}

func TestOrderComposer_ReopenAfterFailure(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, mock.Anything).Return(burgerShop(1000), nil)
	orderRepo.On("CreateOrder", mock.Anything, mock.Anything).Return("order-1", nil)
	orderRepo.On("CreateOrderItem", mock.Anything, mock.Anything).Return("", errors.New("boom"))

	id := composeBurgerOrder(t, composer)

	_, err := composer.Submit(context.Background(), id)
	require.NoError(t, err)

	view, err := composer.Reopen(id)
	require.NoError(t, err)
	assert.Equal(t, draft.StateComposing, view.State)
	assert.Nil(t, view.LastResult)

	_, err = composer.RetryFailedItems(context.Background(), id)
	assert.ErrorIs(t, err, ErrNothingToRetry)

	_, err = composer.SetQuantity(id, "fries", 2)
	assert.NoError(t, err)
}

func TestOrderComposer_Cancel(t *testing.T) {
	composer, catalogRepo, orderRepo := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, mock.Anything).Return(burgerShop(1000), nil)

	id := composeBurgerOrder(t, composer)

	require.NoError(t, composer.Cancel(id))

	_, err := composer.Draft(id)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.ErrorIs(t, composer.Cancel(id), ErrDraftNotFound)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderComposer_Quote(t *testing.T) {
	composer, catalogRepo, _ := newTestComposer(nil)
	catalogRepo.On("ListProducts", mock.Anything, byIDs()).Return(burgerShop(1000)[:1], nil)

	sel := entities.NewSelection("burger")
	sel.SetVariety("Double")
	sel.ChooseRequired("Bun", "brioche", 1)

	b, err := composer.Quote(context.Background(), sel)
	require.NoError(t, err)
	assert.Equal(t, int64(1450), b.LineAmount)

	_, err = composer.Quote(context.Background(), entities.NewSelection("pizza"))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderComposer_ListCategories(t *testing.T) {
	composer, catalogRepo, _ := newTestComposer(nil)
	catalogRepo.On("ListCategories", mock.Anything).
		Return([]entities.Category{{Name: "Food", Subcategory: []string{"Burgers", "Sides"}}}, nil)

	categories, err := composer.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Burgers", "Sides"}, categories[0].Subcategory)
}

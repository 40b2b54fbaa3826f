package handler

import (
	"order-composer/internal/domain/draft"
	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/pricing"
	"order-composer/internal/usecase"
)

type StartDraftRequest struct {
	Customer string `json:"customer"`
	StoreID  string `json:"storeId,omitempty"`
}

type DraftRequest struct {
	DraftID string `json:"draftId"`
}

type ProductRequest struct {
	DraftID   string `json:"draftId"`
	ProductID string `json:"productId"`
}

type SetQuantityRequest struct {
	DraftID   string `json:"draftId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type SetVarietyRequest struct {
	DraftID   string `json:"draftId"`
	ProductID string `json:"productId"`
	Variety   string `json:"variety"`
}

// ChoiceRequest addresses one choice of an option group. The Clear calls
// ignore Choice and Quantity.
type ChoiceRequest struct {
	DraftID   string `json:"draftId"`
	ProductID string `json:"productId"`
	Group     string `json:"group"`
	Choice    string `json:"choice,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type SetDeliveryRequest struct {
	DraftID    string            `json:"draftId"`
	Location   entities.Location `json:"location"`
	Payment    string            `json:"payment"`
	Rider      string            `json:"rider,omitempty"`
	Preference string            `json:"preference,omitempty"`
}

type QuoteRequest struct {
	Selection entities.Selection `json:"selection"`
}

type ListCategoriesRequest struct{}

type DraftMessage struct {
	ID         string                `json:"id"`
	Customer   string                `json:"customer"`
	StoreID    string                `json:"storeId,omitempty"`
	State      draft.State           `json:"state"`
	Selections []*entities.Selection `json:"selections"`
	Preview    draft.Preview         `json:"preview"`
	LastResult *SubmissionMessage    `json:"lastResult,omitempty"`
}

type DraftResponse struct {
	Draft *DraftMessage `json:"draft"`
}

type SubmissionMessage struct {
	DraftID     string               `json:"draftId"`
	OrderID     string               `json:"orderId"`
	TotalAmount int64                `json:"totalAmount"`
	Complete    bool                 `json:"complete"`
	Succeeded   []CreatedItemMessage `json:"succeeded"`
	Failed      []FailedItemMessage  `json:"failed"`
}

type CreatedItemMessage struct {
	SelectionIndex int    `json:"selectionIndex"`
	ProductID      string `json:"productId"`
	ItemID         string `json:"itemId"`
	Amount         int64  `json:"amount"`
}

type FailedItemMessage struct {
	SelectionIndex int    `json:"selectionIndex"`
	ProductID      string `json:"productId"`
	Error          string `json:"error"`
}

type SubmitResponse struct {
	Result *SubmissionMessage `json:"result"`
}

type QuoteResponse struct {
	Breakdown pricing.Breakdown `json:"breakdown"`
}

type ListCategoriesResponse struct {
	Categories []entities.Category `json:"categories"`
}

type CancelResponse struct{}

func toDraftMessage(v *usecase.DraftView) *DraftMessage {
	return &DraftMessage{
		ID:         v.ID,
		Customer:   v.Customer,
		StoreID:    v.StoreID,
		State:      v.State,
		Selections: v.Selections,
		Preview:    v.Preview,
		LastResult: toSubmissionMessage(v.LastResult),
	}
}

func toSubmissionMessage(r *usecase.SubmissionResult) *SubmissionMessage {
	if r == nil {
		return nil
	}

	msg := &SubmissionMessage{
		DraftID:     r.DraftID,
		OrderID:     r.OrderID,
		TotalAmount: r.TotalAmount,
		Complete:    r.Complete(),
		Succeeded:   make([]CreatedItemMessage, len(r.Succeeded)),
		Failed:      make([]FailedItemMessage, len(r.Failed)),
	}
	for i, c := range r.Succeeded {
		msg.Succeeded[i] = CreatedItemMessage{
			SelectionIndex: c.SelectionIndex,
			ProductID:      c.ProductID,
			ItemID:         c.ItemID,
			Amount:         c.Amount,
		}
	}
	for i, f := range r.Failed {
		msg.Failed[i] = FailedItemMessage{
			SelectionIndex: f.SelectionIndex,
			ProductID:      f.ProductID,
			Error:          f.Err.Error(),
		}
	}
	return msg
}

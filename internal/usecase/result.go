package usecase

import "order-composer/internal/domain/entities"

// SubmissionResult reports every step of a submission: the order header and
// the outcome of each line item, in selection order.
type SubmissionResult struct {
	DraftID     string
	OrderID     string
	TotalAmount int64
	Succeeded   []CreatedItem
	Failed      []FailedItem
}

type CreatedItem struct {
	SelectionIndex int
	ProductID      string
	ItemID         string
	Amount         int64
}

type FailedItem struct {
	SelectionIndex int
	ProductID      string
	Err            error
}

// Complete reports whether every line item was created.
func (r *SubmissionResult) Complete() bool {
	return len(r.Failed) == 0
}

// itemStep is one pending line item of a submitted order, frozen at
// submission time so retries price it exactly as the header did.
type itemStep struct {
	index     int
	product   *entities.Product
	selection *entities.Selection
}

func (r *SubmissionResult) clone() *SubmissionResult {
	c := *r
	c.Succeeded = append([]CreatedItem(nil), r.Succeeded...)
	c.Failed = append([]FailedItem(nil), r.Failed...)
	return &c
}

package orders

import (
	"context"
	"errors"
	"testing"

	"partsdesk/internal"
)

type fakeStore struct {
	rows   []internal.OrderRow
	pushed map[int64]string
}

func (f *fakeStore) ListUnpushedOrders(limit int) ([]internal.OrderRow, error) {
	var out []internal.OrderRow
	for _, r := range f.rows {
		if _, ok := f.pushed[r.ID]; !ok && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetEmailByID(id int) (*internal.EmailRow, error) {
	return &internal.EmailRow{ID: id, Sender: "ops@utair.ru", Subject: "AOG"}, nil
}

func (f *fakeStore) MarkOrderPushed(orderID int64, externalID string) error {
	f.pushed[orderID] = externalID
	return nil
}

type fakeCreator struct {
	requests []CreateRequest
	failFor  int
}

func (f *fakeCreator) CreateOrder(_ context.Context, req CreateRequest) (string, error) {
	if req.EmailID == f.failFor {
		return "", errors.New("rejected")
	}
	f.requests = append(f.requests, req)
	return "ext-" + req.Result.Orders[0].PartNumber, nil
}

func TestPushPendingGroupsByEmail(t *testing.T) {
	store := &fakeStore{
		rows: []internal.OrderRow{
			{ID: 1, EmailID: 10, LineNo: 1, PartNumber: "A-1", Priority: "AOG"},
			{ID: 2, EmailID: 10, LineNo: 2, PartNumber: "A-2", Priority: "AOG"},
			{ID: 3, EmailID: 11, LineNo: 1, PartNumber: "B-1", Priority: "RTN"},
			{ID: 4, EmailID: 12, LineNo: 1, PartNumber: "C-1", Priority: "RTN"},
		},
		pushed: map[int64]string{},
	}
	creator := &fakeCreator{failFor: 11}

	res, err := NewPushService(store, creator, nil, nil).PushPending(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Emails != 2 || res.Orders != 3 || res.Failed != 1 {
		t.Fatalf("res=%+v", res)
	}
	if len(creator.requests) != 2 || len(creator.requests[0].Result.Orders) != 2 {
		t.Fatalf("requests=%+v", creator.requests)
	}
	if creator.requests[0].IdempotencyKey == "" || creator.requests[0].IdempotencyKey == creator.requests[1].IdempotencyKey {
		t.Fatalf("keys=%q %q", creator.requests[0].IdempotencyKey, creator.requests[1].IdempotencyKey)
	}
	if creator.requests[0].Sender != "ops@utair.ru" {
		t.Fatalf("sender=%q", creator.requests[0].Sender)
	}
	if store.pushed[2] != "ext-A-1" || store.pushed[4] != "ext-C-1" {
		t.Fatalf("pushed=%v", store.pushed)
	}
	if _, ok := store.pushed[3]; ok {
		t.Fatalf("rejected email marked pushed")
	}
}

func TestIdempotencyKeyFollowsLines(t *testing.T) {
	a := []internal.OrderRow{{ID: 1, EmailID: 10}, {ID: 2, EmailID: 10}}
	b := []internal.OrderRow{{ID: 1, EmailID: 10}, {ID: 3, EmailID: 10}}
	if idempotencyKey(a) != idempotencyKey(a) {
		t.Fatalf("key not stable")
	}
	if idempotencyKey(a) == idempotencyKey(b) {
		t.Fatalf("different lines share a key")
	}
}

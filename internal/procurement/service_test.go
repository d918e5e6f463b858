package procurement

import (
	"errors"
	"testing"

	"partsdesk/internal/logging"
	"partsdesk/internal/metrics"
)

type fakeStore struct {
	batches map[string][]LineItem
	err     error
}

func (f *fakeStore) InsertQuoteBatch(batchID, source string, items []LineItem) error {
	if f.err != nil {
		return f.err
	}
	if f.batches == nil {
		f.batches = map[string][]LineItem{}
	}
	f.batches[batchID] = items
	return nil
}

func TestServiceSubmitStoresValidBatch(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, logging.Nop(), metrics.New("test"))
	res, err := svc.Submit("operator", []byte(`[`+validItem("A-1", "USD")+`,`+validItem("B-2", "EUR")+`]`))
	if err != nil {
		t.Fatal(err)
	}
	if res.BatchID == "" || len(store.batches[res.BatchID]) != 2 {
		t.Fatalf("res=%+v stored=%v", res, store.batches)
	}
}

func TestServiceSubmitInvalidBatchWritesNothing(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, nil)
	_, err := svc.Submit("operator", []byte(`[`+validItem("A-1", "USD")+`,`+validItem("B-2", "US")+`,`+validItem("C-3", "EUR")+`]`))
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("err=%v", err)
	}
	if len(store.batches) != 0 {
		t.Fatalf("stored=%v", store.batches)
	}
}

func TestServiceSubmitStoreError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewService(&fakeStore{err: boom}, nil, nil)
	_, err := svc.Submit("operator", []byte(`[`+validItem("A-1", "USD")+`]`))
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

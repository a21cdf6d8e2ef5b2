package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"resto-pos/dtos"
)

// PendingStore stages orders ahead of acceptance. Implementations must make
// Submit for the same table safe under concurrent callers; the in-memory
// store below does that with one mutex per table number.
type PendingStore interface {
	Submit(input dtos.PendingSubmitInput) (*dtos.PendingOrder, error)
	List(tableNo string) []dtos.PendingOrder
	Remove(handle string) error
	RemoveItem(handle string, productCode uint) (*dtos.PendingOrder, error)
}

type memoryPendingStore struct {
	mu       sync.RWMutex
	records  map[string]*dtos.PendingOrder // keyed by handle
	byTable  map[string]string             // tableNo -> handle
	tableMus map[string]*sync.Mutex
}

func NewMemoryPendingStore() PendingStore {
	return &memoryPendingStore{
		records:  make(map[string]*dtos.PendingOrder),
		byTable:  make(map[string]string),
		tableMus: make(map[string]*sync.Mutex),
	}
}

func (s *memoryPendingStore) tableLock(tableNo string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.tableMus[tableNo]
	if !ok {
		mu = &sync.Mutex{}
		s.tableMus[tableNo] = mu
	}
	return mu
}

// Submit merges into the table's existing record when one exists: quantities
// are summed by product code and the latest notes/flags win. Otherwise a new
// record is created under a fresh handle.
func (s *memoryPendingStore) Submit(input dtos.PendingSubmitInput) (*dtos.PendingOrder, error) {
	if input.DineIn && input.TakeOut {
		return nil, fmt.Errorf("%w: dine_in and take_out are mutually exclusive", ErrValidation)
	}

	lock := s.tableLock(input.TableNo)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if handle, ok := s.byTable[input.TableNo]; ok {
		record := s.records[handle]
		for _, item := range input.Items {
			merged := false
			for i := range record.Items {
				if record.Items[i].ProductCode == item.ProductCode {
					record.Items[i].Quantity += item.Quantity
					merged = true
					break
				}
			}
			if !merged {
				record.Items = append(record.Items, item)
			}
		}
		record.Notes = input.Notes
		record.DineIn = input.DineIn
		record.TakeOut = input.TakeOut
		record.UpdatedAt = time.Now()
		snapshot := *record
		return &snapshot, nil
	}

	record := &dtos.PendingOrder{
		Handle:    uuid.NewString(),
		TableNo:   input.TableNo,
		Items:     append([]dtos.PendingItem(nil), input.Items...),
		Notes:     input.Notes,
		DineIn:    input.DineIn,
		TakeOut:   input.TakeOut,
		UpdatedAt: time.Now(),
	}
	s.records[record.Handle] = record
	s.byTable[record.TableNo] = record.Handle
	snapshot := *record
	return &snapshot, nil
}

func (s *memoryPendingStore) List(tableNo string) []dtos.PendingOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dtos.PendingOrder, 0, len(s.records))
	for _, record := range s.records {
		if tableNo != "" && record.TableNo != tableNo {
			continue
		}
		out = append(out, *record)
	}
	return out
}

func (s *memoryPendingStore) Remove(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[handle]
	if !ok {
		return fmt.Errorf("%w: pending order %s", ErrNotFound, handle)
	}
	delete(s.records, handle)
	delete(s.byTable, record.TableNo)
	return nil
}

// RemoveItem drops one line. A record that empties out is removed entirely,
// never left behind with zero lines.
func (s *memoryPendingStore) RemoveItem(handle string, productCode uint) (*dtos.PendingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[handle]
	if !ok {
		return nil, fmt.Errorf("%w: pending order %s", ErrNotFound, handle)
	}

	found := false
	items := record.Items[:0]
	for _, item := range record.Items {
		if item.ProductCode == productCode {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return nil, fmt.Errorf("%w: product %d in pending order %s", ErrNotFound, productCode, handle)
	}

	if len(items) == 0 {
		delete(s.records, handle)
		delete(s.byTable, record.TableNo)
		return nil, nil
	}

	record.Items = items
	record.UpdatedAt = time.Now()
	snapshot := *record
	return &snapshot, nil
}

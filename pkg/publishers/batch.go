package publishers

import "fmt"

// limitedBatch is the Batch used by sinks without a native batch type.
type limitedBatch struct {
	owner     Producer
	maxEvents int
	maxBytes  int
	events    []Event
	size      int
}

func newLimitedBatch(owner Producer, maxEvents, maxBytes int) *limitedBatch {
	return &limitedBatch{owner: owner, maxEvents: maxEvents, maxBytes: maxBytes}
}

// Add appends a copy of evt, enforcing the sink's event and byte limits.
func (b *limitedBatch) Add(evt Event) error {
	if b.maxEvents > 0 && len(b.events) >= b.maxEvents {
		return fmt.Errorf("%w: limit of %d events reached", ErrBatchFull, b.maxEvents)
	}
	n := evt.size()
	if b.maxBytes > 0 && b.size+n > b.maxBytes {
		if len(b.events) == 0 {
			return fmt.Errorf("%w: %d bytes, limit %d", ErrEventTooLarge, n, b.maxBytes)
		}
		return fmt.Errorf("%w: %d of %d bytes used", ErrBatchFull, b.size, b.maxBytes)
	}
	b.events = append(b.events, evt.clone())
	b.size += n
	return nil
}

func (b *limitedBatch) Len() int  { return len(b.events) }
func (b *limitedBatch) Size() int { return b.size }

// ownBatch returns batch as a limitedBatch created by owner.
func ownBatch(owner Producer, batch Batch) (*limitedBatch, error) {
	b, ok := batch.(*limitedBatch)
	if !ok || b == nil || b.owner != owner {
		return nil, ErrForeignBatch
	}
	if len(b.events) == 0 {
		return nil, ErrEmptyBatch
	}
	return b, nil
}

package spikesource

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/spikesim/fixedpoint"
)

// A RateUpdateHandler applies rate-change requests arriving on the two
// control channels into a bank. Both paths funnel into the bank's
// bounds-checked apply; updates addressed outside the instance's range are
// dropped silently.
type RateUpdateHandler struct {
	bank *Bank
}

// NewRateUpdateHandler creates a handler over the given bank.
func NewRateUpdateHandler(bank *Bank) *RateUpdateHandler {
	return &RateUpdateHandler{bank: bank}
}

// ApplyBatch decodes a batch rate-update payload: an item count followed by
// that many (global id, rate) pairs, rates in 16.16 fixed point. It returns
// an error when the payload is truncated; items before the truncation point
// are not applied.
func (h *RateUpdateHandler) ApplyBatch(payload []byte) error {
	if len(payload) < 4 {
		return fmt.Errorf(
			"spikesource: batch rate update truncated: %d bytes", len(payload))
	}

	nItems := binary.LittleEndian.Uint32(payload)
	want := 4 + int(nItems)*8
	if len(payload) < want {
		return fmt.Errorf(
			"spikesource: batch rate update is %d bytes, want %d for %d items",
			len(payload), want, nItems)
	}

	for i := 0; i < int(nItems); i++ {
		offset := 4 + i*8
		globalID := binary.LittleEndian.Uint32(payload[offset:])
		rateBits := binary.LittleEndian.Uint32(payload[offset+4:])

		h.bank.ApplyRate(globalID, fixedpoint.RealFromBits(int32(rateBits)))
	}

	return nil
}

// ApplySingle applies a single-event rate update. The transport key is
// masked against the instance's rate-update id mask to recover the source
// id; the payload carries the rate in 16.16 fixed point.
func (h *RateUpdateHandler) ApplySingle(key uint32, payload uint32) {
	id := key & h.bank.Params().RateUpdateIDMask
	h.bank.ApplyRate(id, fixedpoint.RealFromBits(int32(payload)))
}

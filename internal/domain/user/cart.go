package user

// Cart maps a catalog item id to the quantity held. Storage is sparse: an
// absent key means zero. Quantities never go negative.
type Cart map[int]int

// Qty returns the held quantity for an item, zero when absent.
func (c Cart) Qty(itemID int) int {
	return c[itemID]
}

// Dense renders the cart over the fixed catalog keyspace [0, size) so the
// wire shape matches the storefront clients: every key present, zeros
// included. Entries outside the keyspace are carried over as-is.
func (c Cart) Dense(size int) Cart {
	out := make(Cart, size+len(c))

	for i := 0; i < size; i++ {
		out[i] = 0
	}

	for id, qty := range c {
		out[id] = qty
	}

	return out
}

// Clone returns an independent copy, safe for callers to mutate.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))

	for id, qty := range c {
		out[id] = qty
	}

	return out
}

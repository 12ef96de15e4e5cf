package core

// OrderStore holds two disjoint order collections: the active set and the
// archive (daily log). It is not safe for concurrent use; Service guards it.
type OrderStore struct {
	active  []Order
	archive []Order
}

// NewOrderStore partitions orders for the given day.
func NewOrderStore(orders []Order, today Date) *OrderStore {
	active, archived := Partition(orders, today)
	return &OrderStore{active: active, archive: archived}
}

// Active returns copies of the active orders.
func (s *OrderStore) Active() []Order {
	return cloneOrders(s.active)
}

// Archived returns copies of the daily-log orders.
func (s *OrderStore) Archived() []Order {
	return cloneOrders(s.archive)
}

// Find returns the order with id from either set, and whether it is archived.
func (s *OrderStore) Find(id ID) (o Order, archived bool, ok bool) {
	if i := indexOf(s.active, id); i >= 0 {
		return s.active[i].Clone(), false, true
	}
	if i := indexOf(s.archive, id); i >= 0 {
		return s.archive[i].Clone(), true, true
	}
	return Order{}, false, false
}

// Add places a new order in the active set.
func (s *OrderStore) Add(o Order) {
	s.active = append(s.active, o.Clone())
}

// Replace swaps in o wherever the order with the same id lives. It is a
// no-op returning false when the id is unknown.
func (s *OrderStore) Replace(o Order) bool {
	if i := indexOf(s.active, o.ID); i >= 0 {
		s.active[i] = o.Clone()
		return true
	}
	if i := indexOf(s.archive, o.ID); i >= 0 {
		s.archive[i] = o.Clone()
		return true
	}
	return false
}

// Remove deletes the order from whichever set holds it.
func (s *OrderStore) Remove(id ID) bool {
	if i := indexOf(s.active, id); i >= 0 {
		s.active = append(s.active[:i], s.active[i+1:]...)
		return true
	}
	if i := indexOf(s.archive, id); i >= 0 {
		s.archive = append(s.archive[:i], s.archive[i+1:]...)
		return true
	}
	return false
}

// Rollover moves archivable orders from the active set to the archive and
// returns how many moved. Archived orders are never moved back, so a second
// call on the same day is a no-op.
func (s *OrderStore) Rollover(today Date) int {
	active, moved := Partition(s.active, today)
	if len(moved) == 0 {
		return 0
	}
	s.active = active
	s.archive = append(s.archive, moved...)
	return len(moved)
}

func indexOf(orders []Order, id ID) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneOrders(src []Order) []Order {
	out := make([]Order, len(src))
	for i, o := range src {
		out[i] = o.Clone()
	}
	return out
}

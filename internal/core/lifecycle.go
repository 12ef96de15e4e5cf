package core

// IsArchivable reports whether an order belongs in the daily log on the given
// day: it is completed, carries an end date, and that date is strictly before
// today. Completed orders without an end date, and orders dated today or in
// the future, stay active.
func IsArchivable(o Order, today Date) bool {
	return o.Status == StatusCompleted && !o.EndDate.IsZero() && o.EndDate.Before(today)
}

// Partition splits orders into the active set and the archive set, keeping
// their relative order.
func Partition(orders []Order, today Date) (active, archived []Order) {
	active = make([]Order, 0, len(orders))
	archived = make([]Order, 0)
	for _, o := range orders {
		if IsArchivable(o, today) {
			archived = append(archived, o)
		} else {
			active = append(active, o)
		}
	}
	return active, archived
}

// EnforceEndDate keeps EndDate consistent with Status: a completed order
// without an end date is stamped with today, any other status clears it.
// An end date already present on a completed order is kept.
func EnforceEndDate(o *Order, today Date) {
	if o.Status == StatusCompleted {
		if o.EndDate.IsZero() {
			o.EndDate = today
		}
		return
	}
	o.EndDate = ""
}

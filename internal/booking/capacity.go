package booking

// CheckCapacity reports whether a party fits a table's or combination's
// capacity bounds. Boundary values are accepted.
func CheckCapacity(partySize, minCapacity, maxCapacity int) bool {
	return partySize >= minCapacity && partySize <= maxCapacity
}

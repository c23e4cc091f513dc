package game

// NextDrawer returns the drawer index after a round is won.
func NextDrawer(current, size int) int {
	if size <= 0 {
		return 0
	}
	return (current + 1) % size
}

// ClampDrawer keeps the drawer index inside the roster after a membership change.
// The player now sitting at the index becomes the drawer, which may not be the
// player who was drawing before the change.
func ClampDrawer(index, size int) int {
	if index < size {
		return index
	}
	return 0
}

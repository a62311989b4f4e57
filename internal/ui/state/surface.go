package state

// Surface records whether the launcher surface exists and which id it was
// created with.
type Surface struct {
	Visible bool
	ID      uint64
}

// Current reports whether id names the live surface.
func (s Surface) Current(id uint64) bool {
	return s.Visible && s.ID == id
}

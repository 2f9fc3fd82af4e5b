package components

// Food is an edible item. Eaten food stays in the world, not alive,
// until cleanup.
type Food struct {
	Energy float64
	Alive  bool
}

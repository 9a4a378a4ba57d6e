package normalize

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithMode selects paired or cross-product matching.
func WithMode(mode Mode) Option {
	return func(n *Normalizer) {
		n.mode = mode
	}
}

// WithSlots sets how many positions are read from each multi-value field.
// Values below 1 are ignored.
func WithSlots(slots int) Option {
	return func(n *Normalizer) {
		if slots > 0 {
			n.slots = slots
		}
	}
}

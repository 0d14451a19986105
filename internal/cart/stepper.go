package cart

import "encoding/json"

// Stepper is the quantity control of a cart line or product page. Quantity
// stays within [1, Stock]; with no stock both directions are disabled.
type Stepper struct {
	Quantity int `json:"quantity"`
	Stock    int `json:"stock"`
}

// NewStepper returns a stepper at quantity, clamped into range.
func NewStepper(quantity, stock int) Stepper {
	s := Stepper{Quantity: quantity, Stock: stock}
	s.clamp()
	return s
}

// CanIncrement reports whether another unit fits within stock.
func (s Stepper) CanIncrement() bool {
	return s.Quantity < s.Stock
}

// CanDecrement reports whether the quantity is above the floor of one.
func (s Stepper) CanDecrement() bool {
	return s.Quantity > 1
}

// MarshalJSON adds the enabled state of both controls.
func (s Stepper) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Quantity     int  `json:"quantity"`
		Stock        int  `json:"stock"`
		CanIncrement bool `json:"canIncrement"`
		CanDecrement bool `json:"canDecrement"`
	}{s.Quantity, s.Stock, s.CanIncrement(), s.CanDecrement()})
}

// Increment adds one unit unless stock is reached.
func (s *Stepper) Increment() {
	if s.CanIncrement() {
		s.Quantity++
	}
}

// Decrement removes one unit but never goes below one.
func (s *Stepper) Decrement() {
	if s.CanDecrement() {
		s.Quantity--
	}
}

// Set stores q clamped into range.
func (s *Stepper) Set(q int) {
	s.Quantity = q
	s.clamp()
}

func (s *Stepper) clamp() {
	if s.Stock > 0 && s.Quantity > s.Stock {
		s.Quantity = s.Stock
	}
	if s.Quantity < 1 {
		s.Quantity = 1
	}
}

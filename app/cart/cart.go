// Package cart models a shopping cart as a value: an ordered list of lines
// keyed by product and chosen variant. The server uses it to fold incoming
// checkout lines before pricing them.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps a single line, after merging.
const MaxQuantity = 10000

// ErrQuantityLimit is returned when a line would exceed MaxQuantity.
var ErrQuantityLimit = errors.New("cart: line quantity exceeds limit")

// Key identifies a cart line.
type Key struct {
	ProductID     string
	SelectedColor string
	SelectedType  string
}

// Line is one product/variant with a quantity. Price is informational; the
// order service re-prices every line from the catalogue.
type Line struct {
	ProductID     string
	Quantity      int
	SelectedColor string
	SelectedType  string
	Price         decimal.Decimal
}

func (l Line) Key() Key {
	return Key{ProductID: l.ProductID, SelectedColor: l.SelectedColor, SelectedType: l.SelectedType}
}

// Cart keeps lines in insertion order.
type Cart struct {
	lines []Line
}

// New builds a cart by adding each line in turn. Lines Add refuses are
// left out.
func New(lines ...Line) *Cart {
	c := &Cart{}
	for _, l := range lines {
		_ = c.Add(l)
	}
	return c
}

// Add merges l into an existing line with the same key or appends it.
// Lines with a non-positive quantity are ignored. A line whose merged
// quantity would pass MaxQuantity is refused and the cart is unchanged.
func (c *Cart) Add(l Line) error {
	if l.Quantity <= 0 {
		return nil
	}
	if l.Quantity > MaxQuantity {
		return ErrQuantityLimit
	}
	for i := range c.lines {
		if c.lines[i].Key() == l.Key() {
			if c.lines[i].Quantity > MaxQuantity-l.Quantity {
				return ErrQuantityLimit
			}
			c.lines[i].Quantity += l.Quantity
			c.lines[i].Price = l.Price
			return nil
		}
	}
	c.lines = append(c.lines, l)
	return nil
}

// Update sets the quantity of the line with key k. A quantity of zero or
// less removes the line.
func (c *Cart) Update(k Key, quantity int) error {
	if quantity <= 0 {
		c.Remove(k)
		return nil
	}
	if quantity > MaxQuantity {
		return ErrQuantityLimit
	}
	for i := range c.lines {
		if c.lines[i].Key() == k {
			c.lines[i].Quantity = quantity
			return nil
		}
	}
	return nil
}

// Remove drops the line with key k.
func (c *Cart) Remove(k Key) {
	for i := range c.lines {
		if c.lines[i].Key() == k {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Total is Σ price × quantity over the lines as they stand.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

package cart

import "cloudkitchen/internal/catalog"

// Item is a snapshot of the menu item at the moment it was added.
// Later catalog edits must not change what the customer saw, so the
// price and name are copied, never looked up again.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type Cart struct {
	Items []Item `json:"items"`
}

func (c *Cart) find(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add inserts the item with quantity 1, or bumps the quantity if the
// item is already in the cart. The existing snapshot wins over the
// incoming one so a price edit mid-session cannot split an entry.
func (c *Cart) Add(it catalog.MenuItem) {
	if i := c.find(it.ID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, Item{ID: it.ID, Name: it.Name, Price: it.Price, Quantity: 1})
}

// UpdateQuantity sets the quantity; zero or negative removes the entry.
func (c *Cart) UpdateQuantity(id string, qty int) {
	i := c.find(id)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return
	}
	c.Items[i].Quantity = qty
}

// Remove deletes the entry; no-op when absent.
func (c *Cart) Remove(id string) {
	if i := c.find(id); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// Total is the sum of snapshot price times quantity.
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities, not the number of distinct items.
func (c *Cart) ItemCount() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

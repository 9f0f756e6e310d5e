package cart

import (
	"testing"

	"cloudkitchen/internal/catalog"
)

func item(id string, price int64) catalog.MenuItem {
	return catalog.MenuItem{ID: id, Name: "item-" + id, Price: price, Availability: true}
}

func TestAddAndTotals(t *testing.T) {
	var c Cart
	a := item("a", 100)
	b := item("b", 50)

	c.Add(a)
	c.Add(a)
	c.Add(b)

	if got := c.Total(); got != 250 {
		t.Errorf("Total() = %d, want 250", got)
	}
	if got := c.ItemCount(); got != 3 {
		t.Errorf("ItemCount() = %d, want 3", got)
	}
	if len(c.Items) != 2 {
		t.Errorf("distinct items = %d, want 2", len(c.Items))
	}
}

func TestAddKeepsSnapshotPrice(t *testing.T) {
	var c Cart
	c.Add(item("a", 100))

	// a price edit mid-session must not change the entry already in the cart
	edited := item("a", 999)
	c.Add(edited)

	if got := c.Total(); got != 200 {
		t.Errorf("Total() after re-add with edited price = %d, want 200", got)
	}
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		wantTotal int64
		wantLen   int
	}{
		{"set to 3", 3, 300, 1},
		{"set to 1", 1, 100, 1},
		{"zero removes", 0, 0, 0},
		{"negative removes", -2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			c.Add(item("a", 100))
			c.UpdateQuantity("a", tt.qty)
			if got := c.Total(); got != tt.wantTotal {
				t.Errorf("Total() = %d, want %d", got, tt.wantTotal)
			}
			if len(c.Items) != tt.wantLen {
				t.Errorf("len(Items) = %d, want %d", len(c.Items), tt.wantLen)
			}
		})
	}
}

func TestUpdateQuantityMissingIsNoop(t *testing.T) {
	var c Cart
	c.Add(item("a", 100))
	c.UpdateQuantity("zzz", 5)
	if got := c.Total(); got != 100 {
		t.Errorf("Total() = %d, want 100", got)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	var c Cart
	c.Add(item("a", 100))
	c.Add(item("b", 50))

	c.Remove("a")
	c.Remove("a") // second removal is a no-op

	if got := c.Total(); got != 50 {
		t.Errorf("Total() = %d, want 50", got)
	}
	if got := c.ItemCount(); got != 1 {
		t.Errorf("ItemCount() = %d, want 1", got)
	}
}

func TestMixedSequenceInvariant(t *testing.T) {
	var c Cart
	c.Add(item("a", 100))
	c.Add(item("b", 50))
	c.Add(item("a", 100))
	c.UpdateQuantity("b", 4)
	c.Add(item("c", 30))
	c.Remove("a")
	c.UpdateQuantity("c", 0)

	// surviving: b qty 4 at 50
	if got := c.Total(); got != 200 {
		t.Errorf("Total() = %d, want 200", got)
	}
	if got := c.ItemCount(); got != 4 {
		t.Errorf("ItemCount() = %d, want 4", got)
	}
}

func TestClearAndEmpty(t *testing.T) {
	var c Cart
	if !c.Empty() {
		t.Error("new cart should be empty")
	}
	c.Add(item("a", 100))
	if c.Empty() {
		t.Error("cart with item should not be empty")
	}
	c.Clear()
	if !c.Empty() || c.Total() != 0 || c.ItemCount() != 0 {
		t.Error("cleared cart should be empty with zero totals")
	}
}

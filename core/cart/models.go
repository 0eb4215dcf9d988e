package cart

// Product is the denormalized product snapshot kept in a cart entry.
// it carries everything needed to render the cart and check out without a catalog lookup.
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name" validate:"notblank"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price" validate:"gte=0"`
	Category       string  `json:"category,omitempty"`
	Image          string  `json:"image,omitempty"`
	InStock        bool    `json:"in_stock"`
	WhatsappNumber string  `json:"whatsapp_number" validate:"notblank"`
	VendorName     string  `json:"vendor_name" validate:"notblank"`
	VendorID       string  `json:"vendor_id,omitempty"`
}

// Key returns the product identity within a cart: its ID or, when missing, "<name>-<vendor name>".
//
// NOTE: the fallback collides for distinct products sharing a name and vendor;
// catalog products always carry an ID so it only applies to ad-hoc snapshots.
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name + "-" + p.VendorName
}

// Entry is a cart line item. Quantity is always > 0 once persisted.
type Entry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price * quantity.
func (e Entry) Subtotal() float64 {
	return e.Product.Price * float64(e.Quantity)
}

// VendorGroup is the subset of a cart snapshot belonging to one vendor, in cart order.
type VendorGroup struct {
	Vendor string  `json:"vendor"`
	Items  []Entry `json:"items"`
}

// ContactHandle is the vendor's messaging handle, taken from the group's first item.
func (g VendorGroup) ContactHandle() string {
	if len(g.Items) == 0 {
		return ""
	}
	return g.Items[0].Product.WhatsappNumber
}

// Subtotal sums the raw line totals of the group.
func (g VendorGroup) Subtotal() float64 {
	return total(g.Items)
}

func total(entries []Entry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Subtotal()
	}
	return sum
}

func itemCount(entries []Entry) int {
	var n int
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}

// GroupByVendor partitions entries by vendor name, keeping cart order within each group
// and ordering groups by the first appearance of their vendor.
func GroupByVendor(entries []Entry) []VendorGroup {
	groups := make([]VendorGroup, 0)
	index := make(map[string]int)
	for _, e := range entries {
		vendor := e.Product.VendorName
		i, ok := index[vendor]
		if !ok {
			i = len(groups)
			index[vendor] = i
			groups = append(groups, VendorGroup{Vendor: vendor})
		}
		groups[i].Items = append(groups[i].Items, e)
	}
	return groups
}

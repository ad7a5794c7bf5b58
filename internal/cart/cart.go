package cart

// Item is one cart line. Name and Price are captured when the product is
// first added and are not refreshed by later adds.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Cart holds at most one Item per ProductID.
type Cart struct {
	Items []Item `json:"items"`
}

// New returns an empty cart whose items serialize as [].
func New() *Cart {
	return &Cart{Items: []Item{}}
}

// IsEmpty treats a nil cart as empty.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Find returns the line for productID.
func (c *Cart) Find(productID string) (*Item, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// Increment bumps an existing line and reports whether one was found.
func (c *Cart) Increment(productID string, quantity int) bool {
	item, ok := c.Find(productID)
	if !ok {
		return false
	}
	item.Quantity += quantity
	return true
}

// Add merges into an existing line or appends a new one.
func (c *Cart) Add(item Item) {
	if c.Increment(item.ProductID, item.Quantity) {
		return
	}
	c.Items = append(c.Items, item)
}

// Remove drops every line for productID.
func (c *Cart) Remove(productID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

func (c *Cart) normalize() {
	if c.Items == nil {
		c.Items = []Item{}
	}
}

package catalog

// Product is one read-only catalog entry. The catalog is loaded once at
// startup and immutable for the lifetime of the process; the cart copies
// the fields it needs at add time rather than referencing the catalog.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Stock    int     `json:"stock"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

type Catalog struct {
	products []Product
	byID     map[int]Product
}

func New(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, len(products)),
		byID:     make(map[int]Product, len(products)),
	}
	copy(c.products, products)
	for _, p := range products {
		c.byID[p.ID] = p
	}
	return c
}

// List returns the products in load order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Find(id int) (Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) Len() int { return len(c.products) }

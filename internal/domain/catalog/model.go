package catalog

// Item is the capability shared by every catalog entity a rule can point at
type Item interface {
	GetID() string
}

// SKU is a stocked variant of a product
type SKU struct {
	ID    string `db:"id" json:"id"`
	Code  string `db:"code" json:"code"`
	SPUID string `db:"spu_id" json:"spu_id"`
}

func (s *SKU) GetID() string { return s.ID }

// HasSPU reports whether the sku is linked to a parent product
func (s *SKU) HasSPU() bool { return s.SPUID != "" }

// SPU is a product grouping one or more SKUs
type SPU struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
}

func (s *SPU) GetID() string { return s.ID }

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

func (c *Category) GetID() string { return c.ID }

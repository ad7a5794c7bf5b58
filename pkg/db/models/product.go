package models

// Product is a catalog entry. Price is stored in major units, matching what
// the cart snapshots at add time.
type Product struct {
	ID          string  `gorm:"column:id;primaryKey" json:"id"`
	Name        string  `gorm:"column:name;not null" json:"name"`
	Description string  `gorm:"column:description;not null;default:''" json:"description"`
	Price       float64 `gorm:"column:price;not null" json:"price"`
	Stock       int     `gorm:"column:stock;not null;default:0" json:"stock"`
	ImageKey    *string `gorm:"column:image_key" json:"imageKey,omitempty"`
	CreatedAt   int64   `gorm:"column:created_at;autoCreateTime:milli" json:"createdAt"`
}

func (Product) TableName() string { return "products" }

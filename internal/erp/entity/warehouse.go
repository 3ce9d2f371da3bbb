package entity

import "time"

// WarehouseCategory groups warehouse items.
type WarehouseCategory struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WarehouseCategory) TableName() string {
	return "warehouse_categories"
}

// WarehouseItem is one stock position. Quantity is maintained exclusively
// through stock movements, never written directly by handlers.
type WarehouseItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	SKU         string    `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:256;not null"`
	CategoryID  *string   `json:"category_id" gorm:"size:36;index"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,3);not null;default:0"`
	Unit        string    `json:"unit" gorm:"size:20;not null;default:pcs"`
	MinQuantity float64   `json:"min_quantity" gorm:"type:decimal(12,3);default:0"`
	Price       float64   `json:"price" gorm:"type:decimal(14,2);default:0"`
	Location    string    `json:"location" gorm:"size:128"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *WarehouseCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (WarehouseItem) TableName() string {
	return "warehouse_items"
}

// StockMovement is the append-only ledger of quantity changes.
type StockMovement struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	ItemID       string    `json:"item_id" gorm:"size:36;not null;index"`
	MovementType string    `json:"movement_type" gorm:"size:16;not null"`
	Quantity     float64   `json:"quantity" gorm:"type:decimal(12,3);not null"`
	Reason       string    `json:"reason" gorm:"size:256"`
	ReferenceID  string    `json:"reference_id" gorm:"size:64"`
	CreatedBy    string    `json:"created_by" gorm:"size:36"`
	CreatedAt    time.Time `json:"created_at"`

	Item *WarehouseItem `json:"item,omitempty" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

// Stock movement types
const (
	MovementInbound  = "inbound"
	MovementOutbound = "outbound"
	MovementAdjust   = "adjust"
)

package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Product is a merchant catalog item synced from the merchant's store.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	ProductType string    `gorm:"column:product_type" json:"product_type,omitempty"`
	ShopDomain  string    `gorm:"column:shop_domain;index" json:"shop_domain"`
	Price       *float64  `gorm:"column:price" json:"price,omitempty"`

	// JSON array of search phrases; empty until generated.
	SearchKeywords datatypes.JSON `gorm:"column:search_keywords;type:jsonb" json:"search_keywords,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "company_products" }

// Keywords decodes SearchKeywords, dropping blanks. Malformed JSON yields nil.
func (p *Product) Keywords() []string {
	if p == nil || len(p.SearchKeywords) == 0 {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(p.SearchKeywords, &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// EncodeKeywords renders keywords for the search_keywords column.
func EncodeKeywords(keywords []string) datatypes.JSON {
	if keywords == nil {
		keywords = []string{}
	}
	b, _ := json.Marshal(keywords)
	return datatypes.JSON(b)
}

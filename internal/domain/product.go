// Package domain holds the catalog, cart and order types shared by the
// lab_order packages.
package domain

// Product is a catalog entry owned by the remote store.
type Product struct {
	ID            string `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	ShortName     string `json:"short_name,omitempty" mapstructure:"short_name"`
	Manufacturer  string `json:"manufacturer" mapstructure:"manufacturer"`
	CatalogNumber string `json:"catalog_number" mapstructure:"catalog_number"`
	Capacity      string `json:"capacity" mapstructure:"capacity"`
	UsagePlace    string `json:"usage_place" mapstructure:"usage_place"`
	Category      string `json:"category,omitempty" mapstructure:"category"`
	ImageURL      string `json:"image_url,omitempty" mapstructure:"image_url"`
}

// DisplayName renders "[short] name", or just name when there is no short name.
func (p Product) DisplayName() string {
	if p.ShortName == "" {
		return p.Name
	}
	return "[" + p.ShortName + "] " + p.Name
}

// Member is a person who can be named as the requester of an order.
type Member struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Email string `json:"email,omitempty" mapstructure:"email"`
}

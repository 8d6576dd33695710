package domain

// Category is a product category of the catalog tree
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"` // model, parameterized or general
	ParentID    int64  `json:"parent_id,omitempty"`
	HasChildren bool   `json:"has_children,omitempty"`
	ModelsCount int64  `json:"models_count,omitempty"`
	OffersCount int64  `json:"offers_count,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Price is a min/max price range in the region currency
type Price struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`
}

type Model struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	CategoryID  int64   `json:"category_id,omitempty"`
	VendorID    int64   `json:"vendor_id,omitempty"`
	Description string  `json:"description,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	OffersCount int64   `json:"offers_count,omitempty"`
	Price       Price   `json:"price,omitempty"`
	URL         string  `json:"url,omitempty"`
}

type Offer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ModelID     int64   `json:"model_id,omitempty"`
	CategoryID  int64   `json:"category_id,omitempty"`
	SellerID    int64   `json:"seller_id,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	URL         string  `json:"url,omitempty"`
}

type Seller struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating,omitempty"`
	ReviewsCount int64   `json:"reviews_count,omitempty"`
	URL          string  `json:"url,omitempty"`
}

type Vendor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Region struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	ParentID    int64  `json:"parent_id,omitempty"`
	HasChildren bool   `json:"has_children,omitempty"`
}

// Outlet is a physical point of sale of a seller
type Outlet struct {
	ID        int64   `json:"id"`
	SellerID  int64   `json:"seller_id,omitempty"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Phone     string  `json:"phone,omitempty"`
}

type Review struct {
	ID      int64  `json:"id"`
	Mark    int    `json:"mark"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
	Text    string `json:"text,omitempty"`
	Pros    string `json:"pros,omitempty"`
	Cons    string `json:"cons,omitempty"`
	Useful  int64  `json:"useful,omitempty"`
	Useless int64  `json:"useless,omitempty"`
}

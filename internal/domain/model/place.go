package model

// Restaurant is a business brand owned by one owner account.
type Restaurant struct {
	ID      string
	OwnerID string
	Name    string
}

// Place is a physical location of a restaurant. OwnerID is denormalized
// from the restaurant for tenant checks.
type Place struct {
	ID           string
	RestaurantID string
	OwnerID      string
	Name         string
	Address      string
}

// OwnedBy reports whether the place belongs to the given business account.
func (p *Place) OwnedBy(businessID string) bool {
	return p != nil && businessID != "" && p.OwnerID == businessID
}

package lots

// tier payload shared by create and update
type TierRequest struct {
	VehicleClass string `json:"vehicle_class" validate:"required"`
	PricePerHour int64  `json:"price_per_hour" validate:"required,gt=0"`
}

// initial slot layout for one vehicle class
type SlotLayoutRequest struct {
	VehicleClass string `json:"vehicle_class" validate:"required"`
	Count        int    `json:"count" validate:"required,gt=0,lte=500"`

	// Prefix for generated identifiers, e.g. "A" yields A-01, A-02, ...
	Prefix string `json:"prefix" validate:"required,min=1,max=8"`
}

// lot creation payload
type CreateLotRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=200"`
	Address   string  `json:"address" validate:"required,min=2,max=500"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	OpenHour  int     `json:"open_hour" validate:"gte=0,lte=23"`
	CloseHour int     `json:"close_hour" validate:"gte=0,lte=23"`

	PricingTiers []TierRequest       `json:"pricing_tiers" validate:"required,min=1,dive"`
	SlotLayout   []SlotLayoutRequest `json:"slot_layout" validate:"omitempty,dive"`
}

// lot update payload, all fields optional
type UpdateLotRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Address   *string  `json:"address,omitempty" validate:"omitempty,min=2,max=500"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	OpenHour  *int     `json:"open_hour,omitempty" validate:"omitempty,gte=0,lte=23"`
	CloseHour *int     `json:"close_hour,omitempty" validate:"omitempty,gte=0,lte=23"`
	Status    *string  `json:"status,omitempty"`

	PricingTiers []TierRequest `json:"pricing_tiers,omitempty" validate:"omitempty,min=1,dive"`
}

// listing filters
type LotFilters struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	Search string `form:"search"`
}

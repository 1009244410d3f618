package slots

// one new slot in an AddSlots request
type NewSlotRequest struct {
	Identifier   string `json:"identifier" validate:"required,min=1,max=16"`
	VehicleClass string `json:"vehicle_class,omitempty"`
	SensorID     string `json:"sensor_id,omitempty" validate:"omitempty,max=64"`
}

// batch slot creation payload
type AddSlotsRequest struct {
	Slots []NewSlotRequest `json:"slots" validate:"required,min=1,max=200,dive"`
}

// maintenance toggle payload
type MaintenanceRequest struct {
	Enabled bool `json:"enabled"`
}

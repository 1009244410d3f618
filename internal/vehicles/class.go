package vehicles

// Class identifies the kind of vehicle a slot accepts and a booking is made for.
type Class string

const (
	ClassMotorbike Class = "motorbike"
	ClassCar4Seats Class = "car_4_seats"
	ClassCar7Seats Class = "car_7_seats"
	ClassSUV       Class = "suv"
	ClassEVCar     Class = "ev_car"
	// ClassAny is only valid on slots; it accepts every vehicle class.
	ClassAny Class = "any"
)

func (c Class) String() string {
	return string(c)
}

// IsValid reports whether c is a known vehicle class, including "any".
func (c Class) IsValid() bool {
	switch c {
	case ClassMotorbike, ClassCar4Seats, ClassCar7Seats, ClassSUV, ClassEVCar, ClassAny:
		return true
	}
	return false
}

// IsBookable reports whether c can appear on a booking request. "any" is a
// slot-side wildcard, not a bookable class.
func (c Class) IsBookable() bool {
	return c.IsValid() && c != ClassAny
}

// Accepts reports whether a slot of class c can hold a vehicle of class other.
func (c Class) Accepts(other Class) bool {
	return c == ClassAny || c == other
}

// BookableClasses lists every class a booking may request.
func BookableClasses() []Class {
	return []Class{ClassMotorbike, ClassCar4Seats, ClassCar7Seats, ClassSUV, ClassEVCar}
}

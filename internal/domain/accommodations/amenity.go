package accommodations

import "errors"

var ErrUnknownAmenity = errors.New("accommodations: unknown amenity")

// Amenity is the fixed enumeration of accommodation features. Wire format
// is the integer value, matching the historical ordering.
type Amenity int

const (
	Essentials Amenity = iota
	WiFi
	Parking
	AirConditioning
	Kitchen
	TV
	Pool
	PetFriendly
	HairDryer
	Iron
	IndoorFireplace
	Heating
	Washer
	Hangers
	HotWater
	PrivateBathroom
	Gym
	SmokingAllowed
)

const amenityCount = 18

func (a Amenity) Valid() bool {
	return a >= Essentials && a < amenityCount
}

func (a Amenity) String() string {
	if !a.Valid() {
		return "UNKNOWN"
	}
	return amenityNames[a]
}

var amenityNames = [amenityCount]string{
	"ESSENTIALS",
	"WIFI",
	"PARKING",
	"AIR_CONDITIONING",
	"KITCHEN",
	"TV",
	"POOL",
	"PET_FRIENDLY",
	"HAIR_DRYER",
	"IRON",
	"INDOOR_FIREPLACE",
	"HEATING",
	"WASHER",
	"HANGERS",
	"HOT_WATER",
	"PRIVATE_BATHROOM",
	"GYM",
	"SMOKING_ALLOWED",
}

// AmenitiesFromInts validates and converts wire values, deduplicating.
func AmenitiesFromInts(values []int) ([]Amenity, error) {
	seen := make(map[Amenity]struct{}, len(values))
	out := make([]Amenity, 0, len(values))
	for _, v := range values {
		a := Amenity(v)
		if !a.Valid() {
			return nil, ErrUnknownAmenity
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}

func AmenitiesAsInts(amenities []Amenity) []int {
	out := make([]int, len(amenities))
	for i, a := range amenities {
		out[i] = int(a)
	}
	return out
}

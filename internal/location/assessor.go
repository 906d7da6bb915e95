package location

import (
	"errors"
	"fmt"
	"math"

	"montagebot/internal/model"
)

// EarthRadiusMeters is the mean earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

var ErrInvalidCoordinate = errors.New("location: invalid coordinate")

// Reading is a single fix delivered by a Provider.
type Reading struct {
	Lat            float64
	Lon            float64
	AccuracyMeters float64
}

// Validate rejects coordinates outside the WGS84 range and negative accuracy.
func (r Reading) Validate() error {
	if math.IsNaN(r.Lat) || r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, r.Lat)
	}
	if math.IsNaN(r.Lon) || r.Lon < -180 || r.Lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, r.Lon)
	}
	if math.IsNaN(r.AccuracyMeters) || r.AccuracyMeters < 0 {
		return fmt.Errorf("%w: accuracy %v", ErrInvalidCoordinate, r.AccuracyMeters)
	}
	return nil
}

// Assessment is the verdict for one reading against the reference area.
// OutsideReferenceArea and DistanceMeters are nil when there was no reading.
type Assessment struct {
	Status               model.LocationStatus
	OutsideReferenceArea *bool
	DistanceMeters       *float64
}

// Assess grades reading against the reference area and accuracy threshold in
// settings. A nil reading is UNAVAILABLE. A low-accuracy fix still gets an
// area verdict.
func Assess(reading *Reading, settings model.ReminderSettings) (Assessment, error) {
	if reading == nil {
		return Assessment{Status: model.LocationUnavailable}, nil
	}
	if err := reading.Validate(); err != nil {
		return Assessment{}, err
	}

	status := model.LocationOK
	if reading.AccuracyMeters > settings.MinAccuracyMeters {
		status = model.LocationLowAccuracy
	}

	distance := Distance(reading.Lat, reading.Lon, settings.CenterLat, settings.CenterLon)
	outside := distance > settings.RadiusMeters

	return Assessment{
		Status:               status,
		OutsideReferenceArea: &outside,
		DistanceMeters:       &distance,
	}, nil
}

// Distance returns the haversine great-circle distance in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

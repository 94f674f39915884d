package strava

import (
	"fmt"
	"net/http"
)

// Map is the route summary attached to an activity.
type Map struct {
	ID              string `json:"id"`
	SummaryPolyline string `json:"summary_polyline,omitempty"`
	Polyline        string `json:"polyline,omitempty"` // detail only
}

// Activity is the summary representation returned by the list endpoint.
// Dates are kept as the ISO-8601 strings Strava sends.
type Activity struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Type               string  `json:"type"`
	SportType          string  `json:"sport_type,omitempty"`
	StartDate          string  `json:"start_date"`
	StartDateLocal     string  `json:"start_date_local,omitempty"`
	Timezone           string  `json:"timezone,omitempty"`
	Distance           float64 `json:"distance"` // meters
	MovingTime         int     `json:"moving_time"`
	ElapsedTime        int     `json:"elapsed_time"`
	TotalElevationGain float64 `json:"total_elevation_gain"`
	AverageSpeed       float64 `json:"average_speed,omitempty"`
	MaxSpeed           float64 `json:"max_speed,omitempty"`
	HasHeartrate       bool    `json:"has_heartrate,omitempty"`
	AverageHeartrate   float64 `json:"average_heartrate,omitempty"`
	MaxHeartrate       float64 `json:"max_heartrate,omitempty"`
	KudosCount         int     `json:"kudos_count,omitempty"`
	Map                Map     `json:"map"`
}

// ActivityDetail is the detailed representation of a single activity.
type ActivityDetail struct {
	Activity
	Description string  `json:"description,omitempty"`
	Calories    float64 `json:"calories,omitempty"`
	DeviceName  string  `json:"device_name,omitempty"`
	Laps        []Lap   `json:"laps,omitempty"`
}

type Lap struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	LapIndex    int     `json:"lap_index"`
	Distance    float64 `json:"distance"`
	MovingTime  int     `json:"moving_time"`
	ElapsedTime int     `json:"elapsed_time"`
}

// Fault is the error body Strava returns with 4xx/5xx answers.
type Fault struct {
	Message string       `json:"message"`
	Errors  []FaultError `json:"errors,omitempty"`
}

type FaultError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
}

type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Errors     []FaultError
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		f := e.Errors[0]
		return fmt.Sprintf("strava: %s: %d %s (%s %s %s)", e.Op, e.StatusCode, e.Message, f.Resource, f.Field, f.Code)
	}
	return fmt.Sprintf("strava: %s: %d %s", e.Op, e.StatusCode, e.Message)
}

// Unauthorized reports an expired or invalid access token.
func (e *APIError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// RateLimited reports Strava's 15-minute or daily quota being exhausted.
func (e *APIError) RateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

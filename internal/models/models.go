package models

import "time"

// Gender is the form of address derived for a user
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// User represents a person who has written to the bot
type User struct {
	ID        string
	Username  string
	Gender    Gender
	CreatedAt time.Time
}

// Session is the per-user position in a conversation plus the answers collected so far
type Session struct {
	UserID    string
	Stage     string
	Step      int
	Payload   map[string]string
	UpdatedAt time.Time
}

// Profile is a completed questionnaire: question key -> selected option
type Profile struct {
	UserID      string
	Answers     map[string]string
	CompletedAt time.Time
}

// WardrobeItem is a single piece of clothing contributed by a user
type WardrobeItem struct {
	UserID    string
	Category  string
	Name      string
	Color     string
	Style     string
	CreatedAt time.Time
}

// Place is a geocoded city
type Place struct {
	Name string
	Lat  float64
	Lon  float64
}

// Weather holds current conditions for a place
type Weather struct {
	Temperature   float64 // °C
	Precipitation float64 // mm
	Wind          float64 // m/s
}

// Recipe is a static catalog entry
type Recipe struct {
	ID          string
	Name        string
	Required    []string
	Optional    []string
	Steps       []string
	CookMinutes int
}

// RecipeMatch is a recipe found for a set of ingredients
type RecipeMatch struct {
	Recipe          Recipe
	MissingRequired []string
}

// Event is an analytics record of something that happened in a bot
type Event struct {
	ID      string
	Time    time.Time
	Bot     string
	UserID  string
	Name    string
	Details string
}

// ErrorRecord is an analytics record of a failure
type ErrorRecord struct {
	ID      string
	Time    time.Time
	Bot     string
	UserID  string
	Stage   string
	Message string
}

// Feedback is a user rating of a conversion
type Feedback struct {
	ID      string
	Time    time.Time
	Bot     string
	UserID  string
	Rating  int
	Comment string
}

// DailyEventCount is the number of events of one name on one day
type DailyEventCount struct {
	Day   time.Time
	Name  string
	Count int
}

// ErrorAggregate groups identical errors
type ErrorAggregate struct {
	Stage    string
	Message  string
	Count    int
	LastSeen time.Time
}

// Overview summarises analytics for the rating export
type Overview struct {
	Users         int
	Events        int
	Conversions   int
	Failures      int
	Errors        int
	Ratings       int
	AverageRating float64
}

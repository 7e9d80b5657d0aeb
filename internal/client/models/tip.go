package models

// TravelTip is read-only editorial content.
type TravelTip struct {
	ID      string
	Title   string
	Content string
}

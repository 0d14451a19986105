package events

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// NotificationPayload is a transient message for the shopper.
type NotificationPayload struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// CartUpdatedPayload summarizes the cart after a refresh.
type CartUpdatedPayload struct {
	Count int    `json:"count"`
	Total string `json:"total"`
}

// FavoritesUpdatedPayload carries the new favorites count.
type FavoritesUpdatedPayload struct {
	Count int `json:"count"`
}

// LanguageChangedPayload carries the active language and its direction.
type LanguageChangedPayload struct {
	Language  string `json:"language"`
	Direction string `json:"direction"`
}

// ThemeChangedPayload carries the active theme.
type ThemeChangedPayload struct {
	Theme string `json:"theme"`
}

// ViewModeChangedPayload carries the listing layout.
type ViewModeChangedPayload struct {
	ViewMode string `json:"viewMode"`
}

// View modes of the product listing.
const (
	ViewGrid = "grid"
	ViewList = "list"
)

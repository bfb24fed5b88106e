package dto

// MealPayload is the raw create body for /meals. Older clients send the
// timestamp as meal_time or date instead of eaten_at; exactly one canonical
// timestamp is derived from them before validation.
type MealPayload struct {
	MealType    string  `json:"meal_type"`
	Description string  `json:"description"`
	EatenAt     *string `json:"eaten_at"`
	MealTime    *string `json:"meal_time"`
	Date        *string `json:"date"`
	Calories    *int    `json:"calories"`
	Notes       *string `json:"notes"`
}

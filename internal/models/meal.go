package models

import "time"

// MealType enumerates the supported meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealLog is a stored meal entry with a single canonical timestamp.
type MealLog struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	MealType    MealType  `db:"meal_type" json:"meal_type"`
	Description string    `db:"description" json:"description"`
	EatenAt     time.Time `db:"eaten_at" json:"eaten_at"`
	Calories    *int      `db:"calories" json:"calories,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MealLogFilter narrows a user's meal listing.
type MealLogFilter struct {
	UserID   string
	From     *time.Time
	To       *time.Time
	MealType *MealType
	Page     int
	PageSize int
}

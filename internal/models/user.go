package models

import "time"

// User represents a customer of the app.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email"`
	Username  string    `json:"username" gorm:"type:varchar(100)" bson:"username"`
	Password  string    `json:"-" gorm:"type:varchar(255)" bson:"password"` // bcrypt hash
	Mobile    string    `json:"mobile" gorm:"type:varchar(32)" bson:"mobile"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Customer is the public identity of a user shown to hotel operators.
type Customer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
}

// Customer returns the operator-facing projection of the user.
func (u *User) Customer() *Customer {
	return &Customer{ID: u.ID, Username: u.Username, Email: u.Email, Mobile: u.Mobile}
}

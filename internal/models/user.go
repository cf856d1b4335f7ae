package models

// User is a known identity able to upload documents and review submissions.
// Password holds a bcrypt hash; it is never serialised.
type User struct {
	BaseModel

	Username string `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`

	DisplayName string `gorm:"type:varchar(255)" json:"display_name"`
	IsActive    bool   `json:"is_active"`
}

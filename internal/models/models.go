package models

import "time"

// Contact is an address book entry. Phone is a canonical recipient ID
// (country code plus local number) produced by the recipient parser.
type Contact struct {
	Phone     string    `gorm:"primaryKey" json:"phone"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Tags      string    `gorm:"type:text" json:"tags"` // comma separated
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

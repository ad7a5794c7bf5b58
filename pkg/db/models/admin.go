package models

// Admin is a back-office account. Only one is expected; the first is
// created through the guarded setup route.
type Admin struct {
	ID           string `gorm:"column:id;primaryKey"`
	Username     string `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	CreatedAt    int64  `gorm:"column:created_at;autoCreateTime:milli"`
}

func (Admin) TableName() string { return "admins" }

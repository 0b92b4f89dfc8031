package category

import "time"

type Category struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Icon      string    `gorm:"column:icon;default:mdi-help-circle"`
	Type      string    `gorm:"column:type;default:expense"`
	ParentID  *int64    `gorm:"column:parent_id"`
	UserID    int64     `gorm:"column:user_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthorColumns struct {
	Name string `gorm:"type:varchar(255)"`
	Img  string `gorm:"type:varchar(1000);index"`
}

type LikeColumns struct {
	Count   int  `gorm:"not null;default:0"`
	IsLiked bool `gorm:"not null;default:false"`
}

// PostModel is the relational row for a post. Author and like are flattened
// into author_* and like_* columns.
type PostModel struct {
	ID          string        `gorm:"type:varchar(36);primaryKey"`
	Image       string        `gorm:"type:varchar(1000);index"`
	Category    string        `gorm:"type:varchar(255)"`
	Title       string        `gorm:"type:varchar(500)"`
	Description string        `gorm:"type:text"`
	Author      AuthorColumns `gorm:"embedded;embeddedPrefix:author_"`
	Date        string        `gorm:"type:varchar(64)"`
	Like        LikeColumns   `gorm:"embedded;embeddedPrefix:like_"`
	ReadTime    string        `gorm:"type:varchar(64)"`
	CreatedAt   time.Time     `gorm:"index"`
	UpdatedAt   time.Time
}

func (PostModel) TableName() string {
	return "posts"
}

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

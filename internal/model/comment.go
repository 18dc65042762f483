package model

import "time"

// Comment is left by an author under a post. Both relations are required
// and cascade on delete; the post side is declared by Post.Comments.
type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	PostID   uint      `gorm:"not null;index"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"autoCreateTime;<-:create"`
}

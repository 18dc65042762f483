package model

import (
	"fmt"
	"time"
)

/*
Post is a message published by an author.

PubDate: set once on insert, never updated
AuthorID/Author: required, "belongs-to" relation, cascades on user delete
GroupID/Group: optional, set to NULL when the group is deleted
Image: media key of the attached image, empty when there is none
Comments: "has-many" relation, cascades on post delete
*/
type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;<-:create;index"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	GroupID  *uint     `gorm:"index"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL;"`
	Image    string    `gorm:"size:255"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
}

func (p Post) String() string {
	text := []rune(p.Text)
	if len(text) > 15 {
		text = text[:15]
	}
	group := ""
	if p.Group != nil {
		group = p.Group.Title
	}
	return fmt.Sprintf("%s %s %s %s", string(text), p.Author.Username, p.PubDate.Format(time.RFC3339), group)
}

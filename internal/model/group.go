package model

/*
Group is a topic that posts may optionally belong to.

Title: display name, up to 200 characters
Slug: unique URL segment of the group page

Deleting a group keeps its posts and clears their group.
*/
type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Slug        string `gorm:"size:80;uniqueIndex;not null"`
}

func (g Group) String() string { return g.Title }

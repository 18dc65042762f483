package model

/*
Follow is a directed edge: User receives Author's posts in the follow feed.

The (user_id, author_id) pair is unique. Self-follow is rejected by the
follow handler, not by the schema.
*/
type Follow struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_follow_user_author"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	AuthorID uint `gorm:"not null;uniqueIndex:idx_follow_user_author;index"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

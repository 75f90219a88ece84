package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated, parents before children.
var allModels = []interface{}{
	&User{},
	&Student{},
	&Deck{},
	&Flashcard{},
	&Friendship{},
	&FriendshipHistory{},
	&Group{},
	&Event{},
	&Discussion{},
	&SavedStudyPlan{},
	&DashboardModule{},
	&Lesson{},
	&StudyChatbox{},
	&WellnessChat{},
	&AuditLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}

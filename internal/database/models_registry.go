package database

import "shepherd/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Save{},
		&models.Comment{},
		&models.Question{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
	}
}

package model

import "chatrelay/platform"

func InstallDB() {
	db := platform.DB
	if err := db.AutoMigrate(
		&User{},
		&ChatSession{},
		&Message{}); err != nil {
		panic(err)
	}
}

package models

import "time"

type User struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Password    string    `db:"password_hash" json:"-"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

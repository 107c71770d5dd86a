package models

import "time"

type Category struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

type Item struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CategoryID  string
	CreatedAt   time.Time
}

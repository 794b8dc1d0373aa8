package models

import "time"

// Task is a single to-do item owned by exactly one user.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

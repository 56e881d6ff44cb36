package domain

import "time"

// User owns stages and everything under them. Authentication lives outside
// this service; the row exists so ownership and cascades have a root.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

package model

// Todo is the domain model for a task held by the remote Todo service.
// ID is always assigned by the server.
type Todo struct {
	ID        int    `json:"id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

package models

type Exercise struct {
	ID          int64
	PhysioID    int64
	Name        string
	Description string
	Execution   string
	Advice      string
	Image       string
	Video       string
}

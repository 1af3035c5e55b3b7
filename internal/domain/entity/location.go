package entity

import "time"

// Location representa una bodega u oficina de terreno donde se almacena stock.
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

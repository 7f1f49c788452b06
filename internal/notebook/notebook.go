package notebook

import "time"

type Notebook struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListResponse struct {
	Items []Notebook `json:"items"`
}

type titleRequest struct {
	Title string `json:"title"`
}

package packets

// AddFavoriteRequest carries the mosque being favorited. Everything beyond
// the identity is optional and stored as-is.
type AddFavoriteRequest struct {
	ID        string   `json:"id" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type FetchByURLRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Date string `json:"date" binding:"required"`
}

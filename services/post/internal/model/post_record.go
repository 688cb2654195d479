package model

// PostRecord is the JSON value stored under a post key in badger.
type PostRecord struct {
	ID          string `json:"id"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorName  string `json:"author_name"`
	AuthorImg   string `json:"author_img"`
	Date        string `json:"date"`
	LikeCount   int    `json:"like_count"`
	LikeIsLiked bool   `json:"like_isliked"`
	ReadTime    string `json:"read_time"`
}

package entity

// Author is a snapshot of the writer at creation time, not a reference.
type Author struct {
	Name string `json:"name"`
	Img  string `json:"img"`
}

// Like carries a global counter and a global flag. The two are updated
// independently.
type Like struct {
	Count   int  `json:"count"`
	IsLiked bool `json:"isliked"`
}

type Post struct {
	ID          string `json:"_id"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      Author `json:"author"`
	Date        string `json:"date"`
	Like        Like   `json:"like"`
	ReadTime    string `json:"readTime"`
}

// PostInput is one item of a create request. Missing fields are defaulted
// by the post use case.
type PostInput struct {
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Author      *Author `json:"author"`
	Date        string  `json:"date"`
	Like        *Like   `json:"like"`
	ReadTime    string  `json:"readTime"`
}

// PostPatch is a merge patch over the top level fields of a post. A supplied
// author or like replaces the embedded object as a whole.
type PostPatch struct {
	Image       *string `json:"image"`
	Category    *string `json:"category"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Author      *Author `json:"author"`
	Date        *string `json:"date"`
	Like        *Like   `json:"like"`
	ReadTime    *string `json:"readTime"`
}

func (p PostPatch) IsEmpty() bool {
	return p.Image == nil && p.Category == nil && p.Title == nil && p.Description == nil &&
		p.Author == nil && p.Date == nil && p.Like == nil && p.ReadTime == nil
}

func (p PostPatch) Apply(post *Post) {
	if p.Image != nil {
		post.Image = *p.Image
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Description != nil {
		post.Description = *p.Description
	}
	if p.Author != nil {
		post.Author = *p.Author
	}
	if p.Date != nil {
		post.Date = *p.Date
	}
	if p.Like != nil {
		post.Like = *p.Like
	}
	if p.ReadTime != nil {
		post.ReadTime = *p.ReadTime
	}
}

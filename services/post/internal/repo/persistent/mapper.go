package persistent

import (
	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	return &entity.Post{
		ID:          m.ID,
		Image:       m.Image,
		Category:    m.Category,
		Title:       m.Title,
		Description: m.Description,
		Author:      entity.Author{Name: m.Author.Name, Img: m.Author.Img},
		Date:        m.Date,
		Like:        entity.Like{Count: m.Like.Count, IsLiked: m.Like.IsLiked},
		ReadTime:    m.ReadTime,
	}
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	return &model.PostModel{
		ID:          e.ID,
		Image:       e.Image,
		Category:    e.Category,
		Title:       e.Title,
		Description: e.Description,
		Author:      model.AuthorColumns{Name: e.Author.Name, Img: e.Author.Img},
		Date:        e.Date,
		Like:        model.LikeColumns{Count: e.Like.Count, IsLiked: e.Like.IsLiked},
		ReadTime:    e.ReadTime,
	}
}

// ToPostColumns turns a patch into a column/value map for gorm Updates.
func ToPostColumns(p entity.PostPatch) map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Image != nil {
		cols["image"] = *p.Image
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Author != nil {
		cols["author_name"] = p.Author.Name
		cols["author_img"] = p.Author.Img
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Like != nil {
		cols["like_count"] = p.Like.Count
		cols["like_is_liked"] = p.Like.IsLiked
	}
	if p.ReadTime != nil {
		cols["read_time"] = *p.ReadTime
	}
	return cols
}

func DocumentToPostEntity(d *model.PostDocument) *entity.Post {
	if d == nil {
		return nil
	}

	return &entity.Post{
		ID:          d.ID.Hex(),
		Image:       d.Image,
		Category:    d.Category,
		Title:       d.Title,
		Description: d.Description,
		Author:      entity.Author{Name: d.Author.Name, Img: d.Author.Img},
		Date:        d.Date,
		Like:        entity.Like{Count: d.Like.Count, IsLiked: d.Like.IsLiked},
		ReadTime:    d.ReadTime,
	}
}

// ToPostDocument maps a post for insertion. An id that is not a valid
// ObjectID is dropped and left for the caller to assign.
func ToPostDocument(e *entity.Post) *model.PostDocument {
	if e == nil {
		return nil
	}

	doc := &model.PostDocument{
		Image:       e.Image,
		Category:    e.Category,
		Title:       e.Title,
		Description: e.Description,
		Author:      model.AuthorDocument{Name: e.Author.Name, Img: e.Author.Img},
		Date:        e.Date,
		Like:        model.LikeDocument{Count: e.Like.Count, IsLiked: e.Like.IsLiked},
		ReadTime:    e.ReadTime,
	}
	if oid, err := primitive.ObjectIDFromHex(e.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

// ToSetDocument turns a patch into the body of a $set update.
func ToSetDocument(p entity.PostPatch) bson.M {
	set := bson.M{}
	if p.Image != nil {
		set["image"] = *p.Image
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Author != nil {
		set["author"] = model.AuthorDocument{Name: p.Author.Name, Img: p.Author.Img}
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Like != nil {
		set["like"] = model.LikeDocument{Count: p.Like.Count, IsLiked: p.Like.IsLiked}
	}
	if p.ReadTime != nil {
		set["readTime"] = *p.ReadTime
	}
	return set
}

func RecordToPostEntity(r *model.PostRecord) *entity.Post {
	if r == nil {
		return nil
	}

	return &entity.Post{
		ID:          r.ID,
		Image:       r.Image,
		Category:    r.Category,
		Title:       r.Title,
		Description: r.Description,
		Author:      entity.Author{Name: r.AuthorName, Img: r.AuthorImg},
		Date:        r.Date,
		Like:        entity.Like{Count: r.LikeCount, IsLiked: r.LikeIsLiked},
		ReadTime:    r.ReadTime,
	}
}

func ToPostRecord(e *entity.Post) *model.PostRecord {
	if e == nil {
		return nil
	}

	return &model.PostRecord{
		ID:          e.ID,
		Image:       e.Image,
		Category:    e.Category,
		Title:       e.Title,
		Description: e.Description,
		AuthorName:  e.Author.Name,
		AuthorImg:   e.Author.Img,
		Date:        e.Date,
		LikeCount:   e.Like.Count,
		LikeIsLiked: e.Like.IsLiked,
		ReadTime:    e.ReadTime,
	}
}

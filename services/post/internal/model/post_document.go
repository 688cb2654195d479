package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type AuthorDocument struct {
	Name string `bson:"name"`
	Img  string `bson:"img"`
}

type LikeDocument struct {
	Count   int  `bson:"count"`
	IsLiked bool `bson:"isliked"`
}

// PostDocument mirrors the documents of the posts collection.
type PostDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Image       string             `bson:"image"`
	Category    string             `bson:"category"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Author      AuthorDocument     `bson:"author"`
	Date        string             `bson:"date"`
	Like        LikeDocument       `bson:"like"`
	ReadTime    string             `bson:"readTime"`
}

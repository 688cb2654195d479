package queue

import "time"

type EventType string

const (
	EventPostCreated       EventType = "post.created"
	EventPostDeleted       EventType = "post.deleted"
	EventPostImageReplaced EventType = "post.image_replaced"
)

// PostEvent describes a change to a post. Image is the image the post held
// when the event happened; PreviousImage is only set on post.image_replaced.
type PostEvent struct {
	Type          EventType `json:"type"`
	PostID        string    `json:"post_id"`
	Image         string    `json:"image,omitempty"`
	PreviousImage string    `json:"previous_image,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReleasedImage is the image URL this event may have orphaned, if any.
func (e PostEvent) ReleasedImage() string {
	switch e.Type {
	case EventPostDeleted:
		return e.Image
	case EventPostImageReplaced:
		return e.PreviousImage
	}
	return ""
}

package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultImageURL = "https://images.unsplash.com/photo-1506744038136-46273834b3fb?auto=format&fit=crop&w=800&q=80"

	// DateLayout is ISO-8601 in UTC with millisecond precision.
	DateLayout = "2006-01-02T15:04:05.000Z"

	WordsPerMinute = 200

	// Counted in place of a missing description.
	placeholderDescription = "temp min"
)

// MediaCategory names a folder of uploaded images.
type MediaCategory string

const (
	MediaCategoryUser MediaCategory = "user"
	MediaCategoryPost MediaCategory = "post"
)

func ParseMediaCategory(s string) (MediaCategory, error) {
	switch MediaCategory(s) {
	case MediaCategoryUser, MediaCategoryPost:
		return MediaCategory(s), nil
	}
	return "", ErrUnknownMediaCategory
}

// ReadTime returns "<n> min read" for n = ceil(words/200). An empty
// description is counted as the two words "temp min".
func ReadTime(description string) string {
	if description == "" {
		description = placeholderDescription
	}
	words := wordCount(description)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}

// wordCount counts the pieces left by splitting s on whitespace runs, so
// leading and trailing whitespace each add an empty piece and a
// whitespace-only string counts as two.
func wordCount(s string) int {
	if s == "" {
		return 1
	}
	n := len(strings.Fields(s))
	if first, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(first) {
		n++
	}
	if last, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(last) {
		n++
	}
	return n
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// NewPost builds the record to persist from a create item. fallback is used
// as the author when the item carries none; nil means an empty author.
func NewPost(in PostInput, now time.Time, fallback *Author) *Post {
	post := &Post{
		Image:       in.Image,
		Category:    in.Category,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		ReadTime:    in.ReadTime,
	}

	if post.Image == "" {
		post.Image = DefaultImageURL
	}
	if post.Date == "" {
		post.Date = FormatDate(now)
	}
	if post.ReadTime == "" {
		post.ReadTime = ReadTime(in.Description)
	}

	switch {
	case in.Author != nil:
		post.Author = *in.Author
	case fallback != nil:
		post.Author = *fallback
	}

	if in.Like != nil {
		post.Like = *in.Like
	}

	return post
}

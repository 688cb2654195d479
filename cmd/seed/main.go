package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"blop-post/pkg/config"
	"blop-post/pkg/logger"
)

type seedAuthor struct {
	Name string `json:"name"`
	Img  string `json:"img"`
}

type seedLike struct {
	Count   int  `json:"count"`
	IsLiked bool `json:"isliked"`
}

type seedPost struct {
	Image       string     `json:"image"`
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Author      seedAuthor `json:"author"`
	Date        string     `json:"date"`
	Like        seedLike   `json:"like"`
	ReadTime    string     `json:"readTime"`
}

var initialPosts = []seedPost{
	{
		Image:       "https://images.unsplash.com/photo-1506744038136-46273834b3fb?auto=format&fit=crop&w=800&q=80",
		Category:    "Technology",
		Title:       "The Rise of AI: How Artificial Intelligence is Changing the World",
		Description: "Artificial Intelligence (AI) is transforming industries, from healthcare to finance. Learn how AI is reshaping human work and creativity.",
		Author:      seedAuthor{Name: "John Doe", Img: "https://randomuser.me/api/portraits/men/10.jpg"},
		Date:        "August 15, 2023",
	},
	{
		Image:       "https://images.unsplash.com/photo-1522202176988-66273c2fd55f?auto=format&fit=crop&w=800&q=80",
		Category:    "Design",
		Title:       "Design Thinking: The Art of Solving Real Problems",
		Description: "Discover how design thinking drives innovation and helps businesses build user-centered products.",
		Author:      seedAuthor{Name: "Sarah Lee", Img: "https://randomuser.me/api/portraits/women/20.jpg"},
		Date:        "September 2, 2023",
	},
}

// seed posts the initial posts through the API when the collection is empty.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	var (
		baseURL = flag.String("url", cfg.PublicBaseURL, "base URL of the post service")
		token   = flag.String("token", "", "bearer token for AUTH_REQUIRED deployments")
	)
	flag.Parse()

	log := logger.New()
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s := &seeder{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: *baseURL,
		token:   *token,
		log:     log,
	}
	if err := s.run(ctx); err != nil {
		log.Error("Failed to seed posts: %v", err)
		panic(err)
	}
}

type seeder struct {
	client  *http.Client
	baseURL string
	token   string
	log     *logger.Logger
}

func (s *seeder) run(ctx context.Context) error {
	existing, err := s.countPosts(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		s.log.Info("Found %d posts, skipping seed", existing)
		return nil
	}

	body, err := json.Marshal(initialPosts)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/posts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("create posts returned %d: %s", resp.StatusCode, string(msg))
	}

	s.log.Info("Seeded %d posts", len(initialPosts))
	return nil
}

func (s *seeder) countPosts(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/posts", nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("list posts returned %d", resp.StatusCode)
	}

	var posts []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return 0, fmt.Errorf("failed to decode posts: %w", err)
	}
	return len(posts), nil
}

package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postRepository stores posts in postgres or mysql through gorm.
type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) InsertMany(ctx context.Context, posts []*entity.Post) ([]*entity.Post, error) {
	if len(posts) == 0 {
		return []*entity.Post{}, nil
	}

	// created_at drives list order, so items of one batch get distinct,
	// increasing timestamps.
	base := time.Now().UTC()
	postModels := make([]*model.PostModel, len(posts))
	for i, post := range posts {
		m := ToPostModel(post)
		m.ID = uuid.New().String()
		m.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		m.UpdatedAt = m.CreatedAt
		postModels[i] = m
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(postModels).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert posts: %w", err)
	}

	created := make([]*entity.Post, len(postModels))
	for i, m := range postModels {
		created[i] = ToPostEntity(m)
	}
	return created, nil
}

func (r *postRepository) FindAll(ctx context.Context) ([]*entity.Post, error) {
	var postModels []model.PostModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&postModels).Error; err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	if !validUUID(id) {
		return nil, entity.ErrPostNotFound
	}

	var postModel model.PostModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, notFoundOr(err, "find post")
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error) {
	if !validUUID(id) {
		return nil, entity.ErrPostNotFound
	}

	var postModel model.PostModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockingClause(tx)...).Where("id = ?", id).First(&postModel).Error; err != nil {
			return err
		}

		if cols := ToPostColumns(patch); len(cols) > 0 {
			if err := tx.Model(&postModel).Updates(cols).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", id).First(&postModel).Error
		}
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "update post")
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) IncrementLikeCount(ctx context.Context, id string, delta int) (*entity.Post, error) {
	if !validUUID(id) {
		return nil, entity.ErrPostNotFound
	}

	var postModel model.PostModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PostModel{}).
			Where("id = ?", id).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&postModel).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "increment like count")
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) DeleteByID(ctx context.Context, id string) (*entity.Post, error) {
	if !validUUID(id) {
		return nil, entity.ErrPostNotFound
	}

	var postModel model.PostModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockingClause(tx)...).Where("id = ?", id).First(&postModel).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.PostModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "delete post")
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.PostModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete all posts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *postRepository) CountImageReferences(ctx context.Context, url string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PostModel{}).
		Where("image = ? OR author_img = ?", url, url).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count image references: %w", err)
	}
	return count, nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// lockingClause takes a row lock on dialects that support SELECT ... FOR UPDATE.
func lockingClause(tx *gorm.DB) []clause.Expression {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrPostNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

package persistent

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/model"

	"github.com/dgraph-io/badger/v4"
)

const (
	postKeyPrefix = "post:"
	postSeqKey    = "seq:post"

	maxTxnAttempts = 1000
)

// Ids are zero padded hex sequence numbers so key order is insertion order.
var badgerIDPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// badgerPostRepository keeps posts in an embedded badger store. Writes run
// in serializable transactions and are retried on conflict.
type badgerPostRepository struct {
	db *badger.DB
}

func NewBadgerPostRepository(db *badger.DB) PostRepository {
	return &badgerPostRepository{db: db}
}

func (r *badgerPostRepository) InsertMany(ctx context.Context, posts []*entity.Post) ([]*entity.Post, error) {
	var created []*entity.Post
	err := r.update(ctx, func(txn *badger.Txn) error {
		created = make([]*entity.Post, 0, len(posts))
		for _, post := range posts {
			seq, err := getNextID(txn, postSeqKey)
			if err != nil {
				return err
			}

			record := ToPostRecord(post)
			record.ID = fmt.Sprintf("%016x", seq)
			if err := putRecord(txn, record); err != nil {
				return err
			}
			created = append(created, RecordToPostEntity(record))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert posts: %w", err)
	}
	return created, nil
}

func (r *badgerPostRepository) FindAll(ctx context.Context) ([]*entity.Post, error) {
	posts := []*entity.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanRecords(ctx, txn, func(record *model.PostRecord) {
			posts = append(posts, RecordToPostEntity(record))
		})
	})
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	return posts, nil
}

func (r *badgerPostRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	if !badgerIDPattern.MatchString(id) {
		return nil, entity.ErrPostNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *model.PostRecord
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		record, err = getRecord(txn, id)
		return err
	})
	if err != nil {
		return nil, keyNotFoundOr(err, "find post")
	}
	return RecordToPostEntity(record), nil
}

func (r *badgerPostRepository) Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error) {
	return r.modify(ctx, id, "update post", func(post *entity.Post) {
		patch.Apply(post)
	})
}

func (r *badgerPostRepository) IncrementLikeCount(ctx context.Context, id string, delta int) (*entity.Post, error) {
	return r.modify(ctx, id, "increment like count", func(post *entity.Post) {
		post.Like.Count += delta
	})
}

func (r *badgerPostRepository) modify(ctx context.Context, id, op string, mutate func(*entity.Post)) (*entity.Post, error) {
	if !badgerIDPattern.MatchString(id) {
		return nil, entity.ErrPostNotFound
	}

	var updated *entity.Post
	err := r.update(ctx, func(txn *badger.Txn) error {
		record, err := getRecord(txn, id)
		if err != nil {
			return err
		}

		post := RecordToPostEntity(record)
		mutate(post)
		post.ID = id

		if err := putRecord(txn, ToPostRecord(post)); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, keyNotFoundOr(err, op)
	}
	return updated, nil
}

func (r *badgerPostRepository) DeleteByID(ctx context.Context, id string) (*entity.Post, error) {
	if !badgerIDPattern.MatchString(id) {
		return nil, entity.ErrPostNotFound
	}

	var deleted *entity.Post
	err := r.update(ctx, func(txn *badger.Txn) error {
		record, err := getRecord(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(postKey(id)); err != nil {
			return err
		}
		deleted = RecordToPostEntity(record)
		return nil
	})
	if err != nil {
		return nil, keyNotFoundOr(err, "delete post")
	}
	return deleted, nil
}

func (r *badgerPostRepository) DeleteAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.update(ctx, func(txn *badger.Txn) error {
		var keys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(postKeyPrefix)

		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		count = int64(len(keys))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete all posts: %w", err)
	}
	return count, nil
}

func (r *badgerPostRepository) CountImageReferences(ctx context.Context, url string) (int64, error) {
	var count int64
	err := r.db.View(func(txn *badger.Txn) error {
		return scanRecords(ctx, txn, func(record *model.PostRecord) {
			if record.Image == url || record.AuthorImg == url {
				count++
			}
		})
	})
	if err != nil {
		return 0, fmt.Errorf("count image references: %w", err)
	}
	return count, nil
}

// update runs fn in a read-write transaction, retrying when a concurrent
// commit invalidated what fn read.
func (r *badgerPostRepository) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return badger.ErrConflict
}

// getNextID increments the counter stored under seqKey inside txn.
func getNextID(txn *badger.Txn, seqKey string) (uint64, error) {
	var current uint64
	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %q", seqKey)
			}
			current = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := txn.Set([]byte(seqKey), buf); err != nil {
		return 0, err
	}
	return next, nil
}

func postKey(id string) []byte {
	return []byte(postKeyPrefix + id)
}

func getRecord(txn *badger.Txn, id string) (*model.PostRecord, error) {
	item, err := txn.Get(postKey(id))
	if err != nil {
		return nil, err
	}

	var record model.PostRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &record)
	}); err != nil {
		return nil, err
	}
	return &record, nil
}

func putRecord(txn *badger.Txn, record *model.PostRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return txn.Set(postKey(record.ID), data)
}

func scanRecords(ctx context.Context, txn *badger.Txn, fn func(*model.PostRecord)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(postKeyPrefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var record model.PostRecord
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}
		fn(&record)
	}
	return nil
}

func keyNotFoundOr(err error, op string) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entity.ErrPostNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

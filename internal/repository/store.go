package repository

import "gorm.io/gorm"

// Store bundles the repositories so that services can run several writes
// in one transaction.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Projects ProjectRepository
	Tasks    TaskRepository
	Comments CommentRepository
}

// NewStore builds a Store over db. When comments is nil the comment log is
// kept in the same SQL database.
func NewStore(db *gorm.DB, comments CommentRepository) *Store {
	if comments == nil {
		comments = NewCommentRepository(db)
	}
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Projects: NewProjectRepository(db),
		Tasks:    NewTaskRepository(db),
		Comments: comments,
	}
}

// Transaction runs fn with repositories bound to a single transaction.
// An external comment log is passed through untouched.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		comments := s.Comments
		if _, ok := comments.(*GormCommentRepository); ok {
			comments = NewCommentRepository(tx)
		}
		return fn(&Store{
			db:       tx,
			Users:    NewUserRepository(tx),
			Projects: NewProjectRepository(tx),
			Tasks:    NewTaskRepository(tx),
			Comments: comments,
		})
	})
}

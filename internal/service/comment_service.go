package service

import (
	"context"
	"strings"

	"vibelet/internal/models"
	"vibelet/internal/repository"
)

// CommentService owns comment mutation after creation. Creating a comment
// lives on VibeService because it needs the visibility check; editing and
// deleting only need authorship.
type CommentService struct {
	commentRepo repository.CommentRepository
}

func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// UpdateComment lets the author change the comment text.
func (s *CommentService) UpdateComment(ctx context.Context, commentID, authorID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != authorID {
		return nil, models.NewForbiddenError("You are not the author of this comment")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the author's own comment.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, authorID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != authorID {
		return models.NewForbiddenError("You are not the author of this comment")
	}
	return s.commentRepo.Delete(ctx, commentID)
}

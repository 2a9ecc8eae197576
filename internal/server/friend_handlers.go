package server

import (
	"vibelet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/v1/friends/requests/:userId.
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "userId", "user ID")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.SendFriendRequest(c.UserContext(), currentUserID(c), receiverID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(friendship)
}

// GetPendingRequests handles GET /api/v1/friends/requests. Only requests
// awaiting the caller's decision are returned.
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListPendingRequests(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(requests)
}

// AcceptFriendRequest handles POST /api/v1/friends/requests/:id/accept.
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	friendshipID, err := s.parseID(c, "id", "friendship ID")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.AcceptFriendRequest(c.UserContext(), currentUserID(c), friendshipID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(friendship)
}

// RemoveFriendship handles DELETE /api/v1/friends/:id. It rejects a pending
// request or dissolves an accepted friendship; either way the edge is gone.
func (s *Server) RemoveFriendship(c *fiber.Ctx) error {
	friendshipID, err := s.parseID(c, "id", "friendship ID")
	if err != nil {
		return nil
	}

	if _, err := s.friendService.RemoveFriendship(c.UserContext(), currentUserID(c), friendshipID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFriends handles GET /api/v1/friends.
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.ListFriends(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(friends)
}

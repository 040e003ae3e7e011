package devserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	ok(c, s.store.Notifications(currentUser(c).ID, page, pageSize))
}

func (s *Server) handleUnreadCount(c *gin.Context) {
	ok(c, gin.H{"count": s.store.UnreadCount(currentUser(c).ID)})
}

func (s *Server) handleMarkRead(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := s.store.MarkRead(currentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleMarkAllRead(c *gin.Context) {
	s.store.MarkAllRead(currentUser(c).ID)
	ok(c, nil)
}

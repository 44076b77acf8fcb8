package http

import (
	"net/http"

	"github.com/dkeye/Meet/internal/adapters/rtc"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-gonic/gin"
)

func healthHandler(coord *app.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := coord.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"connections": stats.Connections,
			"rooms":       stats.Rooms,
		})
	}
}

func roomsHandler(coord *app.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": coord.Rooms()})
	}
}

func membersHandler(coord *app.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, err := domain.NewRoomID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		members, ok := coord.Members(room)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"room":    room,
			"members": members,
			"pending": len(coord.PendingEntries(room)),
		})
	}
}

func iceServersHandler(ice *rtc.ICEProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": ice.Servers()})
	}
}

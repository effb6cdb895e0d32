package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gin-gonic/gin"
)

// RoomsHandler is the REST view of the room directory. Unlike the live relay
// it refuses duplicate room ids and duplicate usernames.
type RoomsHandler struct {
	Rooms *app.RoomManager
}

type roomRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	Username string `json:"username" binding:"required"`
	UserID   string `json:"userId"`
}

type roomView struct {
	RoomID domain.RoomID `json:"roomId"`
	Users  []domain.User `json:"users"`
}

func (h *RoomsHandler) bind(c *gin.Context) (domain.RoomID, domain.User, bool) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return "", domain.User{}, false
	}
	id := req.UserID
	if id == "" {
		id = c.GetString(clientTokenKey)
	}
	u, err := domain.NewUser(domain.UserID(id), req.Username)
	if err != nil {
		writeError(c, domain.ErrMissingFields)
		return "", domain.User{}, false
	}
	return domain.RoomID(req.RoomID), u, true
}

func (h *RoomsHandler) create(c *gin.Context) {
	roomID, creator, ok := h.bind(c)
	if !ok {
		return
	}
	if _, err := h.Rooms.Create(roomID, creator); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Room created successfully",
		"roomId":  roomID,
		"creator": creator,
	})
}

func (h *RoomsHandler) join(c *gin.Context) {
	roomID, member, ok := h.bind(c)
	if !ok {
		return
	}
	users, err := h.Rooms.Join(roomID, member)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Joined room successfully",
		"roomId":  roomID,
		"users":   users,
	})
}

func (h *RoomsHandler) get(c *gin.Context) {
	room, err := h.Rooms.Get(domain.RoomID(c.Param("roomId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roomId":    room.ID,
		"users":     room.Members,
		"createdAt": room.CreatedAt.UnixMilli(),
	})
}

func (h *RoomsHandler) list(c *gin.Context) {
	rooms := h.Rooms.List()
	views := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, roomView{RoomID: r.ID, Users: r.Members})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "rooms": views})
}

func (h *RoomsHandler) delete(c *gin.Context) {
	if err := h.Rooms.Delete(domain.RoomID(c.Param("roomId"))); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": domain.Message(err)})
}

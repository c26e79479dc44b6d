package handler

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"main/dto"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// PreviewHub fans editor changes out to open preview sockets, grouped by
// page. It is the websocket transport next to the in-process bridge; both
// carry the same best-effort, replace-on-arrival updates.
type PreviewHub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]bool
}

func NewPreviewHub() *PreviewHub {
	return &PreviewHub{conns: make(map[string]map[*websocket.Conn]bool)}
}

func (h *PreviewHub) register(page string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[page] == nil {
		h.conns[page] = make(map[*websocket.Conn]bool)
	}
	h.conns[page][conn] = true
	h.mu.Unlock()
}

func (h *PreviewHub) unregister(page string, conn *websocket.Conn) {
	h.mu.Lock()
	if conns, ok := h.conns[page]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, page)
		}
	}
	h.mu.Unlock()
}

// BroadcastToPage writes the update to every preview socket open on the
// page. A failed write drops that socket; the rest still get the update.
func (h *PreviewHub) BroadcastToPage(page string, update dto.CMSUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns[page] {
		if err := conn.WriteJSON(update); err != nil {
			conn.Close()
			delete(h.conns[page], conn)
		}
	}
}

var previewUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(parsed.Host, r.Host)
	},
}

// PreviewSocketHandler upgrades a preview surface connection. The socket is
// receive-only from the client's point of view; the read loop only exists
// to notice the close.
func PreviewSocketHandler(c *gin.Context, hub *PreviewHub) {
	page := c.Query("page")
	if page == "" {
		utils.BadRequest(c, "Missing page parameter")
		return
	}

	conn, err := previewUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.TrackError("preview", "upgrade_failed")
		log.Printf("Warning: Failed to upgrade preview socket: %v", err)
		return
	}

	hub.register(page, conn)
	defer func() {
		hub.unregister(page, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// BroadcastHandler carries one in-progress editor change to the preview:
// the in-process bridge for same-process subscribers, the hub for sockets.
// Nothing is persisted.
func BroadcastHandler(c *gin.Context, hub *PreviewHub) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request")
		return
	}

	key := services.SlotKey(req.PageKey, req.SectionKey)
	services.GetBridge().Send(key, req.Value)
	hub.BroadcastToPage(req.PageKey, dto.CMSUpdate{
		Type:  "CMS_UPDATE",
		Key:   key,
		Value: req.Value,
	})

	utils.Success(c, gin.H{"message": "Broadcast sent"})
}

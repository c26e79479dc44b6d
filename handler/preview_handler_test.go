package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"main/dto"
	"main/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newPreviewRouter(hub *PreviewHub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		PreviewSocketHandler(c, hub)
	})
	router.POST("/broadcast", func(c *gin.Context) {
		BroadcastHandler(c, hub)
	})
	return router
}

func TestBroadcastHandlerFeedsBridge(t *testing.T) {
	prev := services.SetBridge(services.NewMemoryBridge())
	defer services.SetBridge(prev)

	hub := NewPreviewHub()
	router := newPreviewRouter(hub)

	var got []string
	unsubscribe := services.GetBridge().Subscribe(services.SlotKey("home", "hero_title"), func(v string) {
		got = append(got, v)
	})
	defer unsubscribe()

	body := `{"page_key":"home","section_key":"hero_title","value":"Welcome home"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/broadcast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("broadcast status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if len(got) != 1 || got[0] != "Welcome home" {
		t.Errorf("bridge deliveries = %v, want [Welcome home]", got)
	}
}

func TestBroadcastHandlerRejectsBadRequests(t *testing.T) {
	hub := NewPreviewHub()
	router := newPreviewRouter(hub)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"missing page key", `{"section_key":"hero_title","value":"x"}`},
		{"missing section key", `{"page_key":"home","value":"x"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/broadcast", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestPreviewSocketReceivesPageUpdates(t *testing.T) {
	hub := NewPreviewHub()
	router := newPreviewRouter(hub)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?page=home"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	// Registration happens inside the handler goroutine after the upgrade
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		registered := len(hub.conns["home"]) == 1
		hub.mu.Unlock()
		if registered {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastToPage("home", dto.CMSUpdate{Type: "CMS_UPDATE", Key: "home:hero_title", Value: "Welcome"})
	hub.BroadcastToPage("about", dto.CMSUpdate{Type: "CMS_UPDATE", Key: "about:intro", Value: "elsewhere"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error = %v", err)
	}

	var update dto.CMSUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		t.Fatalf("unmarshal error = %v (payload %s)", err, payload)
	}
	if update.Type != "CMS_UPDATE" || update.Key != "home:hero_title" || update.Value != "Welcome" {
		t.Errorf("update = %+v, want the home page broadcast", update)
	}
}

func TestPreviewSocketRequiresPageParam(t *testing.T) {
	hub := NewPreviewHub()
	router := newPreviewRouter(hub)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without a page parameter succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handshake response = %v, want %d", resp, http.StatusBadRequest)
	}
}

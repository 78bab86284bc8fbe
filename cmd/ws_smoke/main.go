package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"dogs_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

// Smoke test against a running server: registers a player over HTTP, opens
// two sockets for it and checks that a purchase on one is pushed to both.
// The player needs coins for the purchase; see cmd/create_test_player.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	tgID := flag.Int64("tg-id", 1234567890, "telegram id of the smoke player")
	flag.Parse()
	logger.Init("info", false)

	resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/player-info/%d/smoke", *addr, *tgID))
	if err != nil {
		logger.Fatal("register player", "error", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Fatal("register player", "status", resp.StatusCode)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://%s/ws/dogs/%d", *addr, *tgID)
	connA := dial(wsURL, "A")
	defer connA.Close()
	connB := dial(wsURL, "B")
	defer connB.Close()

	if err := connA.WriteJSON(map[string]string{"action": "get_dogs"}); err != nil {
		logger.Fatal("write A", "error", err)
	}
	readFrame(connA, "A")

	if err := connA.WriteJSON(map[string]string{"action": "create_dog"}); err != nil {
		logger.Fatal("write A", "error", err)
	}
	a := readFrame(connA, "A")
	b := readFrame(connB, "B")
	if a["error"] != nil {
		logger.Fatal("purchase failed", "error", a["error"])
	}
	if b["action"] != "get_dogs" {
		logger.Fatal("B did not get the push", "frame", b)
	}

	logger.Info("smoke test finished")
}

// dial connects and consumes the initial field frame.
func dial(url, name string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		logger.Fatal("dial", "conn", name, "error", err)
	}
	readFrame(conn, name)
	return conn
}

func readFrame(conn *websocket.Conn, name string) map[string]any {
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		logger.Fatal("read", "conn", name, "error", err)
	}
	var obj map[string]any
	_ = json.Unmarshal(msg, &obj)
	logger.Info("frame", "conn", name, "body", string(msg))
	return obj
}

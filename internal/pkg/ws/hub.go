package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// 消息类型
const (
	EventCommentCreated  = "comment_created"
	EventCommentApproved = "comment_approved"
	EventCommentDeleted  = "comment_deleted"
)

// Hub 按文章分房间的评论事件中心。
// 订阅某篇文章的所有连接会收到该文章下公开可见的评论变更。
type Hub struct {
	// 每篇文章可以有多个连接（多读者、多标签页）
	rooms map[int64]map[*Client]struct{}
	mu    sync.RWMutex
}

type Client struct {
	PostID int64
	Conn   *websocket.Conn
	mu     sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[client.PostID] == nil {
		h.rooms[client.PostID] = make(map[*Client]struct{})
	}
	h.rooms[client.PostID][client] = struct{}{}
	log.Printf("Post %d subscriber connected, room size: %d", client.PostID, len(h.rooms[client.PostID]))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.rooms[client.PostID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.rooms, client.PostID)
		}
	}
	log.Printf("Post %d subscriber disconnected", client.PostID)
}

// BroadcastToPost 向订阅某篇文章的所有连接发送消息
func (h *Hub) BroadcastToPost(postID int64, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns, ok := h.rooms[postID]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	// 复制一份引用，避免长时间持锁
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Printf("BroadcastToPost write error for post %d: %v", postID, err)
		}
	}
	return nil
}

// SubscriberCount 获取某篇文章的订阅连接数
func (h *Hub) SubscriberCount(postID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[postID])
}

// ConnectionCount 获取全部在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.rooms {
		total += len(conns)
	}
	return total
}

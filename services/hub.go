package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"jubensha/models"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

// Hub is the connection registry. Each game owns an independent room so one
// session's churn never contends with another's.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room

	games    *GameService
	narrator *NarratorService
}

type room struct {
	clients map[string]*Client
}

type Client struct {
	hub      *Hub
	gameID   string
	playerID string
	name     string
	socket   *websocket.Conn
	send     chan []byte
	done     chan struct{}

	closeOnce sync.Once
}

// shutdown signals the write pump to exit and closes the socket. Idempotent
// and safe from any goroutine. The send channel is never closed, so producers
// that still hold the handle (a late inbound frame, a broadcast in flight)
// can never hit a closed channel.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.socket != nil {
			c.socket.Close()
		}
	})
}

// Envelope is the bidirectional transport message frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outbound struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(games *GameService, narrator *NarratorService) *Hub {
	return &Hub{
		rooms:    make(map[string]*room),
		games:    games,
		narrator: narrator,
	}
}

// Connect registers a transport handle under (game, player). A prior handle
// for the pair is replaced, which is how reconnects work.
func (h *Hub) Connect(conn *websocket.Conn, gameID, playerID string) (*Client, error) {
	player, err := h.games.GetPlayer(gameID, playerID)
	if err != nil {
		return nil, err
	}

	client := &Client{
		hub:      h,
		gameID:   gameID,
		playerID: playerID,
		name:     player.Name,
		socket:   conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}

	if replaced := h.register(client); replaced != nil {
		// The old handle's read pump may still be dispatching a frame it
		// already received, so it is only signalled here, never torn down.
		log.Printf("Replacing connection for player %s in game %s", playerID, gameID)
		replaced.shutdown()
	}

	if err := h.games.SetConnected(gameID, playerID, true); err != nil {
		log.Printf("Failed to mark player %s connected: %v", playerID, err)
	}

	go client.writePump()
	go client.readPump()

	h.Broadcast(gameID, "player_joined", map[string]interface{}{
		"player_id":   playerID,
		"player_name": player.Name,
	}, playerID)

	// Sync the joiner with the current session state.
	if state, err := h.games.CurrentGameState(gameID); err == nil {
		h.SendToPlayer(gameID, playerID, "game_state_sync", state)
	} else {
		log.Printf("Failed to sync game state to player %s: %v", playerID, err)
	}

	return client, nil
}

// register stores the client in its game's room and returns any handle it
// replaced.
func (h *Hub) register(client *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[client.gameID]
	if !ok {
		r = &room{clients: make(map[string]*Client)}
		h.rooms[client.gameID] = r
	}

	replaced := r.clients[client.playerID]
	r.clients[client.playerID] = client
	return replaced
}

// unregister removes the client if it is still the registered handle for its
// (game, player) pair. An emptied room is deleted; it is recreated lazily on
// the next connect.
func (h *Hub) unregister(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[client.gameID]
	if !ok || r.clients[client.playerID] != client {
		return false
	}

	delete(r.clients, client.playerID)
	if len(r.clients) == 0 {
		delete(h.rooms, client.gameID)
	}
	return true
}

// remove tears down a disconnected client: registry slot, connection flag,
// player_left broadcast to everyone still in the room.
func (h *Hub) remove(client *Client) {
	if !h.unregister(client) {
		// A reconnect already took over this slot.
		return
	}

	client.shutdown()

	if err := h.games.SetConnected(client.gameID, client.playerID, false); err != nil {
		log.Printf("Failed to mark player %s disconnected: %v", client.playerID, err)
	}

	h.Broadcast(client.gameID, "player_left", map[string]interface{}{
		"player_id":   client.playerID,
		"player_name": client.name,
	}, client.playerID)
}

// Broadcast sends a message to every connected player in a game except
// exclude. Delivery is best-effort: a client whose buffer is full is dropped,
// and no send failure reaches the caller.
func (h *Hub) Broadcast(gameID, messageType string, payload interface{}, exclude string) {
	data, err := json.Marshal(outbound{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s broadcast: %v", messageType, err)
		return
	}

	var stale []*Client

	h.mu.RLock()
	if r, ok := h.rooms[gameID]; ok {
		for playerID, client := range r.clients {
			if playerID == exclude {
				continue
			}
			select {
			case client.send <- data:
			default:
				stale = append(stale, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		log.Printf("Player %s send buffer full in game %s, dropping connection", client.playerID, gameID)
		client.shutdown()
	}
}

// SendToPlayer is a best-effort unicast. It is a no-op when the player has no
// registered handle.
func (h *Hub) SendToPlayer(gameID, playerID, messageType string, payload interface{}) {
	data, err := json.Marshal(outbound{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s unicast: %v", messageType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[gameID]
	if !ok {
		return
	}
	client, ok := r.clients[playerID]
	if !ok {
		return
	}

	select {
	case client.send <- data:
	default:
		log.Printf("Player %s send buffer full in game %s, unicast dropped", playerID, gameID)
	}
}

// ConnectedPlayers returns the IDs of players with a registered handle.
func (h *Hub) ConnectedPlayers(gameID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[gameID]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(r.clients))
	for playerID := range r.clients {
		ids = append(ids, playerID)
	}
	return ids
}

// NarrateToGame generates Game-Master prose for a phase, persists it as a
// system message and broadcasts it. Safe to call from a goroutine; narration
// never blocks or fails session flow.
func (h *Hub) NarrateToGame(gameID string, phase models.GamePhase, action string) {
	prose := h.narrator.Narrate(context.Background(), gameID, phase, action)
	if prose == "" {
		return
	}

	if _, err := h.games.SaveMessage(gameID, "", "Game Master", prose, models.MessageKindSystem); err != nil {
		log.Printf("Failed to persist narration for game %s: %v", gameID, err)
	}

	h.Broadcast(gameID, "narration", map[string]interface{}{
		"phase":   phase,
		"content": prose,
	}, "")
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.socket.Close()
	}()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for player %s: %v", c.playerID, err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("Error unmarshaling message from player %s: %v", c.playerID, err)
			continue
		}

		c.handleMessage(env)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for {
		select {
		case message := <-c.send:
			w, err := c.socket.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-c.done:
			c.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) handleMessage(env Envelope) {
	switch env.Type {
	case "ping":
		data, _ := json.Marshal(outbound{Type: "pong", Payload: "pong"})
		select {
		case c.send <- data:
		default:
		}

	case "chat":
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.Content == "" {
			return
		}

		if _, err := c.hub.games.SaveMessage(c.gameID, c.playerID, c.name, payload.Content, models.MessageKindChat); err != nil {
			log.Printf("Failed to save chat message in game %s: %v", c.gameID, err)
			return
		}

		c.hub.Broadcast(c.gameID, "chat", map[string]interface{}{
			"sender_id":   c.playerID,
			"sender_name": c.name,
			"content":     payload.Content,
		}, "")

	case "search":
		var payload struct {
			LocationID string `json:"location_id"`
			Item       string `json:"item"`
		}
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.LocationID == "" {
			return
		}

		clue, err := c.hub.games.SearchLocation(c.gameID, c.playerID, payload.LocationID, payload.Item)
		if err != nil {
			log.Printf("Search failed for player %s in game %s: %v", c.playerID, c.gameID, err)
			return
		}
		if clue == nil {
			// Nothing new at this location; no broadcast.
			return
		}

		c.hub.Broadcast(c.gameID, "clue_found", map[string]interface{}{
			"finder_id":   c.playerID,
			"finder_name": c.name,
			"clue": map[string]interface{}{
				"id":          clue.ID,
				"name":        clue.Name,
				"description": clue.Description,
			},
		}, "")

	case "vote":
		var payload struct {
			SuspectID string `json:"suspect_id"`
		}
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.SuspectID == "" {
			return
		}

		if err := c.hub.games.CastVote(c.gameID, c.playerID, payload.SuspectID); err != nil {
			log.Printf("Vote failed for player %s in game %s: %v", c.playerID, c.gameID, err)
			return
		}

		// The suspect is never broadcast; tallies stay secret until asked for.
		c.hub.Broadcast(c.gameID, "vote_cast", map[string]interface{}{
			"voter_id":   c.playerID,
			"voter_name": c.name,
		}, "")

	case "phase_change":
		var payload struct {
			Phase models.GamePhase `json:"phase"`
		}
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.Phase == "" {
			return
		}

		// The realtime channel re-verifies host identity against durable
		// state instead of trusting the sender.
		isHost, err := c.hub.games.IsHost(c.gameID, c.playerID)
		if err != nil || !isHost {
			log.Printf("Ignoring phase_change from non-host player %s in game %s", c.playerID, c.gameID)
			return
		}

		c.hub.Broadcast(c.gameID, "phase_change", map[string]interface{}{
			"phase": payload.Phase,
		}, "")

	case "ask_master":
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.Content == "" {
			return
		}

		game, err := c.hub.games.GetGame(c.gameID)
		if err != nil || game.CurrentPhase != models.PhaseInvestigation {
			return
		}

		go c.hub.NarrateToGame(c.gameID, models.PhaseInvestigation, payload.Content)

	default:
		log.Printf("Unknown message type %q from player %s in game %s", env.Type, c.playerID, c.gameID)
	}
}

package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// client serialises writes to one socket.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type (
	selectDateData struct {
		Date string `json:"date"`
	}
	logFoodData struct {
		models.FoodEntry
		AnalysisID string `json:"analysis_id,omitempty"`
	}
	addWaterData struct {
		AmountML int `json:"amount_ml"`
	}
	searchData struct {
		Query string `json:"query"`
	}
	analyzeData struct {
		Image       string `json:"image,omitempty"` // base64
		MIMEType    string `json:"mime_type,omitempty"`
		Filename    string `json:"filename,omitempty"`
		Description string `json:"description,omitempty"`
	}
	analyticsData struct {
		Days int `json:"days"`
	}
	loginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	registerData struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
)

// analysis is an estimate waiting for the user to log it.
type analysis struct {
	ID string `json:"id"`
	*models.NutritionData
}

// analysisTTL is how long an unlogged analysis can still be logged.
const analysisTTL = 30 * time.Minute

type pendingAnalysis struct {
	data    models.NutritionData
	created time.Time
}

func (p pendingAnalysis) expired(now time.Time) bool {
	return now.Sub(p.created) > analysisTTL
}

// prunePending drops analyses that were never logged.
func (s *Server) prunePending(now time.Time) {
	s.pending.Range(func(id, v any) bool {
		if v.(pendingAnalysis).expired(now) {
			s.pending.Delete(id)
		}
		return true
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// Store client connection
	cl := &client{id: uuid.New().String(), conn: conn}
	s.clients.Store(cl.id, cl)
	defer s.clients.Delete(cl.id)
	log := s.log.With().Str("client", cl.id).Logger()
	log.Debug().Msg("client connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Error reading message")
			}
			break
		}

		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			s.sendError(cl, "Invalid message format")
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
		s.handleWebSocketMessage(ctx, cl, msg)
		cancel()
	}
	log.Debug().Msg("client disconnected")
}

func (s *Server) handleWebSocketMessage(ctx context.Context, cl *client, msg message) {
	if s.debug {
		s.log.Debug().Str("client", cl.id).Str("type", msg.Type).Msg("received message")
	}

	switch msg.Type {
	case "get_dashboard":
		s.sendMessage(cl, "dashboard", s.tracker.Dashboard())
	case "select_date":
		s.handleSelectDate(ctx, cl, msg.Data)
	case "log_food":
		s.handleLogFood(ctx, cl, msg.Data)
	case "add_water":
		s.handleAddWater(ctx, cl, msg.Data)
	case "search":
		var d searchData
		if !s.decode(cl, msg.Data, &d) {
			return
		}
		res := s.tracker.Search(ctx, d.Query)
		sendResult(s, cl, "search_results", res)
	case "analyze":
		s.handleAnalyze(ctx, cl, msg.Data)
	case "get_analytics":
		var d analyticsData
		if !s.decode(cl, msg.Data, &d) {
			return
		}
		sendResult(s, cl, "analytics", s.tracker.Analytics(ctx, d.Days))
	case "login":
		var d loginData
		if !s.decode(cl, msg.Data, &d) {
			return
		}
		s.finishAuth(cl, s.tracker.Login(ctx, d.Username, d.Password))
	case "register":
		var d registerData
		if !s.decode(cl, msg.Data, &d) {
			return
		}
		s.finishAuth(cl, s.tracker.Register(ctx, api.RegisterRequest{
			Username:        d.Username,
			Email:           d.Email,
			Password:        d.Password,
			ConfirmPassword: d.ConfirmPassword,
		}))
	case "logout":
		if err := s.tracker.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Msg("logout did not clear the store")
		}
		s.sendMessage(cl, "logged_out", nil)
		s.broadcastDashboard()
	case "health":
		sendResult(s, cl, "health", s.tracker.Health(ctx))
	default:
		s.sendError(cl, "Unknown message type")
	}
}

func (s *Server) handleSelectDate(ctx context.Context, cl *client, data json.RawMessage) {
	var d selectDateData
	if !s.decode(cl, data, &d) {
		return
	}
	day, err := time.ParseInLocation(nutrition.DateLayout, d.Date, time.Local)
	if err != nil {
		s.sendError(cl, "Invalid date, expected YYYY-MM-DD")
		return
	}
	if err := s.tracker.SelectDate(ctx, day); err != nil {
		s.log.Warn().Err(err).Str("date", d.Date).Msg("Error loading date")
	}
	s.broadcastDashboard()
}

func (s *Server) handleLogFood(ctx context.Context, cl *client, data json.RawMessage) {
	var d logFoodData
	if !s.decode(cl, data, &d) {
		return
	}

	entry := d.FoodEntry
	if d.AnalysisID != "" {
		v, ok := s.pending.Load(d.AnalysisID)
		if !ok || v.(pendingAnalysis).expired(time.Now()) {
			s.pending.Delete(d.AnalysisID)
			s.sendError(cl, "Analysis not found")
			return
		}
		entry = v.(pendingAnalysis).data.Entry()
	}
	entry.Timestamp = models.Now()

	res := s.tracker.LogFood(ctx, entry)
	sendResult(s, cl, "food_logged", res)
	if !res.Usable() {
		// The analysis stays pending so the user can retry.
		return
	}
	if d.AnalysisID != "" {
		s.pending.Delete(d.AnalysisID)
	}
	s.broadcastDashboard()
}

func (s *Server) handleAddWater(ctx context.Context, cl *client, data json.RawMessage) {
	var d addWaterData
	if !s.decode(cl, data, &d) {
		return
	}
	res := s.tracker.AddWater(ctx, d.AmountML)
	sendResult(s, cl, "water_logged", res)
	if res.Usable() {
		s.broadcastDashboard()
	}
}

func (s *Server) handleAnalyze(ctx context.Context, cl *client, data json.RawMessage) {
	var d analyzeData
	if !s.decode(cl, data, &d) {
		return
	}

	var res api.Result[*models.NutritionData]
	if d.Image != "" {
		img, err := base64.StdEncoding.DecodeString(d.Image)
		if err != nil {
			s.sendError(cl, "Invalid image format")
			return
		}
		res = s.tracker.AnalyzeImage(ctx, api.Image{Data: img, Filename: d.Filename, MIMEType: d.MIMEType})
	} else {
		res = s.tracker.AnalyzeDescription(ctx, d.Description)
	}
	if !res.Usable() {
		s.sendError(cl, res.Reason())
		return
	}

	// Keep the estimate until the user confirms it with log_food.
	now := time.Now()
	s.prunePending(now)
	a := analysis{ID: uuid.New().String(), NutritionData: res.Value}
	s.pending.Store(a.ID, pendingAnalysis{data: *res.Value, created: now})
	sendResult(s, cl, "analysis", api.Result[analysis]{Value: a, Status: res.Status, Err: res.Err})
}

func (s *Server) finishAuth(cl *client, res api.Result[models.AuthResponse]) {
	if !res.Usable() {
		s.sendError(cl, res.Reason())
		return
	}
	// The token stays on this side.
	out := res.Value
	out.Token = ""
	sendResult(s, cl, "auth", api.Result[models.AuthResponse]{Value: out, Status: res.Status, Err: res.Err})
	s.broadcastDashboard()
}

func (s *Server) decode(cl *client, data json.RawMessage, v any) bool {
	if len(data) == 0 {
		return true
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.sendError(cl, "Invalid message data")
		return false
	}
	return true
}

// sendResult sends a result's value with its status; failures become errors.
func sendResult[T any](s *Server, cl *client, messageType string, res api.Result[T]) {
	if !res.Usable() {
		s.sendError(cl, res.Reason())
		return
	}
	msg := map[string]any{
		"type":   messageType,
		"data":   res.Value,
		"status": res.Status.String(),
	}
	if res.IsDegraded() {
		msg["reason"] = res.Reason()
	}
	s.write(cl, messageType, msg)
}

func (s *Server) sendMessage(cl *client, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}
	s.write(cl, messageType, msg)
}

func (s *Server) sendError(cl *client, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}
	s.write(cl, "error", msg)
}

func (s *Server) write(cl *client, messageType string, msg any) {
	if err := cl.writeJSON(msg); err != nil {
		s.log.Warn().Err(err).Str("client", cl.id).Str("type", messageType).Msg("Error sending message")
		return
	}
	if s.debug {
		s.log.Debug().Str("client", cl.id).Str("type", messageType).Msg("Message sent successfully")
	}
}

// broadcastDashboard pushes the current dashboard to every connected client.
func (s *Server) broadcastDashboard() {
	d := s.tracker.Dashboard()
	s.clients.Range(func(_, v any) bool {
		s.sendMessage(v.(*client), "dashboard", d)
		return true
	})
}

func (s *Server) closeClients() {
	s.clients.Range(func(_, v any) bool {
		cl := v.(*client)
		cl.mu.Lock()
		err := cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		cl.mu.Unlock()
		if err != nil {
			s.log.Warn().Err(err).Str("client", cl.id).Msg("Error sending close message")
		}
		return true
	})
}

// Package fakeapi is an in-memory stand-in for the four remote TaskBuddy
// functions. It answers with the same envelopes and status codes and is used
// by tests and by demo mode.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/stefanpenner/taskbuddy/pkg/api"
)

const timestampLayout = "2006-01-02T15:04:05"

// maxNotifications mirrors the feed limit of the real endpoint.
const maxNotifications = 50

type account struct {
	user     api.User
	password []byte // bcrypt hash; nil never matches
	bio      *string
	avatar   *string
	chatID   *int64
}

type goalRecord struct {
	userID int64
	goal   api.Goal
}

type notificationRecord struct {
	userID       int64
	notification api.Notification
}

// Server holds all fake state behind one mutex.
type Server struct {
	mu            sync.Mutex
	accounts      map[int64]*account
	tokens        map[string]int64
	goals         []*goalRecord
	notifications []*notificationRecord
	nextID        int64
	now           func() time.Time
	logOut        io.Writer
}

// New creates an empty fake. Access logs go to logOut (nil discards).
func New(logOut io.Writer) *Server {
	if logOut == nil {
		logOut = io.Discard
	}
	return &Server{
		accounts: make(map[int64]*account),
		tokens:   make(map[string]int64),
		now:      time.Now,
		logOut:   logOut,
	}
}

// Endpoints returns the endpoint URLs for a server mounted at base.
func Endpoints(base string) api.Endpoints {
	base = strings.TrimRight(base, "/")
	return api.Endpoints{
		Auth:          base + "/auth",
		Goals:         base + "/goals",
		Notifications: base + "/notifications",
		Profile:       base + "/profile",
	}
}

// Handler returns the routed handler wrapped with access logging and panic
// recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/auth", s.handleLogin).Methods(http.MethodPost).Queries("action", "login")
	r.HandleFunc("/auth", s.handleRegister).Methods(http.MethodPost).Queries("action", "register")
	r.HandleFunc("/auth", s.handleVerify).Methods(http.MethodGet).Queries("action", "verify")

	r.HandleFunc("/goals", s.requireAuth(s.handleListGoals)).Methods(http.MethodGet)
	r.HandleFunc("/goals", s.requireAuth(s.handleCreateGoal)).Methods(http.MethodPost)
	r.HandleFunc("/goals", s.requireAuth(s.handleUpdateGoal)).Methods(http.MethodPut)
	r.HandleFunc("/goals", s.requireAuth(s.handleDeleteGoal)).Methods(http.MethodDelete)

	r.HandleFunc("/notifications", s.requireAuth(s.handleListNotifications)).Methods(http.MethodGet)
	r.HandleFunc("/notifications", s.requireAuth(s.handleMarkRead)).Methods(http.MethodPut)

	r.HandleFunc("/profile", s.requireAuth(s.handleGetProfile)).Methods(http.MethodGet)
	r.HandleFunc("/profile", s.requireAuth(s.handleUpdateProfile)).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return handlers.RecoveryHandler()(handlers.LoggingHandler(s.logOut, r))
}

// AddUser registers an account directly and returns it.
func (s *Server) AddUser(email, password, username string) api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, username)
}

func (s *Server) addUserLocked(email, password, username string) api.User {
	s.nextID++
	u := api.User{
		ID:        s.nextID,
		Email:     email,
		Username:  username,
		CreatedAt: s.now().Format(timestampLayout),
	}
	s.accounts[u.ID] = &account{user: u, password: hashPassword(password)}
	return u
}

// maxPasswordLen is the longest input bcrypt accepts.
const maxPasswordLen = 72

func hashPassword(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil
	}
	return hash
}

func (a *account) checkPassword(password string) bool {
	return a.password != nil && bcrypt.CompareHashAndPassword(a.password, []byte(password)) == nil
}

// IssueToken creates a token for userID.
func (s *Server) IssueToken(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(userID)
}

func (s *Server) issueTokenLocked(userID int64) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// RevokeToken forgets a token so further calls with it get 401.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// AddGoal stores a goal for userID and returns the canonical record.
func (s *Server) AddGoal(userID int64, in api.GoalInput) api.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addGoalLocked(userID, in)
}

func (s *Server) addGoalLocked(userID int64, in api.GoalInput) api.Goal {
	s.nextID++
	ts := s.now().Format(timestampLayout)
	g := api.Goal{
		ID:          s.nextID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Progress:    in.Progress,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if g.Priority == "" {
		g.Priority = "medium"
	}
	if g.Status == "" {
		g.Status = api.GoalStatusPending
	}
	s.goals = append(s.goals, &goalRecord{userID: userID, goal: g})
	return g
}

// PurgeGoal removes a goal outright, as if its row were gone from the
// database. Later updates and deletes of it get 404.
func (s *Server) PurgeGoal(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.goals {
		if rec.goal.ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return true
		}
	}
	return false
}

// Goals returns every stored goal of userID, soft-deleted ones included.
func (s *Server) Goals(userID int64) []api.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goalsLocked(userID)
}

func (s *Server) goalsLocked(userID int64) []api.Goal {
	var result []api.Goal
	// newest first
	for i := len(s.goals) - 1; i >= 0; i-- {
		if s.goals[i].userID == userID {
			result = append(result, s.goals[i].goal)
		}
	}
	return result
}

// Notify adds a notification for userID.
func (s *Server) Notify(userID int64, kind, title, message string) api.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifyLocked(userID, kind, title, message)
}

func (s *Server) notifyLocked(userID int64, kind, title, message string) api.Notification {
	s.nextID++
	n := api.Notification{
		ID:        s.nextID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: s.now().Format(timestampLayout),
	}
	s.notifications = append(s.notifications, &notificationRecord{userID: userID, notification: n})
	return n
}

type handlerWithUser func(w http.ResponseWriter, r *http.Request, userID int64)

func (s *Server) requireAuth(next handlerWithUser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(api.HeaderAuthToken)
		s.mu.Lock()
		userID, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.Email == email && acc.checkPassword(body.Password) {
			token := s.issueTokenLocked(acc.user.ID)
			writeJSON(w, api.AuthResponse{User: acc.user, Token: token}, http.StatusOK)
			return
		}
	}
	writeError(w, "Invalid email or password", http.StatusUnauthorized)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if !decode(w, r, &body) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	username := strings.TrimSpace(body.Username)
	if email == "" || body.Password == "" || username == "" {
		writeError(w, "Email, password and username are required", http.StatusBadRequest)
		return
	}
	if len(body.Password) > maxPasswordLen {
		writeError(w, "Password is too long", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.Email == email {
			writeError(w, "User with this email already exists", http.StatusConflict)
			return
		}
	}
	u := s.addUserLocked(email, body.Password, username)
	s.notifyLocked(u.ID, "success", "Welcome to TaskBuddy!",
		"You have registered successfully. Start creating your first tasks!")
	token := s.issueTokenLocked(u.ID)
	writeJSON(w, api.AuthResponse{User: u, Token: token}, http.StatusCreated)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(api.HeaderAuthToken)
	if token == "" {
		writeError(w, "Token required", http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	_, ok := s.tokens[token]
	s.mu.Unlock()
	if !ok {
		writeError(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]bool{"valid": true}, http.StatusOK)
}

func (s *Server) handleListGoals(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	goals := s.goalsLocked(userID)
	s.mu.Unlock()
	if goals == nil {
		goals = []api.Goal{}
	}
	writeJSON(w, map[string]any{"goals": goals}, http.StatusOK)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, userID int64) {
	var in api.GoalInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeError(w, "Title is required", http.StatusBadRequest)
		return
	}
	g := s.AddGoal(userID, in)
	writeJSON(w, map[string]any{"goal": g}, http.StatusCreated)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request, userID int64) {
	var in api.GoalUpdate
	if !decode(w, r, &in) {
		return
	}
	if in.ID == 0 {
		writeError(w, "Goal ID is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findGoalLocked(userID, in.ID)
	if rec == nil {
		writeError(w, "Goal not found", http.StatusNotFound)
		return
	}
	g := &rec.goal
	if in.Title != nil {
		g.Title = *in.Title
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	if in.Category != nil {
		g.Category = *in.Category
	}
	if in.Priority != nil {
		g.Priority = *in.Priority
	}
	if in.Status != nil {
		g.Status = *in.Status
	}
	if in.StartDate != nil {
		g.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		g.EndDate = in.EndDate
	}
	if in.Progress != nil {
		g.Progress = *in.Progress
	}
	g.UpdatedAt = s.now().Format(timestampLayout)
	writeJSON(w, map[string]any{"goal": *g}, http.StatusOK)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, "Goal ID is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findGoalLocked(userID, id)
	if rec == nil {
		writeError(w, "Goal not found", http.StatusNotFound)
		return
	}
	rec.goal.Status = api.GoalStatusDeleted
	rec.goal.UpdatedAt = s.now().Format(timestampLayout)
	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (s *Server) findGoalLocked(userID, id int64) *goalRecord {
	for _, rec := range s.goals {
		if rec.userID == userID && rec.goal.ID == id {
			return rec
		}
	}
	return nil
}

func (s *Server) handleListNotifications(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	var list []api.Notification
	for i := len(s.notifications) - 1; i >= 0 && len(list) < maxNotifications; i-- {
		if s.notifications[i].userID == userID {
			list = append(list, s.notifications[i].notification)
		}
	}
	s.mu.Unlock()

	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	if list == nil {
		list = []api.Notification{}
	}
	writeJSON(w, api.NotificationList{Notifications: list, UnreadCount: unread}, http.StatusOK)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request, userID int64) {
	var body struct {
		ID int64 `json:"id"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.ID == 0 {
		writeError(w, "Notification ID is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	for _, rec := range s.notifications {
		if rec.userID == userID && rec.notification.ID == body.ID {
			rec.notification.IsRead = true
		}
	}
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"profile": s.profileLocked(acc)}, http.StatusOK)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, userID int64) {
	var in api.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}
	if in.Empty() {
		writeError(w, "No fields to update", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}
	if in.Username != nil {
		acc.user.Username = *in.Username
	}
	if in.Bio != nil {
		acc.bio = in.Bio
	}
	if in.AvatarURL != nil {
		acc.avatar = in.AvatarURL
	}
	if in.TelegramChatID != nil {
		acc.chatID = in.TelegramChatID
	}
	writeJSON(w, map[string]any{"profile": s.profileLocked(acc)}, http.StatusOK)
}

func (s *Server) profileLocked(acc *account) api.Profile {
	stats := api.ProfileStats{}
	for _, rec := range s.goals {
		if rec.userID != acc.user.ID || rec.goal.Status == api.GoalStatusDeleted {
			continue
		}
		stats.TotalGoals++
		if rec.goal.Status == api.GoalStatusCompleted {
			stats.CompletedGoals++
		}
	}
	return api.Profile{
		ID:             acc.user.ID,
		Email:          acc.user.Email,
		Username:       acc.user.Username,
		AvatarURL:      acc.avatar,
		Bio:            acc.bio,
		TelegramChatID: acc.chatID,
		CreatedAt:      acc.user.CreatedAt,
		Stats:          &stats,
	}
}

// UnreadCount returns how many notifications of userID are unread.
func (s *Server) UnreadCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.notifications {
		if rec.userID == userID && !rec.notification.IsRead {
			count++
		}
	}
	return count
}

// Users returns all account ids in creation order.
func (s *Server) Users() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, map[string]any{"error": msg}, status)
}

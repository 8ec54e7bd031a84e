package api

// User is the account record returned by the auth endpoint.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Goal status values understood by the goals endpoint.
const (
	GoalStatusPending   = "pending"
	GoalStatusCompleted = "completed"
	GoalStatusDeleted   = "deleted"
)

// Goal is the remote representation of a task.
type Goal struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Progress    int     `json:"progress"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// GoalInput is the body of a create request.
type GoalInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	Progress    int     `json:"progress"`
}

// GoalUpdate is a partial update. Nil fields are left out of the request
// body and therefore left unchanged remotely.
type GoalUpdate struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	Progress    *int    `json:"progress,omitempty"`
}

// Notification is a single entry of the notifications feed.
type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsRead    bool   `json:"isRead"`
	CreatedAt string `json:"createdAt"`
}

// NotificationList is the notifications envelope.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// ProfileStats holds the goal counters computed by the profile endpoint.
type ProfileStats struct {
	TotalGoals     int `json:"totalGoals"`
	CompletedGoals int `json:"completedGoals"`
}

// CompletionRate returns the completed share as a percentage.
func (s ProfileStats) CompletionRate() float64 {
	if s.TotalGoals == 0 {
		return 0
	}
	return float64(s.CompletedGoals) / float64(s.TotalGoals) * 100
}

// Profile is the user profile with derived stats.
type Profile struct {
	ID             int64         `json:"id"`
	Email          string        `json:"email"`
	Username       string        `json:"username"`
	AvatarURL      *string       `json:"avatarUrl,omitempty"`
	Bio            *string       `json:"bio,omitempty"`
	TelegramChatID *int64        `json:"telegramChatId,omitempty"`
	CreatedAt      string        `json:"createdAt"`
	Stats          *ProfileStats `json:"stats,omitempty"`
}

// ProfileUpdate is a partial profile update.
type ProfileUpdate struct {
	Username       *string `json:"username,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	AvatarURL      *string `json:"avatarUrl,omitempty"`
	TelegramChatID *int64  `json:"telegramChatId,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u ProfileUpdate) Empty() bool {
	return u.Username == nil && u.Bio == nil && u.AvatarURL == nil && u.TelegramChatID == nil
}

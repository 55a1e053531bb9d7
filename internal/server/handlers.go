package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dta-platform/adminctl/internal/live"
	"github.com/dta-platform/adminctl/internal/model"
	"github.com/dta-platform/adminctl/internal/server/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeDataError maps dataset errors onto the console's error envelope.
func writeDataError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		writeMessage(w, http.StatusBadRequest, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pushStats broadcasts refreshed dashboard counters after a mutation.
func (s *Server) pushStats() {
	s.hub.broadcast(live.EventDashboardUpdate, s.data.Stats())
}

// ---------------------------------------------------------------------------
// Session, profile, dashboard
// ---------------------------------------------------------------------------

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	token, _, err := s.authSvc.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResult{Token: token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	for _, a := range s.data.Admins() {
		if a.Email == p.Email {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	// The token is valid but the admin record is gone from the dataset.
	writeJSON(w, http.StatusOK, model.Admin{ID: p.AdminID, Email: p.Email})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd model.ProfileUpdate
	if !decodeBody(w, r, &upd) {
		return
	}
	p := middleware.GetPrincipal(r.Context())
	if err := s.data.UpdateAdmin(p.Email, upd); err != nil {
		writeDataError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated successfully")
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Stats())
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Users())
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.data.User(chi.URLParam(r, "userId"))
	if err != nil {
		writeDataError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var nu model.NewUser
	if !decodeBody(w, r, &nu) {
		return
	}
	if _, err := s.data.CreateUser(nu); err != nil {
		writeDataError(w, err)
		return
	}
	s.pushStats()
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.data.DeleteUser(chi.URLParam(r, "userId")); err != nil {
		writeDataError(w, err)
		return
	}
	s.pushStats()
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

func (s *Server) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.data.SetUserStatus(chi.URLParam(r, "userId"), body.Status); err != nil {
		writeDataError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "User status updated successfully")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := s.data.LogEmail(chi.URLParam(r, "userId"), "password-reset"); err != nil {
		writeDataError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset email sent successfully")
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.data.ConfirmEmail(chi.URLParam(r, "userId")); err != nil {
		writeDataError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Email confirmed successfully")
}

func (s *Server) handleResendConfirmation(w http.ResponseWriter, r *http.Request) {
	if err := s.data.LogEmail(chi.URLParam(r, "userId"), "confirmation"); err != nil {
		writeDataError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Confirmation email sent successfully")
}

func (s *Server) handlePendingConfirmations(w http.ResponseWriter, r *http.Request) {
	users := s.data.PendingConfirmations()
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Tasks())
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var nt model.NewTask
	if !decodeBody(w, r, &nt) {
		return
	}
	s.data.CreateTask(nt)
	s.pushStats()
	writeMessage(w, http.StatusCreated, "Task created successfully")
}

func (s *Server) handleArchiveTask(w http.ResponseWriter, r *http.Request) {
	if err := s.data.SetTaskStatus(chi.URLParam(r, "taskId"), model.TaskStatusArchived); err != nil {
		writeDataError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task archived successfully")
}

func (s *Server) handleUnarchiveTask(w http.ResponseWriter, r *http.Request) {
	if err := s.data.SetTaskStatus(chi.URLParam(r, "taskId"), model.TaskStatusActive); err != nil {
		writeDataError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task unarchived successfully")
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.data.DeleteTask(chi.URLParam(r, "taskId")); err != nil {
		writeDataError(w, err)
		return
	}
	s.pushStats()
	writeMessage(w, http.StatusOK, "Task deleted successfully")
}

// ---------------------------------------------------------------------------
// Withdrawals
// ---------------------------------------------------------------------------

func (s *Server) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Withdrawals())
}

func (s *Server) withdrawalTransition(status, successMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.data.SetWithdrawalStatus(chi.URLParam(r, "withdrawalId"), status); err != nil {
			writeDataError(w, err)
			return
		}
		s.pushStats()
		writeMessage(w, http.StatusOK, successMsg)
	}
}

// ---------------------------------------------------------------------------
// Referrals, upgrades
// ---------------------------------------------------------------------------

func (s *Server) handleListReferrals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Referrals())
}

func (s *Server) handleListUpgrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Upgrades())
}

func (s *Server) upgradeTransition(status, successMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.data.ResolveUpgrade(chi.URLParam(r, "upgradeId"), status); err != nil {
			writeDataError(w, err)
			return
		}
		s.pushStats()
		writeMessage(w, http.StatusOK, successMsg)
	}
}

// ---------------------------------------------------------------------------
// Admins, emails, notifications
// ---------------------------------------------------------------------------

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Admins())
}

func (s *Server) handleInviteAdmin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Email == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}
	s.data.InviteAdmin(body.Email)
	writeMessage(w, http.StatusOK, "Invitation sent successfully")
}

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Emails())
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var b model.Broadcast
	if !decodeBody(w, r, &b) {
		return
	}
	if b.Message == "" {
		writeMessage(w, http.StatusBadRequest, "message is required")
		return
	}
	s.hub.broadcast(live.EventNotification, b)
	writeMessage(w, http.StatusOK, "Notification sent successfully")
}

// handleWS authenticates the push subscription and hands the connection to
// the hub. The token arrives as a Bearer header or a token query parameter;
// browser WebSocket clients cannot set headers.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = bearerToken(r)
	}
	if token != "" {
		if _, err := s.authSvc.ValidateToken(r.Context(), token); err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
	}
	s.hub.serve(w, r)
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

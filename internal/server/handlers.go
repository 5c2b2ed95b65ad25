package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fieldbot/internal/auth"
	"fieldbot/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type agentInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	agent, err := s.agents.AgentByEmail(r.Context(), req.Email)
	if err != nil {
		s.logger.Error("login lookup failed", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if agent == nil || !auth.VerifyPassword(agent.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.Issue(*agent)
	if err != nil {
		s.logger.Error("token issue failed", "agent", agent.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logins.Inc()
	s.logger.Info("agent logged in", "agent", agent.ID, "email", agent.Email)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"agent": agentInfo{ID: agent.ID, Email: agent.Email, Name: agent.Name},
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Token expired")
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"agent": agentInfo{ID: claims.AgentID, Email: claims.Email, Name: claims.Name},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Stateless tokens, nothing to revoke server side.
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req messageRequest
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reply, err := s.responder.Ask(ctx, claims.AgentID, req.Message)
	if err != nil {
		s.logger.Error("chat request failed", "agent", claims.AgentID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	exchanges, err := s.history.RecentExchanges(r.Context(), claims.AgentID)
	if err != nil {
		s.logger.Error("history lookup failed", "agent", claims.AgentID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exchanges == nil {
		exchanges = []domain.Exchange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": exchanges})
}

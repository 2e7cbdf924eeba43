package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"booknet.org/internal/audit"
	"booknet.org/internal/auth"
	"booknet.org/internal/obs"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Firstname   string   `json:"firstname"`
	Lastname    string   `json:"lastname"`
	DateOfBirth string   `json:"date_of_birth"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Roles       []string `json:"roles"`
}

type authResponse struct {
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Token     string    `json:"jwt"`
	ExpiresAt time.Time `json:"expires_at"`
	Status    bool      `json:"status"`
}

const dateOfBirthLayout = "2006-01-02"

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := a.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		a.rejectLogin(w, r, req.Username, err)
		return
	}

	obs.CountLogin("success")
	obs.CountTokenIssued()
	_ = audit.LogEvent(r.Context(), "auth.login.succeeded", map[string]any{
		"subject": session.Subject,
	})
	writeJSON(w, http.StatusOK, authResponse{
		Username:  session.Subject,
		Message:   session.Message,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Status:    session.Success,
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	reg, err := a.buildRegistration(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.svc.Register(r.Context(), reg)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRoleSelection):
			writeError(w, r, http.StatusBadRequest, "the requested roles do not exist")
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeError(w, r, http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, r, http.StatusBadRequest, "email and password are required")
		default:
			writeError(w, r, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	obs.CountTokenIssued()
	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"subject": session.Subject,
		"roles":   reg.RoleNames,
	})
	writeJSON(w, http.StatusCreated, authResponse{
		Username:  session.Subject,
		Message:   session.Message,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Status:    session.Success,
	})
}

func (a *API) buildRegistration(req registerRequest) (auth.Registration, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return auth.Registration{}, errors.New("email and password are required")
	}
	roles := make([]string, 0, len(req.Roles))
	for _, role := range req.Roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return auth.Registration{}, errors.New("at least one role must be requested")
	}
	if len(roles) > a.roleCap {
		return auth.Registration{}, fmt.Errorf("cannot request more than %d roles", a.roleCap)
	}
	reg := auth.Registration{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
		RoleNames: roles,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
		if err != nil {
			return auth.Registration{}, errors.New("date_of_birth must be formatted yyyy-mm-dd")
		}
		reg.DateOfBirth = dob
	}
	return reg, nil
}

func (a *API) rejectLogin(w http.ResponseWriter, r *http.Request, username string, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		obs.CountLogin("invalid_credentials")
		_ = audit.LogEvent(r.Context(), "auth.login.rejected", map[string]any{
			"reason": "invalid_credentials",
		})
		writeError(w, r, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, auth.ErrAccountState):
		obs.CountLogin("account_state")
		_ = audit.LogEvent(r.Context(), "auth.login.rejected", map[string]any{
			"reason":  "account_state",
			"subject": username,
		})
		writeError(w, r, http.StatusForbidden, "account is not usable")
	default:
		obs.CountLogin("error")
		writeError(w, r, http.StatusInternalServerError, "authentication error")
	}
}

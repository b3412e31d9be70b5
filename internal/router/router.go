// Package router wires the HTTP API: registration and login, clip and
// highlight CRUD, markdown export, the storage health check and the
// trusted-subnet internal stats endpoint. Which resources sit behind the
// authorization gate is a configuration decision; clip creation is always
// gated because it attributes ownership.
package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/clipnotes/internal/auth"
	"github.com/patric-chuzhbe/clipnotes/internal/gzippedhttp"
	"github.com/patric-chuzhbe/clipnotes/internal/ipchecker"
	"github.com/patric-chuzhbe/clipnotes/internal/logger"
	"github.com/patric-chuzhbe/clipnotes/internal/models"
	"github.com/patric-chuzhbe/clipnotes/internal/service"
)

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler

	IssueToken(userID string) (string, error)

	AuthCookie(token string) *http.Cookie
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	svc       *service.Service
	auth      authenticator
	ipChecker *ipchecker.IPChecker
	validate  *validator.Validate
}

// New assembles the chi router with logging and gzip middleware and the
// full route table. The protectedResources set controls which resource
// groups are placed behind the authorization gate.
func New(
	svc *service.Service,
	authenticator authenticator,
	ipChecker *ipchecker.IPChecker,
	protectedResources map[string]bool,
) *chi.Mux {
	handlers := &Router{
		svc:       svc,
		auth:      authenticator,
		ipChecker: ipChecker,
		validate:  validator.New(),
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(gzippedhttp.UngzipRequest)
	router.Use(gzippedhttp.GzipResponse)

	router.Post(`/api/user/register`, handlers.PostRegister)
	router.Post(`/api/user/login`, handlers.PostLogin)
	router.Get(`/ping`, handlers.GetPing)
	router.Get(`/api/internal/stats`, handlers.GetStats)

	router.Route(`/api/clips`, func(clipsRouter chi.Router) {
		// Clip creation attributes ownership, so it is gated unconditionally.
		clipsRouter.Group(func(gated chi.Router) {
			gated.Use(authenticator.AuthenticateUser)
			gated.Post(`/`, handlers.PostClip)
		})

		clipsRouter.Group(func(clipRoutes chi.Router) {
			if protectedResources["clips"] {
				clipRoutes.Use(authenticator.AuthenticateUser)
			}
			clipRoutes.Get(`/`, handlers.GetClips)
			clipRoutes.Get(`/{clipID}`, handlers.GetClip)
			clipRoutes.Delete(`/{clipID}`, handlers.DeleteClip)
			clipRoutes.Get(`/{clipID}/export`, handlers.GetExport)
		})

		clipsRouter.Group(func(highlightRoutes chi.Router) {
			if protectedResources["highlights"] {
				highlightRoutes.Use(authenticator.AuthenticateUser)
			}
			highlightRoutes.Post(`/{clipID}/highlights`, handlers.PostHighlight)
			highlightRoutes.Get(`/{clipID}/highlights`, handlers.GetHighlights)
		})
	})

	return router
}

func (r *Router) writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder().Encode()`: ", zap.Error(err))
	}
}

func (r *Router) decodeAndValidate(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return err
	}

	return r.validate.Struct(target)
}

func getClipIDFromRequest(request *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(request, "clipID"), 10, 64)
}

// PostRegister handles signup: it validates the payload, hashes the
// password and creates the user. A taken username yields 409.
func (r *Router) PostRegister(response http.ResponseWriter, request *http.Request) {
	var authRequest models.AuthRequest
	if err := r.decodeAndValidate(request, &authRequest); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	userID, err := r.svc.SignUp(request.Context(), authRequest.Login, authRequest.Password)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) {
			http.Error(response, err.Error(), http.StatusConflict)
			return
		}
		logger.Log.Debugln("Error calling the `r.svc.SignUp()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusOK, models.RegisterResponse{UserID: userID})
}

// PostLogin handles login: it verifies the credentials and issues a session
// token, returned in the body and mirrored in the Authorization header and
// the auth cookie. Unknown username and wrong password are answered
// identically.
func (r *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	var authRequest models.AuthRequest
	if err := r.decodeAndValidate(request, &authRequest); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	usr, err := r.svc.Login(request.Context(), authRequest.Login, authRequest.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(response, err.Error(), http.StatusUnauthorized)
			return
		}
		logger.Log.Debugln("Error calling the `r.svc.Login()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	token, err := r.auth.IssueToken(usr.ID)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.auth.IssueToken()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.Header().Set("Authorization", token)
	http.SetCookie(response, r.auth.AuthCookie(token))

	r.writeJSON(response, http.StatusOK, models.LoginResponse{Token: token})
}

// PostClip creates a clip owned by the authenticated caller.
func (r *Router) PostClip(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		http.Error(response, auth.ErrNoCredential.Error(), http.StatusUnauthorized)
		return
	}

	var clipRequest models.ClipCreateRequest
	if err := r.decodeAndValidate(request, &clipRequest); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	clip, err := r.svc.CreateClip(
		request.Context(),
		clipRequest.URL,
		clipRequest.Title,
		clipRequest.Description,
		userID,
	)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.svc.CreateClip()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusCreated, models.ClipResponse{Clip: *clip})
}

// GetClips returns every stored clip.
func (r *Router) GetClips(response http.ResponseWriter, request *http.Request) {
	clips, err := r.svc.ListClips(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `r.svc.ListClips()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusOK, models.ClipsResponse{Clips: clips})
}

// GetClip returns a single clip by ID.
func (r *Router) GetClip(response http.ResponseWriter, request *http.Request) {
	clipID, err := getClipIDFromRequest(request)
	if err != nil {
		response.WriteHeader(http.StatusNotFound)
		return
	}

	clip, err := r.svc.GetClip(request.Context(), clipID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.WriteHeader(http.StatusNotFound)
			return
		}
		logger.Log.Debugln("Error calling the `r.svc.GetClip()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusOK, models.ClipResponse{Clip: *clip})
}

// DeleteClip removes a clip and its highlights, reporting whether a row was
// deleted.
func (r *Router) DeleteClip(response http.ResponseWriter, request *http.Request) {
	clipID, err := getClipIDFromRequest(request)
	if err != nil {
		response.WriteHeader(http.StatusNotFound)
		return
	}

	err = r.svc.DeleteClip(request.Context(), clipID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.WriteHeader(http.StatusNotFound)
			return
		}
		logger.Log.Debugln("Error calling the `r.svc.DeleteClip()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusOK, models.DeleteResponse{OK: true})
}

// PostHighlight attaches a highlight to an existing clip.
func (r *Router) PostHighlight(response http.ResponseWriter, request *http.Request) {
	clipID, err := getClipIDFromRequest(request)
	if err != nil {
		response.WriteHeader(http.StatusNotFound)
		return
	}

	var highlightRequest models.HighlightCreateRequest
	if err := r.decodeAndValidate(request, &highlightRequest); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	highlight, err := r.svc.AddHighlight(request.Context(), clipID, highlightRequest.HighlightText)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.WriteHeader(http.StatusNotFound)
			return
		}
		logger.Log.Debugln("Error calling the `r.svc.AddHighlight()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusCreated, models.HighlightResponse{Highlight: *highlight})
}

// GetHighlights returns a clip's highlights in insertion order.
func (r *Router) GetHighlights(response http.ResponseWriter, request *http.Request) {
	clipID, err := getClipIDFromRequest(request)
	if err != nil {
		response.WriteHeader(http.StatusNotFound)
		return
	}

	highlights, err := r.svc.ListHighlights(request.Context(), clipID)
	if err != nil {
		logger.Log.Debugln("Error calling the `r.svc.ListHighlights()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusOK, models.HighlightsResponse{Highlights: highlights})
}

// GetExport renders a clip's highlights as a downloadable markdown document.
func (r *Router) GetExport(response http.ResponseWriter, request *http.Request) {
	clipID, err := getClipIDFromRequest(request)
	if err != nil {
		response.WriteHeader(http.StatusNotFound)
		return
	}

	markdown, err := r.svc.ExportMarkdown(request.Context(), clipID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.WriteHeader(http.StatusNotFound)
			return
		}
		logger.Log.Debugln("Error calling the `r.svc.ExportMarkdown()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.Header().Set("Content-Disposition", `attachment; filename="highlights.md"`)
	response.Header().Set("Content-Type", "text/markdown")
	response.WriteHeader(http.StatusOK)
	if _, err := response.Write([]byte(markdown)); err != nil {
		logger.Log.Debugln("Error calling the `response.Write()`: ", zap.Error(err))
	}
}

// GetPing checks connectivity with the storage backend.
func (r *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := r.svc.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `r.svc.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetStats returns entity counts; the endpoint is reachable only from the
// configured trusted subnet.
func (r *Router) GetStats(response http.ResponseWriter, request *http.Request) {
	if r.ipChecker.IsTrustedSubnetEmpty() {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	clientIP, err := r.ipChecker.GetClientIP(request)
	if err != nil || !r.ipChecker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	stats, err := r.svc.GetStats(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `r.svc.GetStats()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	r.writeJSON(response, http.StatusOK, *stats)
}

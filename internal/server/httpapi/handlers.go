package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsight-app/finsight/internal/common"
	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/analysis"
	"github.com/finsight-app/finsight/internal/server/models"
	"github.com/finsight-app/finsight/internal/server/services"
)

type handlers struct {
	auth     *services.AuthService
	reports  *services.ReportService
	analysis *analysis.Client
	logger   logging.Logger
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// userView is the identity record handed to the frontend. The password
// hash never leaves the store layer.
type userView struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	FullName  string    `json:"full_name"`
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

func viewOf(u *models.User) userView {
	return userView{
		Username:  u.Username,
		Role:      u.Role,
		FullName:  u.FullName,
		ClientID:  u.ClientID,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, common.ErrorUsernameExists) ||
		errors.Is(err, common.ErrorCredentialsRequired) ||
		errors.Is(err, common.ErrorInvalidRole)
}

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if isValidationError(err) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error(c.Request.Context(), "registration failed", "error", err)
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"session_id": reg.SessionID,
		"user":       viewOf(reg.User),
	}, reg.Message)
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respondError(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.logger.Error(c.Request.Context(), "login failed", "error", err)
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	sessionID, err := h.auth.CreateSession(c.Request.Context(), user.Username)
	if err != nil {
		h.logger.Error(c.Request.Context(), "session creation failed", "error", err)
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"session_id": sessionID,
		"user":       viewOf(user),
	}, "Welcome back, "+user.FullName+"!")
}

func (h *handlers) logout(c *gin.Context) {
	token := sessionToken(c)
	if token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.logger.Error(c.Request.Context(), "logout failed", "error", err)
			respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
			return
		}
	}
	respondSuccess(c, http.StatusOK, nil, "logged out")
}

func (h *handlers) me(c *gin.Context) {
	username := c.GetString(ctxUsername)

	user, err := h.auth.GetUserInfo(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error(c.Request.Context(), "user lookup failed", "error", err)
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}

	respondSuccess(c, http.StatusOK, viewOf(user), "")
}

// currentClientID resolves the caller's analysis client id from the
// session user.
func (h *handlers) currentClientID(c *gin.Context) (string, bool) {
	user, err := h.auth.GetUserInfo(c.Request.Context(), c.GetString(ctxUsername))
	if err != nil {
		respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
		return "", false
	}
	return user.ClientID, true
}

func (h *handlers) listReports(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}

	reports, err := h.reports.ListReports(c.Request.Context(), clientID)
	if err != nil {
		h.logger.Error(c.Request.Context(), "report listing failed", "error", err)
		respondError(c, http.StatusBadGateway, "report store unavailable")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"client_id": clientID, "reports": reports}, "")
}

// ownedReportKey validates the key query parameter and checks it lies
// under the caller's client-id prefix, the same scope listReports uses.
// Reports belong to exactly one client; a key outside the caller's prefix
// is rejected before the store is touched.
func (h *handlers) ownedReportKey(c *gin.Context) (string, bool) {
	key := c.Query("key")
	if key == "" {
		respondError(c, http.StatusBadRequest, "missing report key")
		return "", false
	}

	clientID, ok := h.currentClientID(c)
	if !ok {
		return "", false
	}
	if !strings.HasPrefix(key, clientID) {
		respondError(c, http.StatusForbidden, "report does not belong to this account")
		return "", false
	}

	return key, true
}

func (h *handlers) getReport(c *gin.Context) {
	key, ok := h.ownedReportKey(c)
	if !ok {
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), key)
	if err != nil {
		h.logger.Error(c.Request.Context(), "report fetch failed", "key", key, "error", err)
		respondError(c, http.StatusBadGateway, "report store unavailable")
		return
	}

	respondSuccess(c, http.StatusOK, report, "")
}

func (h *handlers) reportDownloadURL(c *gin.Context) {
	key, ok := h.ownedReportKey(c)
	if !ok {
		return
	}

	url, err := h.reports.PresignReportURL(c.Request.Context(), key)
	if err != nil {
		h.logger.Error(c.Request.Context(), "report presign failed", "key", key, "error", err)
		respondError(c, http.StatusBadGateway, "report store unavailable")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"url": url}, "")
}

func (h *handlers) analysisHealth(c *gin.Context) {
	doc, err := h.analysis.Health(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, "analysis service unavailable")
		return
	}
	respondSuccess(c, http.StatusOK, doc, "")
}

func (h *handlers) uploadAndAnalyze(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid multipart form")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		respondError(c, http.StatusBadRequest, "no files uploaded")
		return
	}

	files := make([]analysis.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "unreadable upload: "+fh.Filename)
			return
		}
		defer f.Close()
		files = append(files, analysis.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        f,
		})
	}

	doc, err := h.analysis.UploadAndAnalyze(c.Request.Context(), clientID, files)
	if err != nil {
		h.logger.Error(c.Request.Context(), "upload failed", "client_id", clientID, "error", err)
		respondError(c, http.StatusBadGateway, "analysis service unavailable")
		return
	}

	respondSuccess(c, http.StatusOK, doc, "analysis started")
}

func (h *handlers) analysisStatus(c *gin.Context) {
	doc, err := h.analysis.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadGateway, "analysis service unavailable")
		return
	}
	respondSuccess(c, http.StatusOK, doc, "")
}

func (h *handlers) analysisDashboard(c *gin.Context) {
	clientID, ok := h.currentClientID(c)
	if !ok {
		return
	}

	doc, err := h.analysis.Dashboard(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, http.StatusBadGateway, "analysis service unavailable")
		return
	}
	respondSuccess(c, http.StatusOK, doc, "")
}

package apihandlers

import (
	"fmt"
	"net/http"
	"strconv"

	"postsorter/internal/app"
	"postsorter/internal/models"
	"postsorter/pkg/categorizer"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// RegisterRoutes mounts the API under /api/v1.
func (h *APIHandler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		saved := v1.Group("/saved")
		{
			saved.POST("", h.SavePostHandler)
			saved.GET("", h.ListSavedHandler)
			saved.GET("/:id", h.GetSavedHandler)
			saved.DELETE("/:id", h.RemoveSavedHandler)
			saved.PUT("/:id/folder", h.MovePostHandler)
		}

		folders := v1.Group("/folders")
		{
			folders.GET("", h.ListFoldersHandler)
			folders.POST("", h.CreateFolderHandler)
		}

		v1.POST("/categorize", h.CategorizeHandler)
		v1.GET("/categories", h.CategoriesHandler)
		v1.GET("/usage", h.UsageHandler)
		v1.GET("/health", h.HealthHandler)
	}
}

// --- Saved posts ---

func (h *APIHandler) SavePostHandler(c *gin.Context) {
	var post models.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	existed := h.App.SavedPostsService.IsPostSaved(c.Request.Context(), post.ID)
	sp, err := h.App.SavedPostsService.SavePost(c.Request.Context(), post)
	if err != nil {
		respondWithError(c, "SavePostHandler: failed to save post", err)
		return
	}

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": sp, "existed": existed})
}

func (h *APIHandler) ListSavedHandler(c *gin.Context) {
	limit, offset := parsePagination(c)
	saved, err := h.App.SavedPostsService.SavedPosts(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, "ListSavedHandler: failed to list saved posts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved, "limit": limit, "offset": offset})
}

// GetSavedHandler reports whether a post is saved or still categorizing.
func (h *APIHandler) GetSavedHandler(c *gin.Context) {
	id, err := parsePostID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	svc := h.App.SavedPostsService
	if svc.IsCategorizing(id) {
		c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"id": id, "saved": false, "categorizing": true}})
		return
	}
	sp, err := svc.GetSavedPost(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, "GetSavedHandler: failed to get saved post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "saved": true, "categorizing": false, "post": sp}})
}

func (h *APIHandler) RemoveSavedHandler(c *gin.Context) {
	id, err := parsePostID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.App.SavedPostsService.RemovePost(c.Request.Context(), id); err != nil {
		respondWithError(c, "RemoveSavedHandler: failed to remove post", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type movePostRequest struct {
	Folder string `json:"folder" binding:"required"`
}

func (h *APIHandler) MovePostHandler(c *gin.Context) {
	id, err := parsePostID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	var req movePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	sp, err := h.App.SavedPostsService.MovePost(c.Request.Context(), id, req.Folder)
	if err != nil {
		respondWithError(c, "MovePostHandler: failed to move post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sp})
}

// --- Folders ---

func (h *APIHandler) ListFoldersHandler(c *gin.Context) {
	folders, err := h.App.SavedPostsService.CategorizedPosts(c.Request.Context())
	if err != nil {
		respondWithError(c, "ListFoldersHandler: failed to list folders", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": folders})
}

type createFolderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Hashtags    string `json:"hashtags"` // comma-separated
}

func (h *APIHandler) CreateFolderHandler(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	f, err := h.App.SavedPostsService.CreateFolder(c.Request.Context(), req.Name, req.Description, req.Hashtags)
	if err != nil {
		respondWithError(c, "CreateFolderHandler: failed to create folder", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": f})
}

// --- Categorization ---

type categorizeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type categorizeResponse struct {
	categorizer.CategorizationResult
	Reason string `json:"fallback_reason,omitempty"`
}

// CategorizeHandler categorizes text without saving anything.
func (h *APIHandler) CategorizeHandler(c *gin.Context) {
	var req categorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	res := h.App.Categorizer.Categorize(c.Request.Context(), categorizer.CategorizationRequest{
		Title: req.Title,
		Body:  req.Content,
	})
	resp := categorizeResponse{CategorizationResult: res}
	if res.FallbackReason != nil {
		resp.Reason = res.FallbackReason.Error()
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *APIHandler) CategoriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": categorizer.Categories()})
}

// --- Usage & health ---

func (h *APIHandler) UsageHandler(c *gin.Context) {
	limit, offset := parsePagination(c)
	summary, err := h.App.CostTracker.Summary(c.Request.Context())
	if err != nil {
		respondWithError(c, "UsageHandler: failed to summarize usage", err)
		return
	}
	logs, err := h.App.CostTracker.ListUsage(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, "UsageHandler: failed to list usage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"summary": summary, "logs": logs}})
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	state := h.App.ModelState()
	status := "ok"
	if state == models.LoadStateFailed {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               status,
		"model":                state.String(),
		"categorization_ready": h.App.Categorizer.Ready(),
	})
}

// --- Params ---

// parsePostID parses the post ID from the path.
func parsePostID(c *gin.Context) (int64, error) {
	idStr := c.Param("id")
	if idStr == "" {
		return 0, fmt.Errorf("Missing post ID parameter")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid post ID format: %s", idStr)
	}
	return id, nil
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

package handler

import (
	"encoding/json"
	"net/http"

	"storybook-server/internal/models"
	"storybook-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

func parseStoryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid story ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *StoryHandler) listStories(c *gin.Context) {
	stories, err := h.stories.ListVisibleTo(c.Request.Context(), c.ClientIP())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponses(stories))
}

func (h *StoryHandler) searchStories(c *gin.Context) {
	stories, err := h.stories.Search(c.Request.Context(), c.Query("q"), c.Query("language"), c.ClientIP())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponses(stories))
}

func (h *StoryHandler) getStory(c *gin.Context) {
	id, ok := parseStoryID(c)
	if !ok {
		return
	}
	story, err := h.stories.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

// createStories принимает одну историю, массив или {"stories": [...]}.
func (h *StoryHandler) createStories(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(raw) {
		badRequest(c, "Request body must be valid JSON")
		return
	}

	root := gjson.ParseBytes(raw)
	batch := root
	if wrapped := root.Get("stories"); root.IsObject() && wrapped.IsArray() {
		batch = wrapped
	}

	if batch.IsArray() {
		var reqs []createStoryRequest
		if err := json.Unmarshal([]byte(batch.Raw), &reqs); err != nil {
			badRequest(c, "Invalid request data: "+err.Error())
			return
		}
		inputs := make([]service.StoryInput, 0, len(reqs))
		for _, r := range reqs {
			inputs = append(inputs, r.toInput())
		}
		stories, err := h.stories.CreateMany(c.Request.Context(), inputs, c.ClientIP())
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stories": toStoryResponses(stories)})
		return
	}

	var req createStoryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}
	story, err := h.stories.Create(c.Request.Context(), req.toInput(), c.ClientIP())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) updateStory(c *gin.Context) {
	id, ok := parseStoryID(c)
	if !ok {
		return
	}
	var req updateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}
	story, err := h.stories.Update(c.Request.Context(), id, req.toPatch())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) toggleShare(c *gin.Context) {
	id, ok := parseStoryID(c)
	if !ok {
		return
	}
	story, err := h.stories.ToggleShare(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) deleteStory(c *gin.Context) {
	id, ok := parseStoryID(c)
	if !ok {
		return
	}
	deleted, err := h.stories.Delete(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if !deleted {
		handleServiceError(c, h.logger, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted", "id": id.String()})
}

func (h *StoryHandler) generateStories(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	result, err := h.generation.Generate(c.Request.Context(), service.GenerateRequest{
		Query:    req.Query,
		Language: req.Language,
		Multiple: req.Multiple,
		Count:    req.Count,
		OwnerIP:  c.ClientIP(),
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	storiesGenerated.Add(float64(len(result.Stories)))
	setRateLimitHeaders(c, result.RateLimit)
	c.JSON(http.StatusOK, generateResponse{Query: result.Query, Results: toStoryResponses(result.Stories)})
}

func (h *StoryHandler) rateLimitStatus(c *gin.Context) {
	status := h.generation.RateLimitStatus(c.Request.Context(), c.ClientIP())
	setRateLimitHeaders(c, status)
	c.JSON(http.StatusOK, rateLimitResponse{Remaining: status.Remaining, Limit: status.Limit, ResetDate: status.ResetAt})
}

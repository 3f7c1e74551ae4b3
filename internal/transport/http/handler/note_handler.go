package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sticky-notes-api/internal/apperr"
	"sticky-notes-api/internal/domain"
	"sticky-notes-api/internal/service"
	mdw "sticky-notes-api/internal/transport/http/middleware"
	resp "sticky-notes-api/internal/transport/http/response"
)

type NoteHandler struct {
	notes *service.NoteService
	log   *zap.Logger
}

func NewNoteHandler(notes *service.NoteService, l *zap.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, log: l}
}

type addNoteIn struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content"`
	Color    string   `json:"color" binding:"required"`
	Status   string   `json:"status" binding:"required"`
	IsPinned *bool    `json:"isPinned" binding:"required"`
	Tags     []string `json:"tags"`
	Reminder string   `json:"reminder"`
}

// Add POST /api/v1/note/addNotes
func (h *NoteHandler) Add(c *gin.Context) {
	var in addNoteIn
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, h.log, bindErr(err, "Missing required fields (title, color, status, isPinned)"))
		return
	}
	n, err := h.notes.Add(c.Request.Context(), c.GetString(mdw.CtxUserID), service.AddNoteInput{
		Title:    in.Title,
		Content:  in.Content,
		Color:    in.Color,
		Status:   in.Status,
		IsPinned: *in.IsPinned,
		Tags:     in.Tags,
		Reminder: in.Reminder,
	})
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, resp.Created(n, "Note added successfully"))
}

// List GET /api/v1/note
func (h *NoteHandler) List(c *gin.Context) {
	g, err := h.notes.List(c.Request.Context(), c.GetString(mdw.CtxUserID))
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	if g.Total() == 0 {
		c.JSON(http.StatusOK, resp.OK([]domain.Note{}, "No notes found"))
		return
	}
	c.JSON(http.StatusOK, resp.OK(g, "Notes fetched successfully"))
}

type updateNoteIn struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Color    *string   `json:"color"`
	Status   *string   `json:"status"`
	IsPinned *bool     `json:"isPinned"`
	Tags     *[]string `json:"tags"`
	Reminder *string   `json:"reminder"`
}

// Update PUT /api/v1/note/updateNote/:noteId
func (h *NoteHandler) Update(c *gin.Context) {
	var in updateNoteIn
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, h.log, bindErr(err, "Request body is missing"))
		return
	}
	patch := domain.NotePatch{
		Title:    in.Title,
		Content:  in.Content,
		Color:    in.Color,
		Status:   in.Status,
		IsPinned: in.IsPinned,
		Tags:     in.Tags,
	}
	if in.Reminder != nil && *in.Reminder != "" {
		t, err := domain.ParseReminder(*in.Reminder)
		if err != nil {
			respondErr(c, h.log, apperr.BadRequest("Invalid reminder timestamp"))
			return
		}
		patch.Reminder = &t
	}
	n, err := h.notes.Update(c.Request.Context(), c.GetString(mdw.CtxUserID), c.Param("noteId"), patch)
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(n, "Note updated successfully"))
}

// Delete DELETE /api/v1/note/trash/:noteId
func (h *NoteHandler) Delete(c *gin.Context) {
	err := h.notes.DeletePermanently(c.Request.Context(), c.GetString(mdw.CtxUserID), c.Param("noteId"))
	if err != nil {
		respondErr(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(nil, "Note permanently deleted from trash"))
}

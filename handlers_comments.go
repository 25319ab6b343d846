package main

import (
	"net/http"
	"strconv"
	"strings"

	"vidtube/models"
	"vidtube/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func (a *app) listComments(c *gin.Context) {
	video, err := a.loadVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var comments []models.Comment
	err2 := a.db.Where("video_id = ?", video.ID).
		Preload("Owner").
		Order("id desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&comments).Error
	if err2 != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err2))
		return
	}
	respond(c, http.StatusOK, comments, "comments fetched successfully")
}

func (a *app) addComment(c *gin.Context) {
	p, _ := currentUser(c)
	video, err := a.loadVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "content is required"))
		return
	}
	comment := models.Comment{VideoID: video.ID, OwnerID: p.ID, Content: strings.TrimSpace(req.Content)}
	if err := a.db.Create(&comment).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "comment create failed", err))
		return
	}
	respond(c, http.StatusCreated, comment, "comment added successfully")
}

func (a *app) updateComment(c *gin.Context) {
	comment, err := a.loadOwnedComment(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "content is required"))
		return
	}
	if err := a.db.Model(comment).Update("content", strings.TrimSpace(req.Content)).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "comment update failed", err))
		return
	}
	respond(c, http.StatusOK, comment, "comment updated successfully")
}

func (a *app) deleteComment(c *gin.Context) {
	comment, err := a.loadOwnedComment(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	if err := a.db.Delete(comment).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "comment delete failed", err))
		return
	}
	respond(c, http.StatusOK, nil, "comment deleted successfully")
}

func (a *app) loadComment(c *gin.Context) (*models.Comment, error) {
	id, err := strconv.ParseUint(c.Param("commentId"), 10, 64)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "commentId is invalid")
	}
	var comment models.Comment
	if err := a.db.First(&comment, uint(id)).Error; err != nil {
		return nil, apperr.New(apperr.NotFound, "comment not found")
	}
	return &comment, nil
}

func (a *app) loadOwnedComment(c *gin.Context) (*models.Comment, error) {
	comment, err := a.loadComment(c)
	if err != nil {
		return nil, err
	}
	p, _ := currentUser(c)
	if comment.OwnerID != p.ID {
		return nil, apperr.New(apperr.Unauthorized, "you are not the owner of this comment")
	}
	return comment, nil
}

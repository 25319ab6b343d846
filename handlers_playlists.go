package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"vidtube/models"
	"vidtube/pkg/apperr"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (a *app) createPlaylist(c *gin.Context) {
	p, _ := currentUser(c)
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "title is required"))
		return
	}
	playlist := models.Playlist{
		OwnerID:     p.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	if err := a.db.Create(&playlist).Error; err != nil {
		if isUniqueConstraintError(err) {
			a.respondErr(c, apperr.New(apperr.Conflict, "playlist with this title already exists"))
			return
		}
		a.respondErr(c, apperr.Wrap(apperr.Internal, "playlist create failed", err))
		return
	}
	respond(c, http.StatusCreated, playlist, "playlist created")
}

func (a *app) userPlaylists(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "userId is invalid"))
		return
	}
	var user models.User
	if err := a.db.First(&user, uint(userID)).Error; err != nil {
		a.respondErr(c, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	var playlists []models.Playlist
	err2 := a.db.Where("owner_id = ?", user.ID).Preload("Videos").Find(&playlists).Error
	if err2 != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err2))
		return
	}
	respond(c, http.StatusOK, playlists, "playlists found")
}

func (a *app) getPlaylist(c *gin.Context) {
	playlist, err := a.loadPlaylist(c, true)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "playlist found")
}

func (a *app) addVideoToPlaylist(c *gin.Context) {
	playlist, err := a.loadOwnedPlaylist(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	video, err := a.loadVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	var n int64
	a.db.Table("playlist_videos").
		Where("playlist_id = ? AND video_id = ?", playlist.ID, video.ID).
		Count(&n)
	if n > 0 {
		a.respondErr(c, apperr.New(apperr.Conflict, "video already exists in playlist"))
		return
	}
	if err := a.db.Model(playlist).Association("Videos").Append(video); err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "playlist update failed", err))
		return
	}
	respond(c, http.StatusOK, playlist, "video added to playlist")
}

func (a *app) removeVideoFromPlaylist(c *gin.Context) {
	playlist, err := a.loadOwnedPlaylist(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	video, err := a.loadVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	if err := a.db.Model(playlist).Association("Videos").Delete(video); err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "playlist update failed", err))
		return
	}
	respond(c, http.StatusOK, playlist, "video removed from playlist")
}

func (a *app) updatePlaylist(c *gin.Context) {
	playlist, err := a.loadOwnedPlaylist(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	updates := map[string]interface{}{}
	if v := strings.TrimSpace(req.Title); v != "" {
		updates["title"] = v
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		updates["description"] = v
	}
	if len(updates) == 0 {
		a.respondErr(c, apperr.New(apperr.Validation, "nothing to update"))
		return
	}
	if err := a.db.Model(playlist).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			a.respondErr(c, apperr.New(apperr.Conflict, "playlist with this title already exists"))
			return
		}
		a.respondErr(c, apperr.Wrap(apperr.Internal, "playlist update failed", err))
		return
	}
	respond(c, http.StatusOK, playlist, "playlist updated successfully")
}

func (a *app) deletePlaylist(c *gin.Context) {
	playlist, err := a.loadOwnedPlaylist(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	if err := a.db.Model(playlist).Association("Videos").Clear(); err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "playlist delete failed", err))
		return
	}
	if err := a.db.Delete(playlist).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "playlist delete failed", err))
		return
	}
	respond(c, http.StatusOK, nil, "playlist deleted")
}

func (a *app) loadPlaylist(c *gin.Context, withVideos bool) (*models.Playlist, error) {
	id, err := strconv.ParseUint(c.Param("playlistId"), 10, 64)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "playlistId is invalid")
	}
	q := a.db
	if withVideos {
		q = q.Preload("Videos")
	}
	var playlist models.Playlist
	if err := q.First(&playlist, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "playlist not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "query failed", err)
	}
	return &playlist, nil
}

func (a *app) loadOwnedPlaylist(c *gin.Context) (*models.Playlist, error) {
	playlist, err := a.loadPlaylist(c, false)
	if err != nil {
		return nil, err
	}
	p, _ := currentUser(c)
	if playlist.OwnerID != p.ID {
		return nil, apperr.New(apperr.Unauthorized, "you are not the owner of this playlist")
	}
	return playlist, nil
}

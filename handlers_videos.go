package main

import (
	"net/http"
	"strconv"
	"strings"

	"vidtube/models"
	"vidtube/pkg/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxVideoSize = 200 * 1024 * 1024

// allVideos is the public home feed.
func (a *app) allVideos(c *gin.Context) {
	var videos []models.Video
	err := a.db.Where("is_published = ?", true).
		Preload("Owner").
		Order("id desc").Limit(100).
		Find(&videos).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err))
		return
	}
	respond(c, http.StatusOK, videos, "videos fetched successfully")
}

var videoSortColumns = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"title":     "title",
	"duration":  "duration_seconds",
}

// listVideos lists the caller's own videos with search, sort and pagination.
func (a *app) listVideos(c *gin.Context) {
	p, _ := currentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	q := a.db.Model(&models.Video{}).Where("owner_id = ?", p.ID)
	if query := strings.TrimSpace(c.Query("query")); query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	col, ok := videoSortColumns[c.DefaultQuery("sortBy", "createdAt")]
	if !ok {
		col = "created_at"
	}
	dir := "desc"
	if c.Query("sortType") == "asc" {
		dir = "asc"
	}

	var videos []models.Video
	err := q.Order(col + " " + dir).
		Offset((page - 1) * limit).Limit(limit).
		Find(&videos).Error
	if err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "query failed", err))
		return
	}
	respond(c, http.StatusOK, videos, "videos fetched successfully")
}

func (a *app) publishVideo(c *gin.Context) {
	p, _ := currentUser(c)
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	if title == "" {
		a.respondErr(c, apperr.New(apperr.Validation, "title is required"))
		return
	}

	videoFH, err := c.FormFile("videoFile")
	if err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "videoFile is required"))
		return
	}
	if videoFH.Size > maxVideoSize {
		a.respondErr(c, apperr.New(apperr.Validation, "videoFile too large (max 200MB)"))
		return
	}
	thumbFH, err := c.FormFile("thumbnail")
	if err != nil {
		a.respondErr(c, apperr.New(apperr.Validation, "thumbnail is required"))
		return
	}
	if thumbFH.Size > maxImageSize {
		a.respondErr(c, apperr.New(apperr.Validation, "thumbnail too large (max 5MB)"))
		return
	}

	videoAsset, err := a.storeUpload(c, videoFH)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	thumbAsset, err := a.storeUpload(c, thumbFH)
	if err != nil {
		a.respondErr(c, err)
		return
	}

	video := models.Video{
		OwnerID:         p.ID,
		Title:           title,
		Description:     description,
		VideoFile:       videoAsset.URL,
		VideoFileID:     videoAsset.PublicID,
		Thumbnail:       thumbAsset.URL,
		ThumbnailID:     thumbAsset.PublicID,
		DurationSeconds: videoAsset.Duration,
		IsPublished:     true,
	}
	if err := a.db.Create(&video).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "video publish failed", err))
		return
	}
	respond(c, http.StatusCreated, video, "video published successfully")
}

func (a *app) getVideoByID(c *gin.Context) {
	video, err := a.loadVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	// view counting is fire-and-forget; edge truth does not depend on it
	if err := a.db.Model(video).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		a.log.Warn("view increment failed", zap.Uint("video", video.ID), zap.Error(err))
	}
	if p, ok := currentUser(c); ok {
		if err := a.db.Create(&models.WatchEvent{UserID: p.ID, VideoID: video.ID}).Error; err != nil {
			a.log.Warn("watch event not recorded", zap.Uint("video", video.ID), zap.Error(err))
		}
	}
	respond(c, http.StatusOK, video, "video fetched successfully")
}

func (a *app) updateVideo(c *gin.Context) {
	video, err := a.loadOwnedVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	updates := map[string]interface{}{}
	if v := strings.TrimSpace(c.PostForm("title")); v != "" {
		updates["title"] = v
	}
	if v := strings.TrimSpace(c.PostForm("description")); v != "" {
		updates["description"] = v
	}
	var staleThumb string
	if fh, err := c.FormFile("thumbnail"); err == nil {
		if fh.Size > maxImageSize {
			a.respondErr(c, apperr.New(apperr.Validation, "thumbnail too large (max 5MB)"))
			return
		}
		asset, err := a.storeUpload(c, fh)
		if err != nil {
			a.respondErr(c, err)
			return
		}
		updates["thumbnail"] = asset.URL
		updates["thumbnail_id"] = asset.PublicID
		staleThumb = video.ThumbnailID
	}
	if len(updates) == 0 {
		a.respondErr(c, apperr.New(apperr.Validation, "nothing to update"))
		return
	}
	if err := a.db.Model(video).Updates(updates).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "video update failed", err))
		return
	}
	if staleThumb != "" {
		if err := a.media.Delete(c.Request.Context(), staleThumb); err != nil {
			a.log.Warn("stale media not deleted", zap.String("publicId", staleThumb), zap.Error(err))
		}
	}
	respond(c, http.StatusOK, video, "video updated successfully")
}

func (a *app) deleteVideo(c *gin.Context) {
	video, err := a.loadOwnedVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	ctx := c.Request.Context()
	for _, id := range []string{video.VideoFileID, video.ThumbnailID} {
		if id == "" {
			continue
		}
		if err := a.media.Delete(ctx, id); err != nil {
			a.log.Warn("media delete failed", zap.String("publicId", id), zap.Error(err))
		}
	}
	if err := a.db.Delete(video).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "video delete failed", err))
		return
	}
	respond(c, http.StatusOK, nil, "video deleted successfully")
}

func (a *app) togglePublish(c *gin.Context) {
	video, err := a.loadOwnedVideo(c)
	if err != nil {
		a.respondErr(c, err)
		return
	}
	if err := a.db.Model(video).Update("is_published", !video.IsPublished).Error; err != nil {
		a.respondErr(c, apperr.Wrap(apperr.Internal, "status update failed", err))
		return
	}
	video.IsPublished = !video.IsPublished
	respond(c, http.StatusOK, video, "status updated")
}

func (a *app) loadVideo(c *gin.Context) (*models.Video, error) {
	id, err := strconv.ParseUint(c.Param("videoId"), 10, 64)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "videoId is invalid")
	}
	var video models.Video
	if err := a.db.Preload("Owner").First(&video, uint(id)).Error; err != nil {
		return nil, apperr.New(apperr.NotFound, "video not found")
	}
	return &video, nil
}

func (a *app) loadOwnedVideo(c *gin.Context) (*models.Video, error) {
	video, err := a.loadVideo(c)
	if err != nil {
		return nil, err
	}
	p, _ := currentUser(c)
	if video.OwnerID != p.ID {
		return nil, apperr.New(apperr.Unauthorized, "you are not the owner of this video")
	}
	return video, nil
}
